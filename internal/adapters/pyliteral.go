package adapters

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// parsePyLiteral reads a Python literal expression the way manifest files
// use it: strings, numbers, booleans, None, lists, tuples and dicts with
// string keys. Anything else -- names, calls, comprehensions, operators --
// is rejected, so a manifest can never smuggle executable content through
// the parser.
func parsePyLiteral(src string) (any, error) {
	p := &pyParser{src: src}
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("trailing content after literal")
	}
	return value, nil
}

type pyParser struct {
	src string
	pos int
}

func (p *pyParser) errorf(format string, args ...any) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("manifest literal at offset %d: %s", p.pos, fmt.Sprintf(format, args...)))
}

func (p *pyParser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case c == '#':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *pyParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *pyParser) parseValue() (any, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '{':
		return p.parseDict()
	case c == '[':
		return p.parseSeq('[', ']')
	case c == '(':
		return p.parseSeq('(', ')')
	case c == '\'' || c == '"':
		return p.parseStringConcat()
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return p.parseKeyword()
	}
}

func (p *pyParser) parseKeyword() (any, error) {
	for _, kw := range []struct {
		word  string
		value any
	}{
		{"True", true},
		{"False", false},
		{"None", nil},
	} {
		if strings.HasPrefix(p.src[p.pos:], kw.word) {
			p.pos += len(kw.word)
			return kw.value, nil
		}
	}
	return nil, p.errorf("unsupported construct")
}

func (p *pyParser) parseDict() (map[string]any, error) {
	p.pos++ // consume '{'
	result := map[string]any{}
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return result, nil
		}
		if p.peek() != '\'' && p.peek() != '"' {
			return nil, p.errorf("dict keys must be string literals")
		}
		key, err := p.parseStringConcat()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("expected ':' after dict key")
		}
		p.pos++
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		result[key] = value
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
		default:
			return nil, p.errorf("expected ',' or '}' in dict")
		}
	}
}

func (p *pyParser) parseSeq(open byte, close byte) ([]any, error) {
	p.pos++ // consume opener
	var result []any
	for {
		p.skipSpace()
		if p.peek() == close {
			p.pos++
			return result, nil
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		result = append(result, value)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case close:
		default:
			return nil, p.errorf("expected ',' or closing bracket in sequence")
		}
	}
}

// parseStringConcat handles implicit adjacency concatenation, which long
// manifest summaries rely on: 'a' 'b' reads as "ab".
func (p *pyParser) parseStringConcat() (string, error) {
	var builder strings.Builder
	for {
		part, err := p.parseString()
		if err != nil {
			return "", err
		}
		builder.WriteString(part)
		p.skipSpace()
		if p.peek() != '\'' && p.peek() != '"' {
			return builder.String(), nil
		}
	}
}

func (p *pyParser) parseString() (string, error) {
	quote := p.peek()
	triple := strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(quote), 3))
	if triple {
		p.pos += 3
	} else {
		p.pos++
	}
	var builder strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '\\' {
			if p.pos+1 >= len(p.src) {
				return "", p.errorf("unterminated escape")
			}
			p.pos++
			builder.WriteString(decodeEscape(p))
			continue
		}
		if c == quote {
			if !triple {
				p.pos++
				return builder.String(), nil
			}
			if strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(quote), 3)) {
				p.pos += 3
				return builder.String(), nil
			}
		}
		if !triple && (c == '\n' || c == '\r') {
			return "", p.errorf("unterminated string")
		}
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		builder.WriteRune(r)
		p.pos += size
	}
	return "", p.errorf("unterminated string")
}

func decodeEscape(p *pyParser) string {
	c := p.src[p.pos]
	p.pos++
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\', '\'', '"':
		return string(c)
	case '\n':
		return ""
	case 'x', 'u':
		width := 2
		if c == 'u' {
			width = 4
		}
		if p.pos+width <= len(p.src) {
			if code, err := strconv.ParseUint(p.src[p.pos:p.pos+width], 16, 32); err == nil {
				p.pos += width
				return string(rune(code))
			}
		}
		return "\\" + string(c)
	default:
		// Python keeps unknown escapes verbatim.
		return "\\" + string(c)
	}
}

func (p *pyParser) parseNumber() (any, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	isFloat := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= '0' && c <= '9' || c == '_' {
			p.pos++
			continue
		}
		if c == '.' || c == 'e' || c == 'E' {
			isFloat = true
			p.pos++
			if (c == 'e' || c == 'E') && p.pos < len(p.src) && (p.src[p.pos] == '-' || p.src[p.pos] == '+') {
				p.pos++
			}
			continue
		}
		break
	}
	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if isFloat {
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", text)
		}
		return value, nil
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, p.errorf("invalid number %q", text)
	}
	return value, nil
}
