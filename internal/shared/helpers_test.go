package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePipName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Requests", "requests"},
		{"Python_LDAP", "python-ldap"},
		{"zope.interface", "zope-interface"},
		{"  pillow  ", "pillow"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePipName(tt.in))
	}
}

func TestNormalizeList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, NormalizeList("a, b ,c"))
	assert.Equal(t, []string{"single"}, NormalizeList("single"))
	assert.Nil(t, NormalizeList(""))
	assert.Nil(t, NormalizeList(" , ,"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "***", MaskSecret("ghp_secret"))
	assert.Empty(t, MaskSecret(""))
	assert.Empty(t, MaskSecret("   "))
}

func TestCommandError(t *testing.T) {
	base := errors.New("exit status 1")
	err := CommandError([]byte("pip: no such option\n"), base)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "pip: no such option")
}

func TestHTTPStatusError(t *testing.T) {
	err := HTTPStatusError(502, "https://api.github.com/repos/odoo/odoo")
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "api.github.com")
}
