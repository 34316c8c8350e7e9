package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"odoo-supervisor/internal/ports"
	"odoo-supervisor/internal/shared"
	"odoo-supervisor/internal/types"
)

const defaultGitHubAPI = "https://api.github.com"
const defaultHTTPTimeout = 30 * time.Second
const defaultHTTPRetries = 3
const defaultHTTPRetryDelay = 200 * time.Millisecond
const maxHTTPRetryDelay = 2 * time.Second

// GitHubStatusAdapter polls the GitHub API for the upstream state of the
// addon repositories. Transient failures are retried with a capped
// exponential delay.
type GitHubStatusAdapter struct {
	BaseURL string
	User    string
	Token   string
	Timeout time.Duration
	Retries int
}

func NewGitHubStatusAdapter(user string, token string) GitHubStatusAdapter {
	return GitHubStatusAdapter{
		BaseURL: defaultGitHubAPI,
		User:    user,
		Token:   token,
		Timeout: defaultHTTPTimeout,
		Retries: defaultHTTPRetries,
	}
}

type branchResponse struct {
	Name   string `json:"name"`
	Commit struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message   string `json:"message"`
			Committer struct {
				Date string `json:"date"`
			} `json:"committer"`
		} `json:"commit"`
	} `json:"commit"`
}

func (a GitHubStatusAdapter) BranchStatus(ctx context.Context, owner string, repo string, branch string) (types.RepoStatus, error) {
	status := types.RepoStatus{Owner: owner, Repo: repo, Branch: branch}
	url := fmt.Sprintf("%s/repos/%s/%s/branches/%s", a.baseURL(), owner, repo, branch)

	body, code, err := a.fetch(ctx, url)
	if err != nil {
		return types.RepoStatus{}, err
	}
	if code == http.StatusNotFound {
		status.Exists = false
		return status, nil
	}
	if code != http.StatusOK {
		return types.RepoStatus{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("github api request failed").
			WithCause(shared.HTTPStatusError(code, url))
	}

	var parsed branchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return types.RepoStatus{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("github api response is invalid").
			WithCause(err)
	}
	status.Exists = true
	status.CommitSHA = parsed.Commit.SHA
	status.CommitDate = parsed.Commit.Commit.Committer.Date
	status.Message = firstLine(parsed.Commit.Commit.Message)
	return status, nil
}

func (a GitHubStatusAdapter) fetch(ctx context.Context, url string) ([]byte, int, error) {
	client := &http.Client{Timeout: a.timeout()}
	delay := defaultHTTPRetryDelay
	var lastErr error

	for attempt := 0; attempt < a.retries(); attempt++ {
		if attempt > 0 {
			log.Ctx(ctx).Debug().Str("url", url).Int("attempt", attempt).Msg("retrying github request")
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > maxHTTPRetryDelay {
				delay = maxHTTPRetryDelay
			}
		}

		request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, 0, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to build github request").
				WithCause(err)
		}
		request.Header.Set("Accept", "application/vnd.github+json")
		if strings.TrimSpace(a.Token) != "" {
			request.SetBasicAuth(a.User, a.Token)
		}

		response, err := client.Do(request)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(response.Body)
		response.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		// 5xx responses are retried; everything else is the caller's to
		// interpret.
		if response.StatusCode >= 500 {
			lastErr = shared.HTTPStatusError(response.StatusCode, url)
			continue
		}
		return body, response.StatusCode, nil
	}

	return nil, 0, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("github api unreachable").
		WithCause(lastErr)
}

func (a GitHubStatusAdapter) baseURL() string {
	if strings.TrimSpace(a.BaseURL) == "" {
		return defaultGitHubAPI
	}
	return strings.TrimRight(a.BaseURL, "/")
}

func (a GitHubStatusAdapter) timeout() time.Duration {
	if a.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return a.Timeout
}

func (a GitHubStatusAdapter) retries() int {
	if a.Retries <= 0 {
		return defaultHTTPRetries
	}
	return a.Retries
}

func firstLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return strings.TrimSpace(message[:idx])
	}
	return strings.TrimSpace(message)
}

var _ ports.RepoStatusPort = GitHubStatusAdapter{}
