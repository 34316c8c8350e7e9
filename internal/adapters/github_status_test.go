package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const branchPayload = `{
  "name": "18.0",
  "commit": {
    "sha": "abc123def456",
    "commit": {
      "message": "[FIX] sale: rounding in tax totals\n\nlong explanation",
      "committer": {"date": "2026-08-20T10:00:00Z"}
    }
  }
}`

func newStatusAdapter(url string) GitHubStatusAdapter {
	adapter := NewGitHubStatusAdapter("provision-bot", "trinket")
	adapter.BaseURL = url
	adapter.Timeout = 2 * time.Second
	return adapter
}

func TestBranchStatusParsesResponse(t *testing.T) {
	var gotPath, gotAccept string
	var gotAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		_, _, gotAuth = r.BasicAuth()
		fmt.Fprint(w, branchPayload)
	}))
	t.Cleanup(server.Close)

	status, err := newStatusAdapter(server.URL).BranchStatus(context.Background(), "odoo", "odoo", "18.0")
	require.NoError(t, err)
	assert.Equal(t, "/repos/odoo/odoo/branches/18.0", gotPath)
	assert.Equal(t, "application/vnd.github+json", gotAccept)
	assert.True(t, gotAuth)
	assert.True(t, status.Exists)
	assert.Equal(t, "abc123def456", status.CommitSHA)
	assert.Equal(t, "2026-08-20T10:00:00Z", status.CommitDate)
	assert.Equal(t, "[FIX] sale: rounding in tax totals", status.Message)
}

func TestBranchStatusMissingBranch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	status, err := newStatusAdapter(server.URL).BranchStatus(context.Background(), "odoo", "odoo", "1.0")
	require.NoError(t, err)
	assert.False(t, status.Exists)
	assert.Equal(t, "1.0", status.Branch)
}

func TestBranchStatusRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, branchPayload)
	}))
	t.Cleanup(server.Close)

	status, err := newStatusAdapter(server.URL).BranchStatus(context.Background(), "OCA", "server-tools", "18.0")
	require.NoError(t, err)
	assert.True(t, status.Exists)
	assert.EqualValues(t, 3, calls.Load())
}

func TestBranchStatusGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	adapter := newStatusAdapter(server.URL)
	adapter.Retries = 2
	_, err := adapter.BranchStatus(context.Background(), "odoo", "enterprise", "18.0")
	require.Error(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestBranchStatusAnonymousWithoutToken(t *testing.T) {
	var gotAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, gotAuth = r.BasicAuth()
		fmt.Fprint(w, branchPayload)
	}))
	t.Cleanup(server.Close)

	adapter := newStatusAdapter(server.URL)
	adapter.Token = ""
	_, err := adapter.BranchStatus(context.Background(), "odoo", "odoo", "18.0")
	require.NoError(t, err)
	assert.False(t, gotAuth)
}

func TestBranchStatusInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	t.Cleanup(server.Close)

	_, err := newStatusAdapter(server.URL).BranchStatus(context.Background(), "odoo", "odoo", "18.0")
	assert.Error(t, err)
}
