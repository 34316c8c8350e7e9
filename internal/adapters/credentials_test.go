package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"

	"odoo-supervisor/internal/types"
)

func credentialSettings() types.Settings {
	return types.Settings{
		GitHubUser:   "provision-bot",
		GitHubToken:  "ghp_secret",
		OdooUser:     "odoo-user",
		OdooPassword: "odoo-pass",
		AppsUser:     "apps-user",
		AppsPassword: "apps-pass",
	}
}

func TestWriteOCAConfigSections(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewCredentialsAdapter().WriteOCAConfig(dir, credentialSettings(), false))

	cfg, err := ini.Load(filepath.Join(dir, "oca.cfg"))
	require.NoError(t, err)
	assert.Equal(t, "provision-bot", cfg.Section("GitHub").Key("username").String())
	assert.Equal(t, "ghp_secret", cfg.Section("GitHub").Key("token").String())
	assert.Equal(t, "odoo-pass", cfg.Section("odoo").Key("password").String())
	assert.Equal(t, "apps-user", cfg.Section("apps.odoo.com").Key("username").String())
	assert.NotEmpty(t, cfg.Section("apps.odoo.com").Key("chromedriver_path").String())
}

func TestWriteOCAConfigKeepsExistingWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oca.cfg")
	require.NoError(t, os.WriteFile(path, []byte("[GitHub]\nusername = original\n"), 0o644))

	require.NoError(t, NewCredentialsAdapter().WriteOCAConfig(dir, credentialSettings(), false))

	cfg, err := ini.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "original", cfg.Section("GitHub").Key("username").String())
}

func TestWriteOCAConfigForceOverwritesManagedKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oca.cfg")
	require.NoError(t, os.WriteFile(path, []byte("[GitHub]\nusername = original\n\n[custom]\nkey = kept\n"), 0o644))

	require.NoError(t, NewCredentialsAdapter().WriteOCAConfig(dir, credentialSettings(), true))

	cfg, err := ini.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "provision-bot", cfg.Section("GitHub").Key("username").String())
	// Sections other tools added survive a forced rewrite.
	assert.Equal(t, "kept", cfg.Section("custom").Key("key").String())
}

func TestSetupGitHubSkipsWhenParametersMissing(t *testing.T) {
	adapter := NewCredentialsAdapter()
	assert.NoError(t, adapter.SetupGitHub(context.Background(), "", "token", "mail@example.com"))
	assert.NoError(t, adapter.SetupGitHub(context.Background(), "user", "", "mail@example.com"))
	assert.NoError(t, adapter.SetupGitHub(context.Background(), "user", "token", ""))
}

func TestSetupGitHubSkipsWhenHelperAbsent(t *testing.T) {
	adapter := CredentialsAdapter{HelperScript: filepath.Join(t.TempDir(), "missing.sh")}
	assert.NoError(t, adapter.SetupGitHub(context.Background(), "user", "token", "mail@example.com"))
}

func TestSetupGitHubScrubsTokenFromFailureOutput(t *testing.T) {
	script := filepath.Join(t.TempDir(), "github_credentials.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"bad token: $4\" >&2\nexit 1\n"), 0o755))

	adapter := CredentialsAdapter{HelperScript: script}
	err := adapter.SetupGitHub(context.Background(), "user", "ghp_secret", "mail@example.com")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "ghp_secret")
}
