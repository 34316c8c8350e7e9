package cli

import (
	"errors"
	"io"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odoo-supervisor/internal/types"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "odoo-supervisor", root.Use)

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "provision")
	assert.Contains(t, names, "scan")
	assert.Contains(t, names, "link")
	assert.Contains(t, names, "status")
}

func TestRootCommandPersistentFlags(t *testing.T) {
	root := newRootCommand()
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}

func TestProvisionCommandFlags(t *testing.T) {
	cmd := newProvisionCommand()
	for _, name := range []string{
		"source-dir", "target-dir", "uid", "gid",
		"force-update", "addons-oca", "addons-ee",
		"init-container", "link-all", "odoo-addons", "odoo-addons-oca",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "s", cmd.Flags().Lookup("source-dir").Shorthand)
	assert.Equal(t, "a", cmd.Flags().Lookup("odoo-addons-oca").Shorthand)
}

func TestProvisionCommandRequiresConfigArgument(t *testing.T) {
	cmd := newProvisionCommand()
	cmd.SetArgs([]string{})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.Error(t, cmd.Execute())
}

func TestApplyProvisionFlagsOverrides(t *testing.T) {
	t.Setenv("ODOO_INIT_CONTAINER", "")
	cmd := newProvisionCommand()
	require.NoError(t, cmd.Flags().Set("source-dir", "/custom/src"))
	require.NoError(t, cmd.Flags().Set("uid", "101"))
	require.NoError(t, cmd.Flags().Set("force-update", "true"))
	require.NoError(t, cmd.Flags().Set("odoo-addons", "odoo-addon-web-responsive, odoo-addon-dms"))

	settings := types.Settings{SourceDir: "/file/src", TargetDir: "/file/dst", OwnerUID: 100, OwnerGID: 100, Mode: types.RunModeService}
	applyProvisionFlags(cmd, &settings, provisionOptions{
		SourceDir:   "/custom/src",
		UID:         101,
		ForceUpdate: true,
		OdooAddons:  "odoo-addon-web-responsive, odoo-addon-dms",
	})

	assert.Equal(t, "/custom/src", settings.SourceDir)
	// Flags not passed leave the file value untouched.
	assert.Equal(t, "/file/dst", settings.TargetDir)
	assert.Equal(t, 101, settings.OwnerUID)
	assert.Equal(t, 100, settings.OwnerGID)
	assert.True(t, settings.ForceUpdate)
	assert.Equal(t, []string{"odoo-addon-web-responsive", "odoo-addon-dms"}, settings.ExplicitAddons)
	assert.Equal(t, types.RunModeService, settings.Mode)
}

func TestApplyProvisionFlagsInitContainer(t *testing.T) {
	t.Setenv("ODOO_INIT_CONTAINER", "")
	cmd := newProvisionCommand()
	settings := types.Settings{}
	applyProvisionFlags(cmd, &settings, provisionOptions{InitContainer: true})
	assert.Equal(t, types.RunModeInit, settings.Mode)
}

func TestInitContainerEnv(t *testing.T) {
	for value, want := range map[string]bool{
		"1": true, "true": true, "YES": true, "on": true,
		"": false, "0": false, "no": false, "off": false,
	} {
		t.Setenv("ODOO_INIT_CONTAINER", value)
		assert.Equal(t, want, initContainerEnv(), "value=%q", value)
	}
}

func TestExitCodeForError(t *testing.T) {
	invalid := errbuilder.New().WithCode(errbuilder.CodeInvalidArgument).WithMsg("bad flag")
	precondition := errbuilder.New().WithCode(errbuilder.CodeFailedPrecondition).WithMsg("token missing")

	assert.Equal(t, 2, exitCodeForError(invalid))
	assert.Equal(t, 3, exitCodeForError(precondition))
	assert.Equal(t, 1, exitCodeForError(errors.New("plain failure")))
}

func TestErrorMessagePrefersBuilderMsg(t *testing.T) {
	err := errbuilder.New().WithCode(errbuilder.CodeInternal).WithMsg("pip command failed").WithCause(errors.New("exit status 1"))
	assert.Equal(t, "pip command failed", errorMessage(err))
	assert.Equal(t, "plain failure", errorMessage(errors.New("plain failure")))
}

func TestParseRepoRefs(t *testing.T) {
	refs, err := parseRepoRefs([]string{"odoo/odoo", "OCA/server-tools"})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "odoo", refs[0].Owner)
	assert.Equal(t, "server-tools", refs[1].Repo)

	_, err = parseRepoRefs([]string{"not-a-ref"})
	assert.Error(t, err)
}
