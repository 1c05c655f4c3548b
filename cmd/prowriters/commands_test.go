package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "seed", "grant-role"})
}

func TestGrantRoleValidatesArguments(t *testing.T) {
	_, err := execute(t, "grant-role", "asha@example.com")
	require.Error(t, err)

	_, err = execute(t, "grant-role", "asha@example.com", "owner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown role "owner"`)
}

func TestServeRejectsInvalidConfiguration(t *testing.T) {
	t.Setenv("DATABASE_URI", "")
	t.Setenv("GATEWAY_KEY_SECRET", "secret")

	_, err := execute(t, "serve", "-a", ":0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URI must be provided")

	_, err = execute(t, "serve", "--unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse flags")
}

func TestSeedFailsOnMissingCatalogFile(t *testing.T) {
	_, err := execute(t, "seed", "--file", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestSeedRejectsPositionalArguments(t *testing.T) {
	_, err := execute(t, "seed", "extra")
	require.Error(t, err)
}
