package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/halo/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "halo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestConfigCommandPrintsDefaults(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "lifetime: 14s")
	assert.Contains(t, out, "spawn_interval: 3.5s")
}

func TestConfigCommandAppliesFile(t *testing.T) {
	path := writeConfig(t, "lifetime: 20s\nsample_count: 90\n")
	out, err := execute(t, "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "lifetime: 20s")
	assert.Contains(t, out, "sample_count: 90")
}

func TestInvalidConfigFails(t *testing.T) {
	path := writeConfig(t, "spawn_interval: -1s\n")
	_, err := execute(t, "config", "-c", path)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "export", "--out", dir, "--at", "2s", "--at", "1s", "--width", "200", "--height", "100")
	require.NoError(t, err)

	lines := strings.Fields(out)
	require.Len(t, lines, 2)
	assert.Equal(t, filepath.Join(dir, "halo-00001000ms.svg"), lines[0])
	for _, p := range lines {
		doc, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Contains(t, string(doc), `viewBox="0 0 200 100"`)
	}
}

func TestRunRejectsArguments(t *testing.T) {
	_, err := execute(t, "run", "extra")
	assert.Error(t, err)
}
