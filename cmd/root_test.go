package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["intake"])
	assert.True(t, names["accounts"])
}

func TestIntakeAndListWithMemoryStore(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	body := "database:\n  url: \"memory:\"\nlogging:\n  dir: " + filepath.Join(dir, "logs") + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(body), 0600))

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", configPath, "intake", "alice", "@bob"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "registered 2 new account(s)")
}
