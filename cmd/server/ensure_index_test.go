package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureIndexCmd_MemoryBackend(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("INDEX_BACKEND", "memory")
	t.Setenv("INDEX_NAME", "docs")
	t.Setenv("LOG_LEVEL", "error")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ensure-index"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "index docs ready (memory, dimension 1536)")
}

func TestEnsureIndexCmd_InvalidConfig(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("INDEX_BACKEND", "pinecone")

	rootCmd.SetArgs([]string{"ensure-index"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown index.backend")
}
