package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/url-shortener-kv/internal/entity"
)

func writeConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	data := "redirect_base_url: https://sho.rt\nlog:\n  level: error\n"

	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	return path
}

func TestShortenCmd(t *testing.T) {
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"shorten", "--config", writeConfig(t), "https://example.com"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "https://sho.rt/u/0000001\n", out.String())
}

func TestResolveCmd(t *testing.T) {
	t.Run("unknown code", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"resolve", "--config", writeConfig(t), "zzzzzzz"})

		assert.ErrorIs(t, cmd.Execute(), entity.ErrURLNotFound)
	})

	t.Run("invalid code", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"resolve", "--config", writeConfig(t), "0000000"})

		assert.ErrorIs(t, cmd.Execute(), entity.ErrInvalidArguments)
	})
}
