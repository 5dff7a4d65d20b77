package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docingest/internal/auth"
	"docingest/internal/storage"
)

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "alice", "--ttl", "5m"})

	require.NoError(t, cmd.Execute())

	tokens, err := auth.NewTokens("s3cret", time.Minute)
	require.NoError(t, err)
	sub, err := tokens.Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"token", "alice"})

	assert.ErrorIs(t, cmd.Execute(), auth.ErrSecretRequired)
}

func TestFixturePut(t *testing.T) {
	fixtureDir := t.TempDir()
	t.Setenv("FIXTURE_DIR", fixtureDir)

	src := filepath.Join(t.TempDir(), "lease.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0o644))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"fixture", "put", src, "--key", "contracts/lease.pdf"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "contracts/lease.pdf\t8\n", out.String())
	got, err := os.ReadFile(filepath.Join(fixtureDir, "contracts", "lease.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(got))
}

func TestPutFileMissingSource(t *testing.T) {
	dst, err := storage.NewDir(t.TempDir())
	require.NoError(t, err)
	_, err = putFile(context.Background(), dst, "x", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestFixtureIngestRequiresOwner(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"fixture", "ingest", "a.pdf"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "owner" not set`)
}
