package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFile_ClaimReadRemove(t *testing.T) {
	pf := pidFile(filepath.Join(t.TempDir(), "run", "daylined.pid"))

	_, err := pf.Read()
	assert.True(t, errors.Is(err, os.ErrNotExist))
	require.NoError(t, pf.EnsureFree())

	st := daemonState{PID: os.Getpid(), Addr: "127.0.0.1:9999", StartedAt: time.Now().UTC().Truncate(time.Second), User: "alice"}
	require.NoError(t, pf.Claim(st))

	pid, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	got, err := pf.State()
	require.NoError(t, err)
	assert.Equal(t, st, got)

	// This test process is alive, so a second claim must fail.
	assert.ErrorContains(t, pf.Claim(st), "already running")

	pf.Remove()
	_, err = os.Stat(string(pf))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(pf.statePath())
	assert.True(t, os.IsNotExist(err))
}

func TestPIDFile_InvalidContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daylined.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0o600))

	_, err := pidFile(path).Read()
	assert.ErrorContains(t, err, "invalid pid")
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
