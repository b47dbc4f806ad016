package main

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenLogFile_CreatesDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()

	f, err := openLogFile(fs, "/var/log/gozip", "20240101000000")
	require.NoError(t, err)

	_, err = f.WriteString("first\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	content, err := afero.ReadFile(fs, "/var/log/gozip/log_20240101000000.txt")
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(content))
}

func TestOpenLogFile_Appends(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/logs/log_1.txt", []byte("old\n"), 0o600))

	f, err := openLogFile(fs, "/logs", "1")
	require.NoError(t, err)
	_, err = f.WriteString("new\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	content, err := afero.ReadFile(fs, "/logs/log_1.txt")
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(content))
}

func TestOpenLogFile_ReadOnlyFilesystem(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	_, err := openLogFile(fs, "/logs", "1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create log directory")
}

func TestLogFileName(t *testing.T) {
	assert.Equal(t, "log_20240101000000.txt", logFileName("20240101000000"))
}

func TestAttachLogFile_FlushesBufferedLines(t *testing.T) {
	fs := afero.NewMemMapFs()
	pending := bytes.NewBufferString(`{"level":"error","message":"failed to load config"}` + "\n")

	f, err := attachLogFile(fs, "/logs", "20240101000000", pending)
	require.NoError(t, err)

	_, err = f.WriteString(`{"level":"info","message":"after"}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	content, err := afero.ReadFile(fs, "/logs/log_20240101000000.txt")
	require.NoError(t, err)
	assert.Equal(t,
		`{"level":"error","message":"failed to load config"}`+"\n"+`{"level":"info","message":"after"}`+"\n",
		string(content))
	assert.Zero(t, pending.Len())
}

func TestAttachLogFile_OpenFailureKeepsBuffer(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	pending := bytes.NewBufferString("line\n")

	_, err := attachLogFile(fs, "/logs", "1", pending)

	require.Error(t, err)
	assert.Equal(t, "line\n", pending.String())
}
