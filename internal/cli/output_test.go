package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteTranscriptToStdout(t *testing.T) {
	t.Parallel()

	out := new(bytes.Buffer)
	require.NoError(t, writeTranscript(out, "", "hello world"))
	require.Equal(t, "hello world\n", out.String())
}

func TestWriteTranscriptToFile(t *testing.T) {
	t.Parallel()

	out := new(bytes.Buffer)
	destination := filepath.Join(t.TempDir(), "result.txt")

	require.NoError(t, writeTranscript(out, destination, "привет, мир"))
	require.Empty(t, out.String())

	content, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, "привет, мир", string(content))
}

func TestWriteTranscriptTruncatesExistingFile(t *testing.T) {
	t.Parallel()

	destination := filepath.Join(t.TempDir(), "result.txt")
	require.NoError(t, os.WriteFile(destination, []byte("old content that is much longer"), 0o644))

	require.NoError(t, writeTranscript(new(bytes.Buffer), destination, "new"))

	content, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, "new", string(content))
}

func TestWriteTranscriptCreatesParentDirectory(t *testing.T) {
	t.Parallel()

	destination := filepath.Join(t.TempDir(), "nested", "deep", "result.txt")
	require.NoError(t, writeTranscript(new(bytes.Buffer), destination, "text"))
	require.FileExists(t, destination)
}
