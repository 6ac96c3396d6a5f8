package media

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractArgs(t *testing.T) {
	t.Parallel()

	args := extractArgs("/videos/clip.mp4", "/tmp/out.wav")
	joined := strings.Join(args, " ")
	require.Contains(t, joined, "-i /videos/clip.mp4")
	require.Contains(t, joined, "-vn")
	require.Contains(t, joined, "-ar 16000")
	require.Contains(t, joined, "-ac 1")
	require.Contains(t, joined, "-c:a pcm_s16le")
	require.Equal(t, "/tmp/out.wav", args[len(args)-1])
}

func TestExtractAudioRequiresPaths(t *testing.T) {
	t.Parallel()

	e := NewExtractor(zap.NewNop())
	require.Error(t, e.ExtractAudio(context.Background(), "", "/tmp/out.wav"))
	require.Error(t, e.ExtractAudio(context.Background(), "/videos/clip.mp4", ""))
}

func TestExtractAudioUnavailableTool(t *testing.T) {
	t.Parallel()

	e := &Extractor{FFmpegPath: "no-such-ffmpeg-binary", Logger: zap.NewNop()}
	err := e.ExtractAudio(context.Background(), "/videos/clip.mp4", filepath.Join(t.TempDir(), "out.wav"))
	require.ErrorIs(t, err, ErrFFmpegUnavailable)
}

func TestExtractAudioWithFakeTool(t *testing.T) {
	t.Parallel()
	requireUnixShell(t)

	dir := t.TempDir()
	fake := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\necho audio > \"$last\"\n"
	require.NoError(t, os.WriteFile(fake, []byte(script), 0o755))

	dest := filepath.Join(dir, "out.wav")
	e := &Extractor{FFmpegPath: fake, Logger: zap.NewNop()}
	require.NoError(t, e.ExtractAudio(context.Background(), "/videos/clip.mp4", dest))
	require.FileExists(t, dest)
}

func TestExtractAudioSurfacesToolDiagnostics(t *testing.T) {
	t.Parallel()
	requireUnixShell(t)

	dir := t.TempDir()
	fake := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\necho partial > \"$last\"\necho 'clip.mp4: moov atom not found' >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(fake, []byte(script), 0o755))

	dest := filepath.Join(dir, "out.wav")
	e := &Extractor{FFmpegPath: fake, Logger: zap.NewNop()}
	err := e.ExtractAudio(context.Background(), "/videos/clip.mp4", dest)
	require.Error(t, err)
	require.Contains(t, err.Error(), "moov atom not found")
	require.NoFileExists(t, dest)
}

func TestTempAudioPathIsUnique(t *testing.T) {
	t.Parallel()

	first := TempAudioPath()
	second := TempAudioPath()
	require.NotEqual(t, first, second)
	require.True(t, strings.HasSuffix(first, ".wav"))
}

func requireUnixShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}
