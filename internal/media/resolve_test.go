package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveClassifiesSupportedExtensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		kind Kind
	}{
		{name: "mp3 audio", file: "sample.mp3", kind: KindAudio},
		{name: "m4a audio", file: "sample.m4a", kind: KindAudio},
		{name: "wav audio", file: "sample.wav", kind: KindAudio},
		{name: "flac audio", file: "sample.flac", kind: KindAudio},
		{name: "ogg audio", file: "sample.ogg", kind: KindAudio},
		{name: "mp4 video", file: "clip.mp4", kind: KindVideo},
		{name: "mov video", file: "clip.mov", kind: KindVideo},
		{name: "mkv video", file: "clip.mkv", kind: KindVideo},
		{name: "webm video", file: "clip.webm", kind: KindVideo},
		{name: "uppercase extension", file: "SAMPLE.MP3", kind: KindAudio},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

			input, err := Resolve(path)
			require.NoError(t, err)
			require.Equal(t, tt.kind, input.Kind)
			require.Equal(t, path, input.Path)
		})
	}
}

func TestResolveRejectsUnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := Resolve(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported file format")
	require.Contains(t, err.Error(), ".mp3")
}

func TestResolveRejectsMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Resolve(filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestResolveRejectsDirectory(t *testing.T) {
	t.Parallel()

	_, err := Resolve(t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "directory")
}

func TestSupportedExtensionsIsSorted(t *testing.T) {
	t.Parallel()

	exts := SupportedExtensions()
	require.Contains(t, exts, ".mp4")
	require.Contains(t, exts, ".wav")
	for i := 1; i < len(exts); i++ {
		require.Less(t, exts[i-1], exts[i])
	}
}
