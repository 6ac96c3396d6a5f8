package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind classifies an input file by what has to happen before transcription.
type Kind int

const (
	// KindAudio inputs are handed to the speech engine unmodified.
	KindAudio Kind = iota
	// KindVideo inputs need their audio track extracted first.
	KindVideo
)

type Input struct {
	Path string
	Ext  string
	Kind Kind
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

func SupportedExtensions() []string {
	exts := make([]string, 0, len(audioExtensions)+len(videoExtensions))
	for ext := range audioExtensions {
		exts = append(exts, ext)
	}
	for ext := range videoExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Resolve validates that path names an existing file and classifies it by
// extension. Unsupported extensions are rejected before any other work runs.
func Resolve(path string) (Input, error) {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Input{}, fmt.Errorf("input file does not exist: %s", path)
		}
		return Input{}, fmt.Errorf("stat input file: %w", err)
	}
	if info.IsDir() {
		return Input{}, fmt.Errorf("input path is a directory: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case audioExtensions[ext]:
		return Input{Path: path, Ext: ext, Kind: KindAudio}, nil
	case videoExtensions[ext]:
		return Input{Path: path, Ext: ext, Kind: KindVideo}, nil
	default:
		return Input{}, fmt.Errorf("unsupported file format %q (supported: %s)", ext, strings.Join(SupportedExtensions(), ", "))
	}
}
