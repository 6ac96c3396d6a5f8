package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var ErrFFmpegUnavailable = errors.New("ffmpeg not found in PATH; install ffmpeg to transcribe video files")

// Extractor demuxes the audio track of a video container into a standalone
// WAV file via ffmpeg. The output is re-encoded to mono 16kHz PCM16, the
// format the speech engine expects.
type Extractor struct {
	FFmpegPath string
	Logger     *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{FFmpegPath: "ffmpeg", Logger: logger}
}

func (e *Extractor) Available() bool {
	_, err := exec.LookPath(e.ffmpeg())
	return err == nil
}

// ExtractAudio runs ffmpeg synchronously, blocking until the conversion
// completes. On failure the partial output file is removed and ffmpeg's
// stderr is surfaced in the returned error.
func (e *Extractor) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	if strings.TrimSpace(videoPath) == "" {
		return errors.New("video path is required")
	}
	if strings.TrimSpace(audioPath) == "" {
		return errors.New("audio destination path is required")
	}

	if !e.Available() {
		return ErrFFmpegUnavailable
	}

	args := extractArgs(videoPath, audioPath)
	cmd := exec.CommandContext(ctx, e.ffmpeg(), args...)

	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	e.Logger.Debug("running ffmpeg", zap.String("ffmpeg", e.ffmpeg()), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		if removeErr := os.Remove(audioPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			e.Logger.Warn("failed to remove partial extraction output", zap.String("path", audioPath), zap.Error(removeErr))
		}

		errText := strings.TrimSpace(stderr.String())
		if errText != "" {
			return fmt.Errorf("extract audio with ffmpeg: %w (%s)", err, errText)
		}
		return fmt.Errorf("extract audio with ffmpeg: %w", err)
	}

	return nil
}

func (e *Extractor) ffmpeg() string {
	if strings.TrimSpace(e.FFmpegPath) != "" {
		return e.FFmpegPath
	}
	return "ffmpeg"
}

func extractArgs(videoPath, audioPath string) []string {
	return []string{
		"-nostdin", "-hide_banner", "-loglevel", "error", "-y",
		"-i", videoPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		audioPath,
	}
}

var tempCounter atomic.Uint64

// TempAudioPath returns a unique destination for an extracted audio track.
// The file is owned by the current run and removed once transcription ends.
func TempAudioPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("scriba-extract-%d-%d.wav", time.Now().UnixNano(), tempCounter.Add(1)))
}
