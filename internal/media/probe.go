package media

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

var ErrInvalidAudio = errors.New("invalid or corrupt audio file")

type AudioInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// ProbeWAV validates a WAV file and reports its format, so corrupt audio is
// rejected with a clear error before the speech model is loaded. Non-WAV
// audio is opaque to us and decoded by the engine itself.
func ProbeWAV(path string) (AudioInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return AudioInfo{}, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return AudioInfo{}, fmt.Errorf("%w: %s", ErrInvalidAudio, path)
	}

	duration, err := dec.Duration()
	if err != nil {
		return AudioInfo{}, fmt.Errorf("%w: %s: %v", ErrInvalidAudio, path, err)
	}

	return AudioInfo{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Duration:   duration,
	}, nil
}
