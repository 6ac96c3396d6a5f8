package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// writeTranscript delivers the transcript either to stdout or, when a
// destination is set, to a file with truncate semantics.
func writeTranscript(stdout io.Writer, destination, transcript string) error {
	if strings.TrimSpace(destination) == "" {
		if _, err := fmt.Fprintln(stdout, transcript); err != nil {
			return fmt.Errorf("print transcript: %w", err)
		}
		return nil
	}

	if dir := filepath.Dir(destination); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := os.WriteFile(destination, []byte(transcript), 0o644); err != nil {
		return fmt.Errorf("write transcript to %s: %w", destination, err)
	}

	return nil
}
