package cli

import (
	"fmt"
	"strings"
)

// Declared languages map onto the codes the whisper engine expects. The
// declared language is passed through unchanged; no detection or correction
// happens when it does not match the audio.
var languageCodes = map[string]string{
	"eng": "en",
	"en":  "en",
	"rus": "ru",
	"ru":  "ru",
}

func resolveLanguage(input string) (string, error) {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if trimmed == "" {
		trimmed = "rus"
	}

	code, ok := languageCodes[trimmed]
	if !ok {
		return "", fmt.Errorf("unsupported language %q (supported: eng, rus)", input)
	}
	return code, nil
}
