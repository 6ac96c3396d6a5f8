package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/artemk/scriba/internal/platform"
)

// EnvEnginePath overrides engine discovery with an explicit whisper-cli path.
const EnvEnginePath = "SCRIBA_WHISPER_PATH"

// CLIEngine runs transcription through a whisper.cpp whisper-cli binary.
// The model internals stay opaque; we only build the argument list, wait for
// the process, and read back the text output.
type CLIEngine struct {
	Executable string
	Logger     *zap.Logger
}

func NewCLIEngine(logger *zap.Logger) (*CLIEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if override := strings.TrimSpace(os.Getenv(EnvEnginePath)); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("%s is not executable: %w", EnvEnginePath, err)
		}
		return &CLIEngine{Executable: override, Logger: logger}, nil
	}

	if path, err := exec.LookPath(engineBinaryName()); err == nil {
		return &CLIEngine{Executable: path, Logger: logger}, nil
	}

	scribaExe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve scriba executable path: %w", err)
	}

	for _, candidate := range EnginePathCandidates(scribaExe) {
		if ensureExecutable(candidate) == nil {
			return &CLIEngine{Executable: candidate, Logger: logger}, nil
		}
	}

	return nil, fmt.Errorf("whisper engine %s not found in PATH or near %s; install whisper.cpp or set %s", engineBinaryName(), scribaExe, EnvEnginePath)
}

func EnginePathCandidates(scribaExecutable string) []string {
	binDir := filepath.Dir(scribaExecutable)
	engineName := engineBinaryName()
	hostTarget := fmt.Sprintf("%s_%s", runtime.GOOS, platform.NormalizeArch(runtime.GOARCH))

	return []string{
		filepath.Join(binDir, "..", "libexec", "whisper", engineName),
		filepath.Join(binDir, "libexec", "whisper", engineName),
		filepath.Join(binDir, "packaging", "whisper", hostTarget, engineName),
		filepath.Join(binDir, engineName),
	}
}

// Transcribe invokes whisper-cli synchronously over the full audio file and
// returns the trimmed transcript text.
func (e *CLIEngine) Transcribe(ctx context.Context, req TranscriptionRequest) (string, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return "", errors.New("audio path is required")
	}
	if strings.TrimSpace(req.ModelPath) == "" {
		return "", errors.New("model path is required")
	}

	if err := ensureExecutable(e.Executable); err != nil {
		return "", fmt.Errorf("whisper engine missing or not executable: %w", err)
	}

	outBase := filepath.Join(os.TempDir(), fmt.Sprintf("scriba-%d", time.Now().UnixNano()))
	txtOut := outBase + ".txt"

	// whisper-cli may write partial output before failing; clean up on
	// every exit path.
	defer os.Remove(txtOut)

	args := engineArgs(req, outBase)
	cmd := exec.CommandContext(ctx, e.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	e.Logger.Debug("running whisper engine", zap.String("engine", e.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if isMissingSharedLibraryError(errText) {
			return "", fmt.Errorf("whisper engine at %s is missing required shared libraries (%s); rebuild whisper-cli with BUILD_SHARED_LIBS=OFF or fix the library path", e.Executable, errText)
		}
		if isIllegalInstructionError(errText) || isIllegalInstructionError(err.Error()) {
			return "", fmt.Errorf("whisper engine crashed with an illegal CPU instruction; "+
				"your CPU may lack required instruction set extensions; "+
				"set %s to a whisper-cli binary built for your CPU", EnvEnginePath)
		}
		if errText != "" {
			return "", fmt.Errorf("whisper transcribe failed: %w (%s)", err, errText)
		}
		return "", fmt.Errorf("whisper transcribe failed: %w", err)
	}

	content, err := os.ReadFile(txtOut)
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}

	return strings.TrimSpace(string(content)), nil
}

func engineArgs(req TranscriptionRequest, outBase string) []string {
	args := []string{"-m", req.ModelPath, "-f", req.AudioPath, "-nt", "-otxt", "-of", outBase}

	if lang := strings.TrimSpace(req.Language); lang != "" && lang != "auto" {
		args = append(args, "-l", lang)
	}

	// whisper-cli uses the GPU when built with support; -ng pins it to CPU.
	if strings.EqualFold(strings.TrimSpace(req.Device), "cpu") {
		args = append(args, "-ng")
	}

	return args
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	patterns := []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
		"image not found",
	}

	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}

	return false
}

func isIllegalInstructionError(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "illegal instruction")
}
