package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/artemk/scriba/internal/config"
	"github.com/artemk/scriba/internal/device"
	"github.com/artemk/scriba/internal/download"
	"github.com/artemk/scriba/internal/logging"
	"github.com/artemk/scriba/internal/media"
	"github.com/artemk/scriba/internal/platform"
	"github.com/artemk/scriba/internal/version"
	"github.com/artemk/scriba/internal/whisper"
)

type transcribeRequest struct {
	AudioPath string
	Language  string
	Device    device.Device
}

type appState struct {
	verbose      bool
	jsonLogs     bool
	noProgress   bool
	configPath   string
	output       string
	language     string
	model        string
	modelDir     string
	deviceName   string
	autoDownload bool

	logger *zap.Logger
	out    io.Writer

	cudaProber   device.Prober
	extractFn    func(ctx context.Context, videoPath, audioPath string) error
	transcribeFn func(ctx context.Context, req transcribeRequest) (string, error)
}

func NewRootCmd() *cobra.Command {
	app := &appState{
		language:     "rus",
		model:        whisper.DefaultModel,
		deviceName:   "auto",
		autoDownload: true,
	}

	cmd := &cobra.Command{
		Use:           "scriba <input-file>",
		Short:         "Transcribe audio and video files to text with a Whisper speech model",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger

			cfg, err := config.Load(app.configPath)
			if err != nil {
				return err
			}
			app.applyConfigDefaults(cmd, cfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTranscription(cmd.Context(), cmd, args[0])
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindConfigFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageFlag(cmd, app)
	bindDeviceFlag(cmd, app)
	cmd.Flags().StringVarP(&app.output, "output", "o", app.output, "Write the transcript to this file instead of stdout")

	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newDevicesCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.Flags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindConfigFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.configPath, "config", app.configPath, "Config file path (default: $XDG_CONFIG_HOME/scriba/config.toml)")
}

func bindModelFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVarP(&app.model, "model", "m", app.model, "Model size (tiny|base|small|medium|large-v3) or ggml model file path")
	cmd.Flags().StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")
	cmd.Flags().BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download missing models")
}

func bindLanguageFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVarP(&app.language, "lang", "l", app.language, "Spoken language (eng|rus)")
}

func bindDeviceFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVarP(&app.deviceName, "device", "d", app.deviceName, "Compute device (auto|cpu|cuda)")
}

// applyConfigDefaults fills in values from the config file for flags the user
// did not set on the command line.
func (a *appState) applyConfigDefaults(cmd *cobra.Command, cfg config.Config) {
	if cfg.Defaults.Model != "" && !cmd.Flags().Changed("model") {
		a.model = cfg.Defaults.Model
	}
	if cfg.Defaults.Language != "" && !cmd.Flags().Changed("lang") {
		a.language = cfg.Defaults.Language
	}
	if cfg.Defaults.Device != "" && !cmd.Flags().Changed("device") {
		a.deviceName = cfg.Defaults.Device
	}
	if cfg.Defaults.ModelDir != "" && !cmd.Flags().Changed("model-dir") {
		a.modelDir = cfg.Defaults.ModelDir
	}
}

// runTranscription is the whole pipeline: resolve input, extract audio from
// video containers, transcribe, write the result, clean up.
func (a *appState) runTranscription(ctx context.Context, cmd *cobra.Command, inputPath string) error {
	input, err := media.Resolve(inputPath)
	if err != nil {
		return err
	}

	lang, err := resolveLanguage(a.language)
	if err != nil {
		return err
	}

	dev, err := device.Select(ctx, a.deviceName, a.cudaProber)
	if err != nil {
		return err
	}

	extractFn := a.extractFn
	if extractFn == nil {
		extractFn = a.extractAudio
	}
	transcribeFn := a.transcribeFn
	if transcribeFn == nil {
		transcribeFn = a.transcribeAudio
	}

	audioPath := input.Path
	if input.Kind == media.KindVideo {
		tempPath := media.TempAudioPath()
		a.log().Info("video input detected; extracting audio", zap.String("video", input.Path), zap.String("audio", tempPath))

		// The extracted track is scoped to this run; remove it on every
		// exit path, not just success.
		defer func() {
			if err := os.Remove(tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				a.log().Warn("failed to remove extracted audio", zap.String("path", tempPath), zap.Error(err))
			}
		}()

		if err := extractFn(ctx, input.Path, tempPath); err != nil {
			return err
		}
		audioPath = tempPath
	}

	if strings.EqualFold(filepath.Ext(audioPath), ".wav") {
		info, err := media.ProbeWAV(audioPath)
		if err != nil {
			return err
		}
		a.log().Debug("audio probe",
			zap.Int("sample_rate", info.SampleRate),
			zap.Int("channels", info.Channels),
			zap.Duration("duration", info.Duration),
		)
	}

	transcript, err := transcribeFn(ctx, transcribeRequest{AudioPath: audioPath, Language: lang, Device: dev})
	if err != nil {
		return err
	}

	if isBlankTranscript(transcript) {
		a.log().Warn(noSpeechHint())
	}

	return writeTranscript(a.outWriter(cmd), a.output, transcript)
}

func (a *appState) extractAudio(ctx context.Context, videoPath, audioPath string) error {
	extractor := media.NewExtractor(a.log())
	stopSpinner := startSpinner(a.progressEnabled(), "Extracting audio")
	err := extractor.ExtractAudio(ctx, videoPath, audioPath)
	stopSpinner()
	return err
}

func (a *appState) transcribeAudio(ctx context.Context, req transcribeRequest) (string, error) {
	model, err := a.ensureModelAvailable(ctx)
	if err != nil {
		return "", err
	}

	engine, err := whisper.NewCLIEngine(a.log())
	if err != nil {
		return "", err
	}

	a.log().Info("transcribing...",
		zap.String("audio", req.AudioPath),
		zap.String("model", model.Path),
		zap.String("language", req.Language),
		zap.String("device", string(req.Device)),
	)
	stopSpinner := startSpinner(a.progressEnabled(), "Transcribing")
	started := time.Now()

	transcript, err := engine.Transcribe(ctx, whisper.TranscriptionRequest{
		AudioPath: req.AudioPath,
		ModelPath: model.Path,
		Language:  req.Language,
		Device:    string(req.Device),
	})
	stopSpinner()
	if err != nil {
		a.log().Warn("transcription failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return "", err
	}
	a.log().Info("transcription finished", zap.Duration("elapsed", time.Since(started)))

	return transcript, nil
}

func (a *appState) ensureModelAvailable(ctx context.Context) (whisper.ResolvedModel, error) {
	modelDir, err := a.modelStorageDir()
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	resolved, err := whisper.ResolveModel(a.model, modelDir)
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	if !resolved.NeedsDownload {
		return resolved, nil
	}

	if !a.autoDownload {
		return whisper.ResolvedModel{}, fmt.Errorf("model %q is missing at %s; run `scriba setup --model %s` or use --auto-download=true", resolved.Name, resolved.Path, resolved.Name)
	}

	a.log().Info("model not found, downloading", zap.String("model", resolved.Name), zap.String("destination", resolved.Path))
	if err := download.Fetch(ctx, download.Options{
		URL:            resolved.URL,
		Destination:    resolved.Path,
		ExpectedSHA256: resolved.SHA256,
		NoProgress:     a.noProgress,
		Logger:         a.log(),
	}); err != nil {
		return whisper.ResolvedModel{}, fmt.Errorf("download model %q: %w", resolved.Name, err)
	}

	resolved.NeedsDownload = false
	return resolved, nil
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.modelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) outWriter(cmd *cobra.Command) io.Writer {
	if a.out != nil {
		return a.out
	}
	if cmd != nil {
		return cmd.OutOrStdout()
	}
	return os.Stdout
}
