package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/novoforce/cautious-palm-tree/config"
	console "github.com/novoforce/cautious-palm-tree/core"
	"github.com/novoforce/cautious-palm-tree/core/artifacts"
	"github.com/novoforce/cautious-palm-tree/core/audio/miniaudio"
	"github.com/novoforce/cautious-palm-tree/core/audio/portaudio"
	"github.com/novoforce/cautious-palm-tree/tui"
)

var (
	backendURL   string // overridable via --backend flag
	audioBackend string // overridable via --audio flag
	voice        bool
	artifactDir  string
)

func main() {
	root := &cobra.Command{
		Use:   "serena-console",
		Short: "Terminal client for the Serena agent backend",
		Long:  "serena-console brokers a live duplex session with the Serena agent backend: typed or spoken input, streamed or spoken replies.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	root.Flags().StringVar(&backendURL, "backend", "", "backend base URL (default from BACKEND_URL)")
	root.Flags().StringVar(&audioBackend, "audio", "", "audio backend: miniaudio or portaudio (default from AUDIO_BACKEND)")
	root.Flags().BoolVar(&voice, "voice", false, "request spoken agent replies from the start")
	root.Flags().StringVar(&artifactDir, "artifact-dir", "", "directory for downloaded image artifacts (default from ARTIFACT_DIR)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	if audioBackend != "" {
		cfg.AudioBackend = audioBackend
	}
	if voice {
		cfg.VoiceResponses = true
	}
	if artifactDir != "" {
		cfg.ArtifactDir = artifactDir
	}

	opts := []console.ConsoleOption{
		console.WithVoiceResponses(cfg.VoiceResponses),
	}

	switch cfg.AudioBackend {
	case "portaudio":
		// 100 ms of 16 kHz mono samples per capture buffer.
		client, err := portaudio.NewClient(1600)
		if err != nil {
			return fmt.Errorf("failed to initialize portaudio: %w", err)
		}
		defer client.Close()
		opts = append(opts,
			console.WithAudioInputClient(client.Capture()),
			console.WithAudioOutputClient(client.Playback()),
		)
	default:
		client, err := miniaudio.NewClient()
		if err != nil {
			return fmt.Errorf("failed to initialize miniaudio: %w", err)
		}
		defer client.Close()
		opts = append(opts,
			console.WithAudioInputClient(client.Capture()),
			console.WithAudioOutputClient(client.Playback()),
		)
	}

	c := console.New(cfg.BackendURL, opts...)
	return tui.Run(ctx, c, artifacts.NewFetcher(cfg.ArtifactDir))
}
