package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all console configuration
type Config struct {
	BackendURL     string // Base URL of the agent backend
	AudioBackend   string // "miniaudio" or "portaudio"
	VoiceResponses bool   // Request spoken agent replies by default
	ArtifactDir    string // Where downloaded image artifacts are stored
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		BackendURL:     "http://localhost:8000",
		AudioBackend:   "miniaudio",
		VoiceResponses: false,
		ArtifactDir:    "artifacts",
	}

	// Optional: BACKEND_URL
	if backendURL := os.Getenv("BACKEND_URL"); backendURL != "" {
		config.BackendURL = backendURL
	}

	// Optional: AUDIO_BACKEND ("miniaudio" or "portaudio")
	if audioBackend := os.Getenv("AUDIO_BACKEND"); audioBackend != "" {
		switch audioBackend {
		case "miniaudio", "portaudio":
			config.AudioBackend = audioBackend
		default:
			return nil, fmt.Errorf("invalid AUDIO_BACKEND: must be 'miniaudio' or 'portaudio'")
		}
	}

	// Optional: VOICE_RESPONSES
	if voice := os.Getenv("VOICE_RESPONSES"); voice != "" {
		v, err := strconv.ParseBool(voice)
		if err != nil {
			return nil, fmt.Errorf("invalid VOICE_RESPONSES: %w", err)
		}
		config.VoiceResponses = v
	}

	// Optional: ARTIFACT_DIR
	if artifactDir := os.Getenv("ARTIFACT_DIR"); artifactDir != "" {
		config.ArtifactDir = artifactDir
	}

	return config, nil
}
