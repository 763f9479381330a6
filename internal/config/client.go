package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ClientConfig configures the terminal chat client.
type ClientConfig struct {
	RelayURL     string   `toml:"relay_url"`
	Locale       string   `toml:"locale"`
	Overlap      string   `toml:"overlap"`
	Timeout      Duration `toml:"timeout"`
	CopyFeedback Duration `toml:"copy_feedback"`
	// MaxTurns caps the turns kept and sent to the relay; 0 keeps all.
	MaxTurns int          `toml:"max_turns"`
	Speech   SpeechConfig `toml:"speech"`
}

type SpeechConfig struct {
	Enabled   bool   `toml:"enabled"`
	Command   string `toml:"command"`
	VoiceFlag string `toml:"voice_flag"`
	RateFlag  string `toml:"rate_flag"`
	// ListVoices is the flag that makes Command print its voices, one per line.
	ListVoices string `toml:"list_voices"`
}

// Duration decodes TOML strings such as "2s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		RelayURL:     "http://localhost:8080/.netlify/functions/chat",
		Locale:       "id-ID",
		Overlap:      "allow",
		Timeout:      Duration{90 * time.Second},
		CopyFeedback: Duration{2 * time.Second},
		Speech: SpeechConfig{
			Enabled:    true,
			Command:    "espeak-ng",
			VoiceFlag:  "-v",
			RateFlag:   "-s",
			ListVoices: "--voices",
		},
	}
}

// ClientConfigPath returns ~/.config/tanya/config.toml.
func ClientConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", "tanya", "config.toml")
}

// LoadClient reads the TOML file at path on top of the defaults. A missing
// file is not an error. TANYA_RELAY_URL overrides relay_url.
func LoadClient(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return DefaultClientConfig(), fmt.Errorf("failed to decode TOML file: %w", err)
		}
	}
	if v := strings.TrimSpace(os.Getenv("TANYA_RELAY_URL")); v != "" {
		cfg.RelayURL = v
	}
	if cfg.Locale == "" {
		cfg.Locale = "id-ID"
	}
	if cfg.CopyFeedback.Duration <= 0 {
		cfg.CopyFeedback.Duration = 2 * time.Second
	}
	if cfg.MaxTurns < 0 {
		cfg.MaxTurns = 0
	}
	if cfg.Timeout.Duration <= 0 {
		cfg.Timeout.Duration = 90 * time.Second
	}
	return cfg, nil
}
