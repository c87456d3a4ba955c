package factories

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"vozkit/server"
)

// SettingsConfig is the top-level config loaded from settings.json.
// It bundles the session config with the optional WebSocket server config.
type SettingsConfig struct {
	// Session configures the assistant services and loop texture.
	Session SessionConfig `json:"session"`
	// Server, when set, overrides the WebSocket server defaults used in
	// serve mode.
	Server *server.Config `json:"server,omitempty"`
}

// DefaultSettingsConfig returns a SettingsConfig pre-filled with provider
// defaults: a local Ollama backend and no speech services.
func DefaultSettingsConfig() SettingsConfig {
	return SettingsConfig{
		Session: DefaultSessionConfig(),
	}
}

// SettingsConfigFromJSON parses a JSON blob into a SettingsConfig. Session
// parsing is delegated to SessionConfigFromJSON so that its provider
// defaulting applies.
func SettingsConfigFromJSON(data []byte) (SettingsConfig, error) {
	var raw struct {
		Session json.RawMessage `json:"session,omitempty"`
		Server  *server.Config  `json:"server,omitempty"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return SettingsConfig{}, fmt.Errorf("settings: %w", err)
	}

	cfg := DefaultSettingsConfig()
	cfg.Server = raw.Server

	if len(raw.Session) > 0 {
		session, err := SessionConfigFromJSON(raw.Session)
		if err != nil {
			return SettingsConfig{}, fmt.Errorf("settings: %w", err)
		}
		cfg.Session = session
	}

	return cfg, nil
}

// SettingsConfigFromFile reads and parses a SettingsConfig from a JSON file.
func SettingsConfigFromFile(path string) (SettingsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultSettingsConfig(), fmt.Errorf("settings: read %q: %w", path, err)
	}
	return SettingsConfigFromJSON(data)
}
