package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./rekordsync.db" {
			t.Errorf("expected database path ./rekordsync.db, got %s", config.Database.Path)
		}

		if config.Library.Path != "./library.db" {
			t.Errorf("expected library path ./library.db, got %s", config.Library.Path)
		}

		if config.Spotify.PlaylistPrefix != "[rs] " {
			t.Errorf("expected playlist prefix %q, got %q", "[rs] ", config.Spotify.PlaylistPrefix)
		}

		if config.Processor.Enabled() {
			t.Error("default config must leave all enhancement features disabled")
		}

		if len(config.Processor.ReplaceInTitle) == 0 {
			t.Error("expected example replacement rules in default config")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[library]
path = "/music/master.db"
ignore_playlists = ["Trial", "Samples"]

[processor]
add_key_to_title = true
add_artist_to_title = true
remove_artists_in_title = false

[[processor.replace_in_title]]
from = " (Original Mix)"
to = ""

[spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"
playlist_prefix = "# "

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Library.Path != "/music/master.db" {
			t.Errorf("expected library path /music/master.db, got %s", config.Library.Path)
		}

		if len(config.Library.IgnorePlaylists) != 2 {
			t.Errorf("expected 2 ignored playlists, got %d", len(config.Library.IgnorePlaylists))
		}

		if !config.Processor.AddKeyToTitle || !config.Processor.AddArtistToTitle {
			t.Error("expected key and artist enhancement enabled")
		}

		if len(config.Processor.ReplaceInTitle) != 1 || config.Processor.ReplaceInTitle[0].From != " (Original Mix)" {
			t.Errorf("unexpected replacement rules: %+v", config.Processor.ReplaceInTitle)
		}

		if config.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Spotify.ClientID)
		}

		if config.Database.MaxOpenConns != 20 {
			t.Errorf("expected max_open_conns 20, got %d", config.Database.MaxOpenConns)
		}
	})

	t.Run("LoadConfig rejects empty from", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		badConfig := `[[processor.replace_in_title]]
from = ""
to = "x"
`
		if err := os.WriteFile(configPath, []byte(badConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
