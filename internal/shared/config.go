package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/rekordsync/internal/models"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Library   LibraryConfig   `toml:"library"`
	Processor ProcessorConfig `toml:"processor"`
	Spotify   SpotifyConfig   `toml:"spotify"`
	Database  DatabaseConfig  `toml:"database"`
}

// LibraryConfig locates the source DJ library database.
type LibraryConfig struct {
	Path            string   `toml:"path"`
	IgnorePlaylists []string `toml:"ignore_playlists"`
}

// ProcessorConfig controls title enhancement. All feature flags default to false so a
// bare config never rewrites metadata.
type ProcessorConfig struct {
	AddKeyToTitle        bool                 `toml:"add_key_to_title"`
	AddArtistToTitle     bool                 `toml:"add_artist_to_title"`
	RemoveArtistsInTitle bool                 `toml:"remove_artists_in_title"`
	ReplaceInTitle       []models.ReplaceRule `toml:"replace_in_title"`
	ReplaceInArtist      []models.ReplaceRule `toml:"replace_in_artist"`
}

// Enabled reports whether any enhancement feature is switched on.
func (p ProcessorConfig) Enabled() bool {
	return p.AddKeyToTitle || p.AddArtistToTitle || p.RemoveArtistsInTitle
}

// SpotifyConfig contains Spotify API credentials and sync naming rules. The token fields
// are written back by the auth command and should not be filled in by hand.
type SpotifyConfig struct {
	ClientID                 string   `toml:"client_id"`
	ClientSecret             string   `toml:"client_secret"`
	RedirectURI              string   `toml:"redirect_uri"`
	AccessToken              string   `toml:"access_token,omitempty"`
	RefreshToken             string   `toml:"refresh_token,omitempty"`
	PlaylistPrefix           string   `toml:"playlist_prefix"`
	ExcludeFromPlaylistNames []string `toml:"exclude_from_playlist_names"`
}

// Credentials returns the credential map consumed by the Spotify service constructor.
func (s SpotifyConfig) Credentials() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// Update stores a freshly issued OAuth token on the config.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty access token", ErrAuthFailed)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	return nil
}

// DatabaseConfig contains local cache database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks replacement rules for entries that can never apply.
func (c *Config) Validate() error {
	for i, rule := range c.Processor.ReplaceInTitle {
		if rule.From == "" {
			return fmt.Errorf("%w: processor.replace_in_title[%d] has an empty 'from'", ErrInvalidConfig, i)
		}
	}
	for i, rule := range c.Processor.ReplaceInArtist {
		if rule.From == "" {
			return fmt.Errorf("%w: processor.replace_in_artist[%d] has an empty 'from'", ErrInvalidConfig, i)
		}
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// SaveConfig writes the configuration back to disk as TOML. Used by the auth command to
// persist refreshed tokens.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
