package shared

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values read from the config file.
const (
	EnvSpotifyClientID     = "SPOTIFY_CLIENT_ID"
	EnvSpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvSpotifyUsername     = "SPOTIFY_USERNAME"
	EnvSpotifyCreatePublic = "SPOTIFY_CREATE_PUBLIC"
	EnvProxyURL            = "YTMUSIC_PROXY_URL"
	EnvHeadersPath         = "YTMUSIC_HEADERS_PATH"
	EnvSyncPlaylists       = "SYNC_PLAYLISTS"
	EnvDebug               = "PLAYSYNC_DEBUG"
)

// PlaylistSeparator splits the SYNC_PLAYLISTS value into playlist names.
const PlaylistSeparator = ";"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Sync        SyncConfig        `toml:"sync"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify API credentials and the persisted OAuth token.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token"`
	TokenExpiry  time.Time `toml:"token_expiry"`
	Username     string    `toml:"username"`
}

// YouTubeConfig contains the ytmusicapi proxy settings.
type YouTubeConfig struct {
	ProxyURL    string `toml:"proxy_url"`
	HeadersPath string `toml:"headers_path"`
}

// SyncConfig controls which playlists are synchronized and how the target is queried.
type SyncConfig struct {
	Playlists    []string `toml:"playlists"`
	CreatePublic bool     `toml:"create_public"`
	Market       string   `toml:"market"`
	SearchLimit  int      `toml:"search_limit"`
	SearchRate   float64  `toml:"search_rate"`
	DryRun       bool     `toml:"dry_run"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings for the OAuth callback.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig sets the logger verbosity.
type LogConfig struct {
	Level string `toml:"level"`
}

// Token returns the persisted OAuth token, or nil when no access token has been stored.
func (s SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       s.TokenExpiry,
	}
}

// Update stores a freshly exchanged or refreshed token.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidCredentials)
	}

	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.TokenExpiry = token.Expiry
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
// A missing file yields [ErrMissingConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// SaveConfig encodes config as TOML and writes it to path, replacing any existing file.
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

// LoadEnv reads a .env file into the process environment when one exists.
// Variables already set in the environment take precedence.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays environment variables onto the config.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvSpotifyClientID); ok {
		c.Credentials.Spotify.ClientID = v
	}
	if v, ok := os.LookupEnv(EnvSpotifyClientSecret); ok {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v, ok := os.LookupEnv(EnvSpotifyUsername); ok {
		c.Credentials.Spotify.Username = v
	}
	if v, ok := os.LookupEnv(EnvSpotifyCreatePublic); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvSpotifyCreatePublic, v)
		}
		c.Sync.CreatePublic = b
	}
	if v, ok := os.LookupEnv(EnvProxyURL); ok {
		c.Credentials.YouTube.ProxyURL = v
	}
	if v, ok := os.LookupEnv(EnvHeadersPath); ok {
		c.Credentials.YouTube.HeadersPath = v
	}
	if v, ok := os.LookupEnv(EnvSyncPlaylists); ok {
		c.Sync.Playlists = SplitPlaylists(v)
	}
	if v, ok := os.LookupEnv(EnvDebug); ok && v != "" && v != "0" && !strings.EqualFold(v, "false") {
		c.Log.Level = "debug"
	}
	return nil
}

// SplitPlaylists splits a separator-delimited list of playlist names, trimming each name and dropping blanks.
func SplitPlaylists(v string) []string {
	var names []string
	for _, name := range strings.Split(v, PlaylistSeparator) {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// LogLevel returns the configured [log.Level], defaulting to info.
func (c *Config) LogLevel() log.Level {
	if c.Log.Level == "" {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ValidateCredentials reports missing platform credentials.
func (c *Config) ValidateCredentials() error {
	if c.Credentials.Spotify.ClientID == "" || c.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret are required", ErrMissingCredentials)
	}
	if c.Credentials.YouTube.ProxyURL == "" {
		return fmt.Errorf("%w: youtube proxy_url is required", ErrInvalidConfig)
	}
	return nil
}

// Validate reports configuration that would prevent a sync run.
func (c *Config) Validate() error {
	if err := c.ValidateCredentials(); err != nil {
		return err
	}
	if len(c.Sync.Playlists) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, ErrNoConfiguredPlaylists)
	}
	if c.Sync.SearchLimit < 0 || c.Sync.SearchRate < 0 {
		return fmt.Errorf("%w: search_limit and search_rate must not be negative", ErrInvalidConfig)
	}
	return nil
}
