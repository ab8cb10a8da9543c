package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playsync/internal/services"
	"github.com/desertthunder/playsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	source     services.SourceService
	target     services.TargetService
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Services and the database are built from the configuration on first use unless provided here.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Source     services.SourceService
	Target     services.TargetService
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		source:     opts.Source,
		target:     opts.Target,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// Load reads the .env file and the configuration file, then applies environment overrides.
// A missing configuration file falls back to the defaults. Runs before every command.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if err := shared.LoadEnv(cmd.String("env-file")); err != nil {
		return ctx, err
	}

	if r.config == nil {
		config, err := shared.LoadConfig(r.configPath)
		switch {
		case errors.Is(err, shared.ErrMissingConfig):
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
			r.config = shared.DefaultConfig()
		case err != nil:
			return ctx, err
		default:
			r.config = config
		}
	}

	if err := r.config.ApplyEnv(); err != nil {
		return ctx, err
	}

	level := r.config.LogLevel()
	if cmd.Bool("debug") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	return ctx, nil
}

func (r *Runner) cfg() *shared.Config {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	return r.config
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, authCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// newSpotify builds the Spotify client from the configured credentials without authenticating it.
func (r *Runner) newSpotify() (*services.SpotifyService, error) {
	config := r.cfg()
	return services.NewSpotifyService(config.Credentials.Spotify, services.SpotifyOptions{
		CreatePublic: config.Sync.CreatePublic,
		SearchRate:   config.Sync.SearchRate,
		HTTPClient:   r.httpClient,
		Logger:       r.logger,
	})
}

// loadServices returns the source and target, building and authenticating them from the configuration when
// they were not injected.
func (r *Runner) loadServices(ctx context.Context) (services.SourceService, services.TargetService, error) {
	if r.source != nil && r.target != nil {
		return r.source, r.target, nil
	}

	config := r.cfg()
	if err := config.ValidateCredentials(); err != nil {
		return nil, nil, err
	}

	if r.source == nil {
		yt := services.NewYouTubeService(config.Credentials.YouTube.ProxyURL, r.logger)
		if err := yt.Authenticate(config.Credentials.YouTube.HeadersPath); err != nil {
			return nil, nil, err
		}
		r.source = yt
	}

	if r.target == nil {
		spotify, err := r.newSpotify()
		if err != nil {
			return nil, nil, err
		}
		if err := spotify.OAuthenticate(ctx, config.Credentials.Spotify.Token()); err != nil {
			return nil, nil, err
		}
		r.target = spotify
	}

	return r.source, r.target, nil
}

// database returns the injected database or opens the configured one. The returned func closes only
// what was opened here.
func (r *Runner) database() (*sql.DB, func(), error) {
	if r.db != nil {
		return r.db, func() {}, nil
	}

	db, err := shared.OpenDatabase(r.cfg().Database)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

// persistToken saves the target's current OAuth token when it differs from the stored one.
func (r *Runner) persistToken() {
	oauth, ok := r.target.(services.OAuthService)
	if !ok {
		return
	}

	tok, err := oauth.Token()
	if err != nil {
		r.logger.Warn("failed to read refreshed token", "error", err)
		return
	}

	spotify := &r.cfg().Credentials.Spotify
	if tok.AccessToken == spotify.AccessToken {
		return
	}
	if err := spotify.Update(tok); err != nil {
		r.logger.Warn("failed to update token", "error", err)
		return
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warn("failed to save refreshed token", "error", err)
		return
	}
	r.logger.Debug("saved refreshed token", "path", r.configPath)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
