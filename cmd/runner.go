package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rekordsync/internal/library"
	"github.com/desertthunder/rekordsync/internal/repositories"
	"github.com/desertthunder/rekordsync/internal/services"
	"github.com/desertthunder/rekordsync/internal/shared"
	"github.com/desertthunder/rekordsync/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The source library, Spotify service, mapping cache, and match picker are resolved
// lazily per command; pre-set fields (used by tests) short-circuit the resolution.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer

	spotify services.Service
	source  library.Source
	cache   *repositories.MappingCache
	picker  tasks.MatchPicker
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Spotify    services.Service
	Source     library.Source
	Cache      *repositories.MappingCache
	Picker     tasks.MatchPicker
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		spotify:    opts.Spotify,
		source:     opts.Source,
		cache:      opts.Cache,
		picker:     opts.Picker,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, processCommand, duplicatesCommand, cleanCommand, syncCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig swaps in the config file named by the command's --config flag when it
// differs from the one already loaded. A missing file at the default path is not an
// error; the explicitly flagged path must exist.
func (r *Runner) loadConfig(cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" || path == r.configPath {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if cmd.IsSet("config") {
			return fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
		}
		return nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	r.config = config
	r.configPath = path
	return nil
}

// openSource opens the configured source library. The returned closer is a no-op when
// the source was injected.
func (r *Runner) openSource() (library.Source, func(), error) {
	if r.source != nil {
		return r.source, func() {}, nil
	}

	path := r.config.Library.Path
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", shared.ErrLibraryNotFound, path)
	}

	source, err := library.Open(path, r.config.Library.IgnorePlaylists, r.logger)
	if err != nil {
		return nil, nil, err
	}
	return source, func() {
		if err := source.Close(); err != nil {
			r.logger.Warnf("failed to close library: %v", err)
		}
	}, nil
}

// openCache opens the mapping cache database, running migrations so a fresh database is
// usable without a separate setup step.
func (r *Runner) openCache() (*repositories.MappingCache, func(), error) {
	if r.cache != nil {
		return r.cache, func() {}, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cache := repositories.NewMappingCache(repositories.NewMappingRepository(db))
	return cache, func() { db.Close() }, nil
}

// connectSpotify builds an authenticated Spotify service from the stored token.
func (r *Runner) connectSpotify(ctx context.Context) (services.Service, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}

	srv, err := services.NewSpotifyService(r.config.Spotify.Credentials())
	if err != nil {
		return nil, err
	}

	if r.config.Spotify.AccessToken == "" {
		return nil, fmt.Errorf("%w: run 'rekordsync auth' first", shared.ErrNotAuthenticated)
	}

	credentials := map[string]string{"access_token": r.config.Spotify.AccessToken}
	if err := srv.Authenticate(ctx, credentials); err != nil {
		return nil, fmt.Errorf("stored token rejected, run 'rekordsync auth' to refresh: %w", err)
	}
	return srv, nil
}

// saveTokens stores a freshly issued OAuth token on the config and persists it.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("config is nil")
	}

	if err := r.config.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// logProgress drains engine progress updates into debug logs. The returned stop function
// closes the channel and waits for the drain goroutine.
func (r *Runner) logProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			if update.Total > 0 {
				r.logger.Debugf("%s (%d/%d) %s", update.Phase, update.Step, update.Total, update.Message)
			} else {
				r.logger.Debugf("%s %s", update.Phase, update.Message)
			}
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
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
