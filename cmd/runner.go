package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/kvasen/spotnow/internal/auth"
	"github.com/kvasen/spotnow/internal/shared"
	"github.com/kvasen/spotnow/internal/spotify"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	configPath string
	config     *shared.Config
	session    *auth.Session
	client     *spotify.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	ConfigPath string
	Config     *shared.Config
	Client     *spotify.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Client == nil {
		opts.Client = spotify.NewClient(spotify.ClientOpts{})
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		configPath: opts.ConfigPath,
		config:     opts.Config,
		session:    auth.NewSession(),
		client:     opts.Client,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the Runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, nowCommand, watchCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// newFlow builds a fresh authorization flow from the current config.
// Each call generates new PKCE and CSRF material.
func (r *Runner) newFlow() (*auth.Flow, error) {
	sp := r.config.Credentials.Spotify
	if sp.ClientID == "" {
		return nil, fmt.Errorf("%w: Spotify client_id must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	return auth.NewFlow(auth.FlowOpts{
		ClientID:    sp.ClientID,
		RedirectURI: sp.RedirectURI,
		ListenAddr:  r.config.ListenAddr(),
		Logger:      r.logger,
		Saver:       auth.TokenSaverFunc(r.saveRefreshToken),
	})
}

// saveRefreshToken persists the refresh token into the config file.
func (r *Runner) saveRefreshToken(token string) error {
	r.config.Credentials.Spotify.RefreshToken = token
	return shared.SaveConfig(r.configPath, r.config)
}

// ensureSession makes sure the session holds a usable token pair,
// exchanging the persisted refresh token when it doesn't.
func (r *Runner) ensureSession(ctx context.Context) error {
	if r.session.Authenticated() {
		return nil
	}

	refresh := r.config.Credentials.Spotify.RefreshToken
	if refresh == "" {
		return fmt.Errorf("%w: run `spotnow auth` first", shared.ErrNotAuthenticated)
	}

	flow, err := r.newFlow()
	if err != nil {
		return err
	}

	pair, err := flow.Refresh(ctx, refresh)
	if err != nil {
		return err
	}

	r.session.SetTokens(pair)
	return nil
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
