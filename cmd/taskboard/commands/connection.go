// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/lib/config"
	"github.com/bureau-foundation/taskboard/lib/localstore"
	"github.com/bureau-foundation/taskboard/lib/secret"
	"github.com/bureau-foundation/taskboard/lib/sqlitepool"
	"github.com/bureau-foundation/taskboard/lib/taskapi"
	"github.com/bureau-foundation/taskboard/lib/taskfilter"
	"github.com/bureau-foundation/taskboard/lib/taskset"
	"github.com/bureau-foundation/taskboard/lib/version"
)

// Connection is embedded in the params of every command that reads the
// config file. It carries the flags that locate the config and token.
type Connection struct {
	ConfigPath string `json:"-" flag:"config,c" desc:"config file (default: $TASKBOARD_CONFIG)"`
	TokenFile  string `json:"-" flag:"token-file" desc:"file holding the API token, or - for stdin (overrides api.token_file)"`
}

// env is what a command works with once the config is loaded: the
// config, the local settings store, and (for commands that talk to the
// task service) the engine.
type env struct {
	config  *config.Config
	options Options
	logger  *slog.Logger

	storage *localstore.DB
	pool    *sqlitepool.Pool
	token   *secret.Buffer
	engine  *taskset.Engine
}

// engineOptions tune the engine a command builds.
type engineOptions struct {
	// skipConfirm approves every confirmation (--yes).
	skipConfirm bool

	// notifier and confirmer replace the terminal defaults, for the
	// viewer.
	notifier  taskset.Notifier
	confirmer taskset.Confirmer

	onChange func()
}

// loadConfig reads and validates the config file named by --config or
// TASKBOARD_CONFIG.
func (c *Connection) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if c.ConfigPath != "" {
		cfg, err = config.LoadFile(c.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, cli.Validation("loading config: %w", err).
			WithHint("Pass --config or set " + config.EnvVar + " to your taskboard.yaml.")
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid config: %w", err)
	}
	return cfg, nil
}

// openStore loads the config and opens the settings database. The
// caller must Close the returned env.
func (c *Connection) openStore(ctx context.Context, options Options, logger *slog.Logger) (*env, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if options.Level != nil {
		options.Level.Set(cfg.LogLevel())
	}
	if err := cfg.EnsurePaths(); err != nil {
		return nil, cli.Internal("%w", err)
	}

	storage, pool, err := localstore.OpenFile(cfg.State.Database, sqlitepool.Config{
		Logger: logger.With("component", "sqlite"),
	})
	if err != nil {
		return nil, cli.Internal("opening settings database: %w", err)
	}

	return &env{
		config:  cfg,
		options: options,
		logger:  logger,
		storage: storage,
		pool:    pool,
	}, nil
}

// open loads the config, opens the settings database, reads the API
// token, and builds the engine. Nothing is fetched until signIn.
func (c *Connection) open(ctx context.Context, options Options, logger *slog.Logger, tuning engineOptions) (*env, error) {
	e, err := c.openStore(ctx, options, logger)
	if err != nil {
		return nil, err
	}

	token, err := c.readToken(e.config, options.Streams)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.token = token

	client, err := taskapi.NewClient(taskapi.Config{
		BaseURL:     e.config.API.BaseURL,
		HTTPClient:  &http.Client{Timeout: e.config.RequestTimeout()},
		TokenSource: taskapi.TokenSource(token),
		UserAgent:   version.UserAgent(),
		Logger:      logger.With("component", "taskapi"),
	})
	if err != nil {
		e.Close()
		return nil, cli.Validation("%w", err)
	}

	notifier := tuning.notifier
	if notifier == nil {
		notifier = newTerminalNotifier(options.Streams.Err)
	}
	confirmer := tuning.confirmer
	switch {
	case tuning.skipConfirm:
		confirmer = taskset.AlwaysConfirm
	case confirmer == nil:
		confirmer = newPromptConfirmer(options.Streams)
	}

	e.engine = taskset.New(ctx, taskset.Config{
		API:         client,
		Storage:     e.storage,
		Notifier:    notifier,
		Confirmer:   confirmer,
		OnChange:    tuning.onChange,
		Clock:       options.Clock,
		MaxInFlight: e.config.Bulk.MaxInFlight,
		Logger:      logger,
	})
	return e, nil
}

// readToken reads the bearer token from --token-file, api.token_file,
// or an interactive prompt, in that order.
func (c *Connection) readToken(cfg *config.Config, streams cli.Streams) (*secret.Buffer, error) {
	path := c.TokenFile
	if path == "" {
		path = cfg.API.TokenFile
	}
	if path == "-" {
		token, err := secret.ReadLine(streams.In)
		if err != nil {
			return nil, cli.Validation("reading API token from stdin: %w", err)
		}
		return token, nil
	}
	if path != "" {
		token, err := secret.ReadFromPath(path)
		if err != nil {
			return nil, cli.Validation("reading API token: %w", err)
		}
		return token, nil
	}

	if !cli.IsTerminal(streams.In) {
		return nil, cli.Validation("no API token configured").
			WithHint("Set api.token_file in the config, pass --token-file, or run on a terminal to be prompted.")
	}
	file := streams.In.(*os.File)
	token, err := secret.ReadFromTerminal(int(file.Fd()), "Task API token: ", streams.Err)
	if err != nil {
		return nil, cli.Internal("reading API token: %w", err)
	}
	return token, nil
}

// filters opens a filter store over the settings database, for
// commands that change the saved filter without contacting the
// service.
func (e *env) filters(ctx context.Context) *taskfilter.Store {
	return taskfilter.Open(ctx, taskfilter.Config{
		Storage: e.storage,
		Logger:  e.logger.With("component", "filter"),
	})
}

// signIn starts the engine session, which fetches tasks and projects
// under the saved filter. A project fetch failure is logged; a task
// fetch failure is returned.
func (e *env) signIn(ctx context.Context) error {
	err := e.engine.SetSession(ctx, &taskset.Session{
		Username: e.config.API.Username,
		Admin:    e.config.API.Admin,
	})
	if err == nil {
		return nil
	}
	state := e.engine.State()
	if state.Tasks.Phase == taskset.PhaseFailed {
		return cli.Classify(err)
	}
	e.logger.Warn("project list unavailable", "error", state.Projects.Error)
	return nil
}

// Close releases the token buffer and the database.
func (e *env) Close() error {
	var errs []error
	if e.token != nil {
		errs = append(errs, e.token.Close())
	}
	if e.pool != nil {
		errs = append(errs, e.pool.Close())
	}
	return errors.Join(errs...)
}
