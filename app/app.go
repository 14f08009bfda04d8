package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"github.com/kasbahcode/devops-toolkit/app/config"
	actx "github.com/kasbahcode/devops-toolkit/app/context"
	"github.com/kasbahcode/devops-toolkit/cli"
	"github.com/kasbahcode/devops-toolkit/db"
)

// App is the application.
type App struct {
	name    string
	ctx     *actx.Context
	cli     *cli.CLI
	dataDir string
	// the logging level is set via the CLI, if the app was initialized with the
	// WithLogger option.
	logLevel *slog.LevelVar
}

// New initializes a new application.
func New(name, configFilePath, dataDir string, opts ...Option) (*App, error) {
	version, err := actx.GetVersion()
	if err != nil {
		return nil, err
	}

	defaultCtx := &actx.Context{
		Ctx:     context.Background(),
		FS:      memoryfs.New(),
		Logger:  slog.Default(),
		Version: version,
	}
	app := &App{name: name, ctx: defaultCtx, dataDir: dataDir}

	for _, opt := range opts {
		opt(app)
	}

	ver := fmt.Sprintf("%s %s", app.name, app.ctx.Version.String())
	app.cli, err = cli.New(configFilePath, ver)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run initializes the application environment and starts execution of the
// application.
func (app *App) Run(args []string) error {
	if err := app.cli.Parse(args); err != nil {
		return err
	}

	if app.logLevel != nil {
		app.logLevel.Set(app.cli.Log.Level)
		slog.SetLogLoggerLevel(app.cli.Log.Level)
	}

	if err := app.loadConfig(); err != nil {
		return err
	}

	if err := app.openDB(); err != nil {
		return err
	}

	if err := app.cli.Execute(app.ctx); err != nil {
		return err
	}

	return nil
}

func (app *App) loadConfig() error {
	cfg := config.NewConfig(app.ctx.FS, app.cli.ConfigFile)
	if err := cfg.Load(); err != nil {
		return err
	}
	if err := app.cli.ApplyOverrides(cfg); err != nil {
		return err
	}
	cfg.SetDefaults(app.dataDir)
	app.ctx.Config = cfg

	return nil
}

// openDB opens the database connection, unless one was already injected, or
// the command doesn't touch the database at all.
func (app *App) openDB() error {
	if app.ctx.DB != nil || app.cli.Command() == "create" {
		return nil
	}

	engine, dsn := app.ctx.Config.DSN()
	if engine == db.EngineSQLite && !strings.Contains(dsn, "memory") {
		if err := app.ctx.FS.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return fmt.Errorf("failed creating the database directory: %w", err)
		}
	}

	d, err := db.Open(app.ctx.Ctx, engine, dsn, app.ctx.TimeNow)
	if err != nil {
		return err
	}
	app.ctx.DB = d

	return nil
}
