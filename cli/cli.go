package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/kasbahcode/devops-toolkit/app/config"
	actx "github.com/kasbahcode/devops-toolkit/app/context"
	"github.com/kasbahcode/devops-toolkit/db"
)

// CLI is the command line interface of dbmigrate.
type CLI struct {
	Init     Init     `kong:"cmd,help='Create the migration ledger and lock tables.'"`
	Create   Create   `kong:"cmd,help='Create a new migration file.'"`
	Migrate  Migrate  `kong:"cmd,help='Apply all pending migrations in order.'"`
	Rollback Rollback `kong:"cmd,help='Revert the most recently applied migrations.'"`
	Status   Status   `kong:"cmd,help='Show applied and pending migrations.'"`

	Engine        string `kong:"help='Database engine: sqlite or postgres.'"`
	Host          string `kong:"help='Database server host (postgres).'"`
	Port          uint16 `kong:"help='Database server port (postgres).'"`
	Database      string `kong:"help='Database name (postgres).'"`
	User          string `kong:"help='Database user (postgres).'"`
	Password      string `kong:"help='Database password (postgres).'"`
	SSLMode       string `kong:"name='ssl-mode',help='Postgres sslmode parameter.'"`
	SQLitePath    string `kong:"name='sqlite-path',help='Database file path (sqlite).'"`
	MigrationsDir string `kong:"help='Path to the directory containing migration files.'"`
	LedgerTable   string `kong:"help='Name of the table tracking applied migrations.'"`

	Log struct {
		Level slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
	} `embed:"" prefix:"log-"`
	// NOTE: I'm deliberately not using kong.ConfigFlag or its support for reading
	// values from configuration files, since I want to manage configuration
	// independently from the CLI.
	ConfigFile string           `kong:"default='${configFile}',help='Path to the dbmigrate configuration file.'"`
	Version    kong.VersionFlag `kong:"help='Output version and exit.'"`

	kong *kong.Kong
	kctx *kong.Context
}

// New initializes the command-line interface.
func New(configFilePath, version string) (*CLI, error) {
	c := &CLI{}
	kparser, err := kong.New(c,
		kong.Name("dbmigrate"),
		kong.UsageOnError(),
		kong.DefaultEnvars("DBMIGRATE"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"configFile": configFilePath,
			"version":    version,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}

	c.kong = kparser

	return c, nil
}

// Execute starts the command execution. Parse must be called before this method.
func (c *CLI) Execute(appCtx *actx.Context) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = appCtx.Stdout
	c.kong.Stderr = appCtx.Stderr

	//nolint:wrapcheck // This is fine.
	return c.kctx.Run(appCtx)
}

// Parse the given command line arguments. This method must be called before
// Execute.
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx

	return nil
}

// Command returns the full path of the executed command.
func (c *CLI) Command() string {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	cmdPath := []string{}
	for _, p := range c.kctx.Path {
		if p.Command != nil {
			cmdPath = append(cmdPath, p.Command.Name)
		}
	}

	return strings.Join(cmdPath, " ")
}

// ApplyOverrides writes CLI flag and environment values into the
// configuration, taking precedence over the configuration file.
func (c *CLI) ApplyOverrides(cfg *config.Config) error {
	if c.Engine != "" {
		engine, err := db.EngineFromString(c.Engine)
		if err != nil {
			return err
		}
		cfg.Database.Engine = sql.Null[db.Engine]{V: engine, Valid: true}
	}
	if c.Host != "" {
		cfg.Database.Host = sql.Null[string]{V: c.Host, Valid: true}
	}
	if c.Port > 0 {
		cfg.Database.Port = sql.Null[uint16]{V: c.Port, Valid: true}
	}
	if c.Database != "" {
		cfg.Database.Name = sql.Null[string]{V: c.Database, Valid: true}
	}
	if c.User != "" {
		cfg.Database.User = sql.Null[string]{V: c.User, Valid: true}
	}
	if c.Password != "" {
		cfg.Database.Password = sql.Null[string]{V: c.Password, Valid: true}
	}
	if c.SSLMode != "" {
		cfg.Database.SSLMode = sql.Null[string]{V: c.SSLMode, Valid: true}
	}
	if c.SQLitePath != "" {
		cfg.Database.SQLitePath = sql.Null[string]{V: c.SQLitePath, Valid: true}
	}
	if c.MigrationsDir != "" {
		cfg.Migrations.Dir = sql.Null[string]{V: c.MigrationsDir, Valid: true}
	}
	if c.LedgerTable != "" {
		cfg.Migrations.Table = sql.Null[string]{V: c.LedgerTable, Valid: true}
	}

	return nil
}
