package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/kasbahcode/devops-toolkit/db"
)

// Config represents the application configuration, backed by a filesystem for
// persistence. The configuration file is optional; all values can also be
// provided via CLI flags or environment variables, which take precedence.
type Config struct {
	Database   Database
	Migrations Migrations

	fs   vfs.FileSystem
	path string
}

// NewConfig creates a new Config instance with the specified filesystem and
// configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem. If the
// file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	// Ensure that unmarshalling JSON doesn't fail if the file doesn't exist or is empty.
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as JSON.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	if err = vfs.WriteFile(c.fs, c.path, configJSON, 0o644); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

// Database defines the opaque connection parameters of the managed database.
type Database struct {
	// Engine is the database engine: "sqlite" or "postgres".
	Engine sql.Null[db.Engine] `json:"engine"`
	// Host is the database server host (postgres only).
	Host sql.Null[string] `json:"host"`
	// Port is the database server port (postgres only).
	Port sql.Null[uint16] `json:"port"`
	// Name is the database name (postgres only).
	Name sql.Null[string] `json:"name"`
	// User is the database user (postgres only).
	User sql.Null[string] `json:"user"`
	// Password is the database password (postgres only).
	Password sql.Null[string] `json:"password"`
	// SSLMode is the postgres sslmode parameter.
	SSLMode sql.Null[string] `json:"ssl_mode"`
	// SQLitePath is the database file path (sqlite only).
	SQLitePath sql.Null[string] `json:"sqlite_path"`
}

// Migrations defines migration engine options.
type Migrations struct {
	// Dir is the directory containing migration files.
	Dir sql.Null[string] `json:"dir"`
	// Table is the name of the ledger table.
	Table sql.Null[string] `json:"table"`
}

// DSN returns the engine and driver-specific connection string for the
// configured database.
func (c *Config) DSN() (db.Engine, string) {
	engine := c.Database.Engine.V

	if engine == db.EnginePostgres {
		params := []string{
			fmt.Sprintf("host=%s", c.Database.Host.V),
			fmt.Sprintf("port=%d", c.Database.Port.V),
			fmt.Sprintf("dbname=%s", c.Database.Name.V),
			fmt.Sprintf("sslmode=%s", c.Database.SSLMode.V),
		}
		if c.Database.User.Valid {
			params = append(params, fmt.Sprintf("user=%s", c.Database.User.V))
		}
		if c.Database.Password.Valid {
			params = append(params, fmt.Sprintf("password=%s", c.Database.Password.V))
		}
		return engine, strings.Join(params, " ")
	}

	return engine, c.Database.SQLitePath.V
}

type cfgWrapper struct {
	Database   dbCfgWrapper  `json:"database"`
	Migrations migCfgWrapper `json:"migrations"`
}
type dbCfgWrapper struct {
	Engine     string `json:"engine,omitempty"`
	Host       string `json:"host,omitempty"`
	Port       uint16 `json:"port,omitempty"`
	Name       string `json:"name,omitempty"`
	User       string `json:"user,omitempty"`
	Password   string `json:"password,omitempty"`
	SSLMode    string `json:"ssl_mode,omitempty"`
	SQLitePath string `json:"sqlite_path,omitempty"`
}
type migCfgWrapper struct {
	Dir   string `json:"dir,omitempty"`
	Table string `json:"table,omitempty"`
}

// MarshalJSON implements custom JSON marshaling to convert sql.Null values to
// their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalJSON() ([]byte, error) {
	w := cfgWrapper{}

	if c.Database.Engine.Valid {
		w.Database.Engine = string(c.Database.Engine.V)
	}
	if c.Database.Host.Valid {
		w.Database.Host = c.Database.Host.V
	}
	if c.Database.Port.Valid {
		w.Database.Port = c.Database.Port.V
	}
	if c.Database.Name.Valid {
		w.Database.Name = c.Database.Name.V
	}
	if c.Database.User.Valid {
		w.Database.User = c.Database.User.V
	}
	if c.Database.Password.Valid {
		w.Database.Password = c.Database.Password.V
	}
	if c.Database.SSLMode.Valid {
		w.Database.SSLMode = c.Database.SSLMode.V
	}
	if c.Database.SQLitePath.Valid {
		w.Database.SQLitePath = c.Database.SQLitePath.V
	}

	if c.Migrations.Dir.Valid {
		w.Migrations.Dir = c.Migrations.Dir.V
	}
	if c.Migrations.Table.Valid {
		w.Migrations.Table = c.Migrations.Table.V
	}

	//nolint:wrapcheck // This is fine.
	return json.Marshal(w)
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Database.Engine != "" {
		engine, err := db.EngineFromString(w.Database.Engine)
		if err != nil {
			return err
		}
		c.Database.Engine = sql.Null[db.Engine]{V: engine, Valid: true}
	}
	if w.Database.Host != "" {
		c.Database.Host = sql.Null[string]{V: w.Database.Host, Valid: true}
	}
	if w.Database.Port > 0 {
		c.Database.Port = sql.Null[uint16]{V: w.Database.Port, Valid: true}
	}
	if w.Database.Name != "" {
		c.Database.Name = sql.Null[string]{V: w.Database.Name, Valid: true}
	}
	if w.Database.User != "" {
		c.Database.User = sql.Null[string]{V: w.Database.User, Valid: true}
	}
	if w.Database.Password != "" {
		c.Database.Password = sql.Null[string]{V: w.Database.Password, Valid: true}
	}
	if w.Database.SSLMode != "" {
		c.Database.SSLMode = sql.Null[string]{V: w.Database.SSLMode, Valid: true}
	}
	if w.Database.SQLitePath != "" {
		c.Database.SQLitePath = sql.Null[string]{V: w.Database.SQLitePath, Valid: true}
	}

	if w.Migrations.Dir != "" {
		c.Migrations.Dir = sql.Null[string]{V: w.Migrations.Dir, Valid: true}
	}
	if w.Migrations.Table != "" {
		c.Migrations.Table = sql.Null[string]{V: w.Migrations.Table, Valid: true}
	}

	return nil
}

// SetDefaults sets default configuration values if they weren't set already.
// The dataDir is used for the default SQLite database location.
func (c *Config) SetDefaults(dataDir string) {
	if !c.Database.Engine.Valid {
		c.Database.Engine = sql.Null[db.Engine]{V: db.EngineSQLite, Valid: true}
	}
	if !c.Database.Host.Valid {
		c.Database.Host = sql.Null[string]{V: "localhost", Valid: true}
	}
	if !c.Database.Port.Valid {
		c.Database.Port = sql.Null[uint16]{V: 5432, Valid: true}
	}
	if !c.Database.SSLMode.Valid {
		c.Database.SSLMode = sql.Null[string]{V: "disable", Valid: true}
	}
	if !c.Database.SQLitePath.Valid {
		c.Database.SQLitePath = sql.Null[string]{
			V: filepath.Join(dataDir, "dbmigrate.db"), Valid: true,
		}
	}
	if !c.Migrations.Dir.Valid {
		c.Migrations.Dir = sql.Null[string]{V: "migrations", Valid: true}
	}
	if !c.Migrations.Table.Valid {
		c.Migrations.Table = sql.Null[string]{V: "schema_migrations", Valid: true}
	}
}
