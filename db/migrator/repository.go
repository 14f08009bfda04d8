package migrator

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// versionTimeFormat is the fixed-width, lexicographically sortable timestamp
// prefix of migration versions.
const versionTimeFormat = "20060102150405"

var slugRx = regexp.MustCompile(`^[a-z0-9_]+$`)

// Repository manages migration files on durable storage. It never deletes
// files and never reuses a version.
type Repository struct {
	fs      vfs.FileSystem
	dir     string
	timeNow func() time.Time
}

// NewRepository creates a migration repository backed by the given filesystem
// and directory.
func NewRepository(fs vfs.FileSystem, dir string, timeNow func() time.Time) *Repository {
	return &Repository{fs: fs, dir: dir, timeNow: timeNow}
}

// Dir returns the directory the repository stores migration files in.
func (r *Repository) Dir() string {
	return r.dir
}

// Create writes a new migration file from the template, deriving the version
// from the current time and the slugified name. It fails with a NameError if
// the name is empty or contains path-unsafe characters, and with a
// CollisionError if a file with the same version already exists.
func (r *Repository) Create(name string) (*Migration, error) {
	slug, err := slugify(name)
	if err != nil {
		return nil, err
	}

	version := r.timeNow().UTC().Format(versionTimeFormat) + "_" + slug
	path := filepath.Join(r.dir, version+".sql")

	if _, err = r.fs.Stat(path); err == nil {
		return nil, CollisionError{Version: version, Path: path}
	} else if !vfs.IsErrNotExist(err) {
		return nil, fmt.Errorf("failed checking for existing migration file: %w", err)
	}

	if err = r.fs.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed creating migrations directory: %w", err)
	}
	if err = vfs.WriteFile(r.fs, path, []byte(template(version)), 0o644); err != nil {
		return nil, fmt.Errorf("failed writing migration file: %w", err)
	}

	return &Migration{Version: version, SourcePath: path}, nil
}

// List scans the repository directory and parses each migration file,
// returning well-formed migrations sorted ascending by version. Malformed
// files are excluded from further automatic processing, and returned
// separately so they can be reported.
func (r *Repository) List() ([]*Migration, []ParseError, error) {
	entries, err := vfs.ReadDir(r.fs, r.dir)
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed reading migrations directory %s: %w", r.dir, err)
	}

	var (
		migrations []*Migration
		malformed  []ParseError
	)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") || strings.HasPrefix(name, ".") {
			continue
		}

		version := strings.TrimSuffix(name, ".sql")
		path := filepath.Join(r.dir, name)
		content, err := vfs.ReadFile(r.fs, path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed reading migration file %s: %w", path, err)
		}

		m, err := ParseMigration(bytes.NewReader(content), version, path)
		if err != nil {
			var perr ParseError
			if errors.As(err, &perr) {
				malformed = append(malformed, perr)
				continue
			}
			return nil, nil, err
		}
		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, malformed, nil
}

// Get returns the migration with the given version, or nil if its file
// doesn't exist in the repository.
func (r *Repository) Get(version string) (*Migration, error) {
	path := filepath.Join(r.dir, version+".sql")
	content, err := vfs.ReadFile(r.fs, path)
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed reading migration file %s: %w", path, err)
	}

	return ParseMigration(bytes.NewReader(content), version, path)
}

func slugify(name string) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.NewReplacer(" ", "_", "-", "_").Replace(slug)
	if slug == "" {
		return "", NameError{Name: name, Msg: "must not be empty"}
	}
	if !slugRx.MatchString(slug) {
		return "", NameError{
			Name: name,
			Msg:  "must contain only letters, digits, spaces, hyphens and underscores",
		}
	}

	return slug, nil
}
