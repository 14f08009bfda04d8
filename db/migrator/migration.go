package migrator

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Marker lines delimiting the Up and Down sections of a migration file.
const (
	MarkerUp   = "-- +migrate Up"
	MarkerDown = "-- +migrate Down"
)

// Migration is a named, versioned SQL changeset. Versions are strictly
// totally ordered; lexicographic ordering is correct because the version
// prefix is a fixed-width timestamp.
type Migration struct {
	// Version uniquely identifies the migration, e.g. "20250101120000_add_users".
	Version string
	// UpBody is the ordered sequence of statements that move the schema forward.
	UpBody []string
	// DownBody is the ordered sequence of statements that revert the change.
	// It may be empty.
	DownBody []string
	// SourcePath is the location of the backing file.
	SourcePath string
}

// HasDown reports whether the migration can be reverted.
func (m *Migration) HasDown() bool {
	return len(m.DownBody) > 0
}

// ParseMigration extracts the Up and Down statement sequences from a
// migration file. It scans line-by-line for the two section markers, and
// validates that the Up marker is present and precedes the Down marker.
// Statements are delimited by lines whose trimmed text ends in ';'.
func ParseMigration(r io.Reader, version, path string) (*Migration, error) {
	m := &Migration{Version: version, SourcePath: path}

	var (
		current *[]string
		sawUp   bool
		sawDown bool
		stmt    strings.Builder
	)
	flush := func() {
		s := strings.TrimSpace(stmt.String())
		stmt.Reset()
		if current != nil && s != "" {
			*current = append(*current, s)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, MarkerUp):
			if sawUp {
				return nil, ParseError{Path: path, Msg: "duplicate Up marker"}
			}
			flush()
			sawUp = true
			current = &m.UpBody
			continue
		case strings.HasPrefix(trimmed, MarkerDown):
			if sawDown {
				return nil, ParseError{Path: path, Msg: "duplicate Down marker"}
			}
			if !sawUp {
				return nil, ParseError{Path: path, Msg: "Down marker precedes Up marker"}
			}
			flush()
			sawDown = true
			current = &m.DownBody
			continue
		}

		if current == nil {
			// Only comments and blank lines are allowed before the Up marker.
			if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
				return nil, ParseError{Path: path, Msg: "statement before Up marker"}
			}
			continue
		}

		// Skip comments and blank lines between statements.
		if stmt.Len() == 0 && (trimmed == "" || strings.HasPrefix(trimmed, "--")) {
			continue
		}

		stmt.WriteString(line)
		stmt.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			flush()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading migration file %s: %w", path, err)
	}

	if !sawUp {
		return nil, ParseError{Path: path, Msg: "missing Up marker"}
	}
	flush()

	return m, nil
}

// template is the initial content of a created migration file. Both section
// markers are always present, with empty bodies.
func template(version string) string {
	return fmt.Sprintf("-- Migration: %s\n\n%s\n\n%s\n", version, MarkerUp, MarkerDown)
}
