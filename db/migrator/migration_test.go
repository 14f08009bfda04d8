package migrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMigration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		expUp   []string
		expDown []string
		expErr  string
	}{
		{
			name:    "ok/template",
			content: template("20250101000000_noop"),
			expUp:   nil,
			expDown: nil,
		},
		{
			name: "ok/single_statements",
			content: "-- +migrate Up\n" +
				"CREATE TABLE users (id INTEGER PRIMARY KEY);\n" +
				"-- +migrate Down\n" +
				"DROP TABLE users;\n",
			expUp:   []string{"CREATE TABLE users (id INTEGER PRIMARY KEY);"},
			expDown: []string{"DROP TABLE users;"},
		},
		{
			name: "ok/multiple_statements",
			content: "-- +migrate Up\n" +
				"CREATE TABLE a (id INTEGER);\n" +
				"CREATE TABLE b (id INTEGER);\n" +
				"-- +migrate Down\n" +
				"DROP TABLE b;\n" +
				"DROP TABLE a;\n",
			expUp: []string{
				"CREATE TABLE a (id INTEGER);",
				"CREATE TABLE b (id INTEGER);",
			},
			expDown: []string{"DROP TABLE b;", "DROP TABLE a;"},
		},
		{
			name: "ok/multiline_statement",
			content: "-- +migrate Up\n" +
				"CREATE TABLE users (\n" +
				"  id INTEGER PRIMARY KEY,\n" +
				"  name TEXT NOT NULL\n" +
				");\n" +
				"-- +migrate Down\n",
			expUp: []string{
				"CREATE TABLE users (\n  id INTEGER PRIMARY KEY,\n  name TEXT NOT NULL\n);",
			},
			expDown: nil,
		},
		{
			name: "ok/missing_trailing_semicolon",
			content: "-- +migrate Up\n" +
				"CREATE TABLE users (id INTEGER)\n",
			expUp:   []string{"CREATE TABLE users (id INTEGER)"},
			expDown: nil,
		},
		{
			name: "ok/no_down_marker",
			content: "-- +migrate Up\n" +
				"CREATE TABLE users (id INTEGER);\n",
			expUp:   []string{"CREATE TABLE users (id INTEGER);"},
			expDown: nil,
		},
		{
			name: "ok/comments_and_blank_lines_skipped",
			content: "-- a header comment\n\n" +
				"-- +migrate Up\n" +
				"-- create the table\n\n" +
				"CREATE TABLE users (id INTEGER);\n" +
				"-- +migrate Down\n\n" +
				"-- drop it again\n" +
				"DROP TABLE users;\n",
			expUp:   []string{"CREATE TABLE users (id INTEGER);"},
			expDown: []string{"DROP TABLE users;"},
		},
		{
			name:    "err/missing_up_marker",
			content: "CREATE TABLE users (id INTEGER);\n",
			expErr:  "statement before Up marker",
		},
		{
			name:    "err/empty_file",
			content: "",
			expErr:  "missing Up marker",
		},
		{
			name: "err/down_before_up",
			content: "-- +migrate Down\n" +
				"DROP TABLE users;\n" +
				"-- +migrate Up\n",
			expErr: "Down marker precedes Up marker",
		},
		{
			name: "err/duplicate_up",
			content: "-- +migrate Up\n" +
				"-- +migrate Up\n",
			expErr: "duplicate Up marker",
		},
		{
			name: "err/duplicate_down",
			content: "-- +migrate Up\n" +
				"-- +migrate Down\n" +
				"-- +migrate Down\n",
			expErr: "duplicate Down marker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := ParseMigration(
				strings.NewReader(tt.content), "20250101000000_test", "/migrations/20250101000000_test.sql")

			if tt.expErr != "" {
				var perr ParseError
				require.ErrorAs(t, err, &perr)
				assert.Contains(t, perr.Msg, tt.expErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "20250101000000_test", m.Version)
			assert.Equal(t, tt.expUp, m.UpBody)
			assert.Equal(t, tt.expDown, m.DownBody)
			assert.Equal(t, len(tt.expDown) > 0, m.HasDown())
		})
	}
}
