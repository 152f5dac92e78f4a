package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/shelflife/internal/http/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestParseCmd(t *testing.T) {
	type testCase struct {
		name     string
		args     []string
		contains []string
		wantErr  bool
	}

	tests := []testCase{
		{
			name:     "Month name",
			args:     []string{"parse", "--year", "2025", "BEST", "BEFORE", "12", "MAR", "2026"},
			contains: []string{"2026-03-12", "day-month-name-year"},
		},
		{
			name:     "Day-first numeric",
			args:     []string{"parse", "EXP 05/03/2026"},
			contains: []string{"2026-03-05", "day-first-numeric"},
		},
		{
			name:     "Unreadable text",
			args:     []string{"parse", "lot 4471"},
			contains: []string{"lot 4471", "-"},
		},
		{
			name:    "Nothing to parse",
			args:    []string{"parse"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)

			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestParseCmd_LatinOneFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "label.txt")
	// "Fabriqué en France / EXP 02/01/2026 / À consommer 15 FEB 2026" in ISO-8859-1.
	content := []byte("Fabriqu\xe9 en France\nEXP 02/01/2026\n\n\xc0 consommer 15 FEB 2026\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	out, err := execute(t, "parse", "--file", path)
	require.NoError(t, err)

	assert.Contains(t, out, "2026-01-02")
	assert.Contains(t, out, "2026-02-15")
}

func TestClassifyCmd(t *testing.T) {
	type testCase struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}

	tests := []testCase{
		{name: "Fresh", args: []string{"classify", "--as-of", "2026-03-01", "05/03/2026"}, want: "2026-03-05\tfresh\tExpires in 4 days"},
		{name: "Soon", args: []string{"classify", "--as-of", "2026-03-01", "EXP 03/03/2026"}, want: "2026-03-03\texpires_soon\tExpires in 2 days"},
		{name: "Expired", args: []string{"classify", "--as-of", "2026-03-01", "2026-02-27"}, want: "2026-02-27\texpired\tExpired 2 days ago"},
		{name: "Today", args: []string{"classify", "--as-of", "2026-03-01", "1 MAR 2026"}, want: "2026-03-01\texpires_today\tExpires today"},
		{name: "Bad reference day", args: []string{"classify", "--as-of", "03/01/2026", "1 MAR 2026"}, wantErr: true},
		{name: "Unreadable", args: []string{"classify", "soon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestItemsCmd_EmptyShelf(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "shelf.db"))

	out, err := execute(t, "items", "--within", "7")
	require.NoError(t, err)

	assert.Contains(t, out, "EXPIRY")
}

func TestTokenCmd(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test-secret")

	out, err := execute(t, "token", "--user", "ana")
	require.NoError(t, err)

	user, err := auth.ParseToken("test-secret", string(bytes.TrimSpace([]byte(out))))
	require.NoError(t, err)
	assert.Equal(t, "ana", user)
}

func TestTokenCmd_NoSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	_, err := execute(t, "token", "--user", "ana")
	assert.Error(t, err)
}

func TestImportThenExport(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "shelf.db"))

	csvPath := filepath.Join(dir, "pantry.csv")
	content := "barcode;name;expiry\n" +
		"5601234567890;Leite meio-gordo;2026-03-05\n" +
		";Sem código;2026-03-06\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o600))

	out, err := execute(t, "import", "--user", "ana", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 items (shelflife layout)")
	assert.Contains(t, out, "line 3: missing barcode")

	out, err = execute(t, "export", "--user", "ana", "--digest")
	require.NoError(t, err)
	assert.Contains(t, out, "* 2026-03-05 | Leite meio-gordo |")

	csvOut := filepath.Join(dir, "out.csv")
	_, err = execute(t, "export", "--out", csvOut)
	require.NoError(t, err)

	written, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	assert.Contains(t, string(written), "barcode,name,brand,quantity,expiry,freshness,username,saved_at")
	assert.Contains(t, string(written), "5601234567890,Leite meio-gordo,,,2026-03-05,")
}

func TestImportCmd_UnknownLayout(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "shelf.db"))

	csvPath := filepath.Join(dir, "notes.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("date,amount\n2026-01-01,3\n"), 0o600))

	_, err := execute(t, "import", csvPath)
	assert.Error(t, err)
}
