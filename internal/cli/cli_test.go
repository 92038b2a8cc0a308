package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/memberimport/internal/config"
	"github.com/mrlokans/memberimport/internal/database/fixtures"
	"github.com/mrlokans/memberimport/internal/entrypoint"
)

const membersCSV = "Voornaam;Achternaam;Geboortedatum;Tak\n" +
	"Emma;Peeters;20/08/2015;Welpen\n" +
	"Noah;Maes;03/02/2017;Kapoenen\n"

func setupCommand(t *testing.T) (ConfigLoader, string) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Database: config.Database{Path: filepath.Join(dir, "memberimport.db")},
		Log:      config.Log{Level: "error"},
		Import: config.Import{
			OrganizationID: "org-1",
			PeriodID:       fixtures.PeriodID,
			Country:        "BE",
			PreviewWorkers: 2,
			SessionTTL:     time.Hour,
			RecordsPath:    filepath.Join(dir, "records.yaml"),
		},
		Backend: config.Backend{Mode: config.BackendModeLocal},
	}

	app, err := entrypoint.NewApp(cfg)
	require.NoError(t, err)
	_, err = fixtures.Seed(context.Background(), app.Database.DB, "org-1")
	require.NoError(t, err)
	require.NoError(t, app.Close())

	path := filepath.Join(dir, "leden.csv")
	require.NoError(t, os.WriteFile(path, []byte(membersCSV), 0o600))

	return func() *config.Config { return cfg }, path
}

func execute(load ConfigLoader, args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCommand("test", load)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPreviewCommand(t *testing.T) {
	load, path := setupCommand(t)

	out, err := execute(load, "preview", path)
	require.NoError(t, err, out)

	assert.Contains(t, out, "leden.csv: 2 rows")
	assert.Contains(t, out, "Voornaam")
	assert.Contains(t, out, "Geboortedatum")
	assert.Contains(t, out, "2 new, 0 existing, 0 to confirm")
	assert.NotContains(t, out, "Errors")
}

func TestImportCommand(t *testing.T) {
	load, path := setupCommand(t)

	out, err := execute(load, "import", path, "--paid")
	require.NoError(t, err, out)

	assert.Contains(t, out, "line 2  Emma Peeters: ok")
	assert.Contains(t, out, "line 3  Noah Maes: ok")
	assert.Contains(t, out, "2 imported, 0 failed")
}

func TestCommandErrors(t *testing.T) {
	load, path := setupCommand(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"preview", filepath.Join(t.TempDir(), "nope.csv")}, "failed to open spreadsheet"},
		{"no file argument", []string{"preview"}, "accepts 1 arg"},
		{"exclusive duplicate flags", []string{"import", path, "--accept-probable", "--reject-probable"}, "accept-probable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(load, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "A", columnName(0))
	assert.Equal(t, "AA", columnName(26))
	assert.Equal(t, "#0", columnName(-1))
}
