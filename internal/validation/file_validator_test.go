package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salestracker/internal/config"
	"salestracker/internal/shared/testutil"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileValidator_ValidateWorkbook(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.xlsx"), 0o755))

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"valid", writeFile(t, dir, "sales.xlsx", "PK"), nil},
		{"macro workbook", writeFile(t, dir, "sales.xlsm", "PK"), nil},
		{"upper case extension", writeFile(t, dir, "SALES.XLSX", "PK"), nil},
		{"missing", filepath.Join(dir, "missing.xlsx"), ErrNotExist},
		{"empty", writeFile(t, dir, "empty.xlsx", ""), ErrEmptyFile},
		{"directory", filepath.Join(dir, "folder.xlsx"), ErrIsDirectory},
		{"csv given", writeFile(t, dir, "sales.csv", "a,b"), ErrBadExtension},
		{"lock file", writeFile(t, dir, "~$sales.xlsx", "x"), ErrTemporaryFile},
	}

	v := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateWorkbook(tt.path)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.path)
		})
	}
}

func TestFileValidator_ValidateDelimited(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil)

	assert.NoError(t, v.ValidateDelimited(writeFile(t, dir, "sales.csv", "a,b\n")))
	assert.NoError(t, v.ValidateDelimited(writeFile(t, dir, "sales.txt", "a,b\n")))
	assert.ErrorIs(t, v.ValidateDelimited(writeFile(t, dir, "sales.xlsx", "PK")), ErrBadExtension)
	assert.ErrorIs(t, v.ValidateDelimited(filepath.Join(dir, "nope.csv")), ErrNotExist)
}

func TestFileValidator_ValidateSources(t *testing.T) {
	workbook, enriched := testutil.WriteSampleData(t, t.TempDir())
	logger, handler := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)

	require.NoError(t, v.ValidateSources(config.DataConfig{WorkbookPath: workbook, CSVPath: enriched}))

	err := v.ValidateSources(config.DataConfig{
		WorkbookPath: filepath.Join(t.TempDir(), "missing.xlsx"),
		CSVPath:      filepath.Join(t.TempDir(), "missing.csv"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotExist)
	assert.Contains(t, err.Error(), "missing.xlsx")
	assert.Contains(t, err.Error(), "missing.csv")
	assert.True(t, handler.ContainsMessage("File does not exist"))
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)

	dir := filepath.Join(t.TempDir(), "nested", "out")
	require.NoError(t, v.ValidateOutputDirectory(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write probe must be removed")

	file := writeFile(t, t.TempDir(), "plain", "x")
	assert.Error(t, v.ValidateOutputDirectory(filepath.Join(file, "sub")))
}
