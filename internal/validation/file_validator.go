package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"salestracker/internal/config"
)

// Sentinel errors for the source file checks.
var (
	ErrNotExist      = errors.New("file does not exist")
	ErrIsDirectory   = errors.New("path is a directory")
	ErrEmptyFile     = errors.New("file is empty")
	ErrBadExtension  = errors.New("unexpected file extension")
	ErrTemporaryFile = errors.New("temporary Excel lock file")
)

var (
	workbookExtensions  = []string{".xlsx", ".xlsm"}
	delimitedExtensions = []string{".csv", ".txt"}
)

// FileValidator checks the input files and export directory before they are
// used, so startup fails with a message naming the file.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateSources checks both configured source files.
func (v *FileValidator) ValidateSources(cfg config.DataConfig) error {
	return errors.Join(
		v.ValidateWorkbook(cfg.WorkbookPath),
		v.ValidateDelimited(cfg.CSVPath),
	)
}

// ValidateWorkbook checks that path is a readable, non-empty workbook.
func (v *FileValidator) ValidateWorkbook(path string) error {
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Workbook is an Excel lock file", slog.String("file", path))
		return fmt.Errorf("%s: %w", path, ErrTemporaryFile)
	}
	if err := v.checkExtension(path, workbookExtensions); err != nil {
		return err
	}
	return v.ValidateFile(path)
}

// ValidateDelimited checks that path is a readable, non-empty CSV file.
func (v *FileValidator) ValidateDelimited(path string) error {
	if err := v.checkExtension(path, delimitedExtensions); err != nil {
		return err
	}
	return v.ValidateFile(path)
}

// ValidateFile checks that path exists, is a regular file with content and
// can be opened.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file", slog.String("path", path))
		return fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}
	if info.Size() == 0 {
		v.logger.Error("File is empty", slog.String("file", path))
		return fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	_ = file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory creates dir if needed and verifies it is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

func (v *FileValidator) checkExtension(path string, allowed []string) error {
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	v.logger.Error("Unexpected file extension",
		slog.String("file", path),
		slog.String("extension", ext))
	return fmt.Errorf("%s: %w %q (want one of %s)", path, ErrBadExtension, ext, strings.Join(allowed, ", "))
}
