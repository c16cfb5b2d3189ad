package filestorage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
	"github.com/yigit/lecturetable/internal/pkg/logger"
)

// LocalStorage saves files below a root directory of an afero filesystem.
type LocalStorage struct {
	fs       afero.Fs
	basePath string // Root directory inside fs
	baseURL  string // Prepended to names to build public URLs (optional)
}

// NewLocalStorage creates a storage rooted at basePath on the OS filesystem.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	return NewStorage(afero.NewOsFs(), basePath, baseURL)
}

// NewStorage creates a storage on any afero filesystem.
func NewStorage(fs afero.Fs, basePath, baseURL string) (*LocalStorage, error) {
	if err := fs.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}

	return &LocalStorage{
		fs:       fs,
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save writes data under a UUID file name.
func (ls *LocalStorage) Save(data []byte, ext, mimeType string) (*FileInfo, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := uuid.New().String() + ext
	dst := filepath.Join(ls.basePath, name)

	if err := afero.WriteFile(ls.fs, dst, data, 0o644); err != nil {
		logger.Error().Err(err).Str("path", dst).Msg("Failed to write export file")
		_ = ls.fs.Remove(dst)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	info := &FileInfo{
		Name:     name,
		Path:     name,
		FileSize: int64(len(data)),
		MimeType: mimeType,
	}
	if ls.baseURL != "" {
		info.URL = ls.baseURL + "/" + name
	}

	logger.Info().Str("saved_as", name).Int64("size", info.FileSize).Msg("Export saved")
	return info, nil
}

// Open opens a stored file. Names containing path elements are rejected.
func (ls *LocalStorage) Open(name string) (io.ReadCloser, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	f, err := ls.fs.Open(filepath.Join(ls.basePath, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewResourceNotFoundError("export not found")
		}
		return nil, fmt.Errorf("open export: %w", err)
	}
	return f, nil
}

// Delete removes a stored file.
func (ls *LocalStorage) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ls.fs.Remove(filepath.Join(ls.basePath, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperrors.NewResourceNotFoundError("export not found")
		}
		return fmt.Errorf("delete export: %w", err)
	}
	return nil
}

func checkName(name string) error {
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return apperrors.NewBadRequestError("invalid export name")
	}
	return nil
}
