package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StorageService keeps uploaded job description documents on local disk
// until their text has been extracted.
type StorageService interface {
	SaveUpload(file *multipart.FileHeader, prefix string) (StoredFile, error)
	Path(filename string) string
	Remove(filename string) error
	EnsureUploadDir() error
}

type StoredFile struct {
	Filename     string
	OriginalName string
	Path         string
	Ext          string
	Size         int64
}

var allowedUploadExts = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

func (s *storageService) SaveUpload(file *multipart.FileHeader, prefix string) (StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExts[ext] {
		return StoredFile{}, newValidationError("file", "unsupported file extension %q", ext)
	}
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return StoredFile{}, newValidationError("file", "larger than %d bytes", s.maxFileSize)
	}

	filename := fmt.Sprintf("%s_%s%s", prefix, uuid.NewString(), ext)
	path := s.Path(filename)

	src, err := file.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(path)
		return StoredFile{}, fmt.Errorf("failed to save file: %w", err)
	}

	return StoredFile{
		Filename:     filename,
		OriginalName: file.Filename,
		Path:         path,
		Ext:          ext,
		Size:         written,
	}, nil
}

func (s *storageService) Path(filename string) string {
	return filepath.Join(s.uploadPath, filepath.Base(filename))
}

func (s *storageService) Remove(filename string) error {
	if err := os.Remove(s.Path(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
