// Package storage provides the local receipt file store. Uploads get
// an opaque uuid-based key; the claim only ever carries the key.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hima852/expenseflow/internal/application/port"
	"github.com/hima852/expenseflow/internal/domain/entity"
)

// Receipts must be a PDF or image file.
var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ReceiptStore implements port.FileStore on the local filesystem.
type ReceiptStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewReceiptStore creates the store and its base directory.
func NewReceiptStore(baseDir string, logger *zap.Logger) (*ReceiptStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create receipt directory: %w", err)
	}
	return &ReceiptStore{
		baseDir: baseDir,
		logger:  logger,
	}, nil
}

// Save validates and stores an uploaded receipt, returning its opaque
// key. PDFs additionally go through a soundness check so an unreadable
// file is refused at upload time, not discovered at review time.
func (s *ReceiptStore) Save(ctx context.Context, filename string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", &entity.ValidationError{
			Code:    "INVALID_FILE_TYPE",
			Message: "Invalid receipt file type",
			Advice:  "Receipt must be a PDF or image file (PDF, JPG, JPEG, PNG)",
			Fields:  []string{"receipt"},
		}
	}
	if len(content) == 0 {
		return "", &entity.ValidationError{
			Code:    "EMPTY_FILE",
			Message: "Receipt file is empty",
			Advice:  "The uploaded receipt contains no data. Please try uploading again.",
			Fields:  []string{"receipt"},
		}
	}

	if ext == ".pdf" {
		if err := checkPDF(content); err != nil {
			s.logger.Info("Rejected unreadable PDF receipt",
				zap.String("filename", filename),
				zap.Error(err))
			return "", &entity.ValidationError{
				Code:    "UNREADABLE_PDF",
				Message: "Receipt PDF could not be read",
				Advice:  "The PDF appears to be corrupt or empty. Please re-export it and upload again.",
				Fields:  []string{"receipt"},
			}
		}
	}

	key := uuid.NewString() + ext
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		s.logger.Error("Failed to write receipt file", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}

	s.logger.Debug("Receipt stored",
		zap.String("key", key),
		zap.Int("size", len(content)))
	return key, nil
}

// Open resolves a key to a readable stream, its size, and content type.
func (s *ReceiptStore) Open(ctx context.Context, key string) (io.ReadCloser, int64, string, error) {
	ext := strings.ToLower(filepath.Ext(key))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		contentType = "application/octet-stream"
	}

	path, err := s.resolve(key)
	if err != nil {
		return nil, 0, "", err
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, 0, "", &entity.NotFoundError{Kind: "receipt", ID: key}
	}
	if err != nil {
		return nil, 0, "", fmt.Errorf("failed to stat receipt: %w", err)
	}
	if info.Size() == 0 {
		return nil, 0, "", &entity.NotFoundError{Kind: "receipt", ID: key}
	}

	f, err := os.Open(path)
	if err != nil {
		s.logger.Error("Failed to open receipt file", zap.String("key", key), zap.Error(err))
		return nil, 0, "", fmt.Errorf("failed to open receipt: %w", err)
	}

	return f, info.Size(), contentType, nil
}

// resolve joins the key onto the base directory and guards against
// path traversal.
func (s *ReceiptStore) resolve(key string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.Base(key))
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve receipt path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("receipt path escapes base directory: %s", key)
	}
	return absPath, nil
}

// Verify interface compliance
var _ port.FileStore = (*ReceiptStore)(nil)
