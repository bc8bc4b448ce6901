package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/openkms/docchat-be/types"
	"github.com/openkms/docchat-be/utils"
)

// FileService stores uploaded Word documents and feeds them into the
// indexing pipeline.
type FileService struct {
	uploadDir string
	indexer   *IndexerService
}

func NewFileService(uploadDir string, indexer *IndexerService) *FileService {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		panic(err)
	}
	return &FileService{
		uploadDir: uploadDir,
		indexer:   indexer,
	}
}

func (s *FileService) UploadFile(ctx context.Context, req types.UploadRequest, file *multipart.FileHeader, status chan<- types.ProcessingDocumentStatus) error {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".docx" {
		return fmt.Errorf("unsupported file type: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	title := req.Title
	if title == "" {
		title = file.Filename
	}
	filename := utils.TimestampedFileName(title)
	if !strings.HasSuffix(filename, ext) {
		filename += ext
	}
	destPath := filepath.Join(s.uploadDir, filename)

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return err
	}

	if err := s.indexer.IndexFile(ctx, destPath, types.IndexOptions{EnableOCR: true}, status); err != nil {
		return err
	}

	if status != nil {
		status <- types.ProcessingDocumentStatus{
			Status:  "completed",
			Message: "Done processing document",
		}
	}
	return nil
}
