package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/openkms/docchat-be/database"
	"github.com/openkms/docchat-be/types"
	"github.com/openkms/docchat-be/utils"
	"github.com/panjf2000/ants/v2"
)

const (
	StageDocuments = "documents"
	StageChunks    = "chunks"
	StageImages    = "images"
	StageOCR       = "ocr"
	StageDone      = "done"
)

// IndexerService runs the indexing pipeline: process Word documents,
// chunk their text, embed the chunks, store them in the vector database,
// then OCR the extracted images and index those texts too. Documents are
// processed concurrently on a worker pool.
type IndexerService struct {
	docService   *DocxService
	ocrService   *OCRService
	embedder     Embedder
	store        database.VectorDatabase
	documentsDir string
	imagesDir    string
	poolSize     int
}

func NewIndexerService(
	docService *DocxService,
	ocrService *OCRService,
	embedder Embedder,
	store database.VectorDatabase,
	documentsDir, imagesDir string,
) *IndexerService {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	return &IndexerService{
		docService:   docService,
		ocrService:   ocrService,
		embedder:     embedder,
		store:        store,
		documentsDir: documentsDir,
		imagesDir:    imagesDir,
		poolSize:     poolSize,
	}
}

func report(progress chan<- types.IndexProgress, p types.IndexProgress) {
	if progress == nil {
		return
	}
	select {
	case progress <- p:
	default:
		// Drop updates nobody is reading.
	}
}

// IndexDocuments runs the whole pipeline over the documents directory.
func (s *IndexerService) IndexDocuments(ctx context.Context, opts types.IndexOptions, progress chan<- types.IndexProgress) (*types.IndexStats, error) {
	stats := &types.IndexStats{Status: types.IndexStatusSuccess}

	files, err := s.docService.ListDocuments(s.documentsDir)
	if err != nil {
		stats.Status = types.IndexStatusError
		return stats, err
	}
	if len(files) == 0 {
		stats.Status = types.IndexStatusNoDocuments
		return stats, nil
	}

	processed, err := s.processDocuments(ctx, files, progress)
	if err != nil {
		stats.Status = types.IndexStatusError
		return stats, err
	}
	stats.TotalDocs = len(processed)

	// Collect text chunks across documents.
	var chunks []types.DocumentChunk
	var allImages []string
	now := time.Now().Unix()
	for _, doc := range processed {
		stem := utils.FileNameWithoutExt(doc.FileName)
		for i, content := range doc.Chunks {
			chunks = append(chunks, types.DocumentChunk{
				ID:         fmt.Sprintf("%s_chunk_%d", stem, i),
				Content:    content,
				FileName:   doc.FileName,
				FilePath:   doc.FilePath,
				ChunkIndex: i,
				Kind:       types.ChunkKindText,
				CreatedAt:  now,
			})
		}
		allImages = append(allImages, doc.Images...)
	}
	stats.TotalChunks = len(chunks)
	stats.TotalImages = len(allImages)

	if len(chunks) > 0 {
		report(progress, types.IndexProgress{Stage: StageChunks, Message: "Embedding text chunks", Total: len(chunks)})
		if err := s.indexChunks(ctx, chunks); err != nil {
			stats.Status = types.IndexStatusError
			return stats, err
		}
	}

	if opts.EnableOCR && len(allImages) > 0 && s.ocrService != nil {
		report(progress, types.IndexProgress{Stage: StageOCR, Message: "Running OCR on extracted images", Total: len(allImages)})
		ocrChunks := s.ocrChunks(allImages)
		stats.OCRTexts = len(ocrChunks)
		if len(ocrChunks) > 0 {
			if err := s.indexChunks(ctx, ocrChunks); err != nil {
				stats.Status = types.IndexStatusError
				return stats, err
			}
		}
	}

	if count, err := s.store.Count(ctx); err == nil {
		stats.VectorCount = count
	}
	report(progress, types.IndexProgress{Stage: StageDone, Message: "Indexing completed"})

	return stats, nil
}

// processDocuments fans file processing out over the worker pool.
func (s *IndexerService) processDocuments(ctx context.Context, files []string, progress chan<- types.IndexProgress) ([]*types.ProcessedDocument, error) {
	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		processed []*types.ProcessedDocument
		done      int
	)

	for _, file := range files {
		file := file
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			doc, err := s.docService.ProcessDocument(file, s.imagesDir)
			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				log.Printf("Failed to process %s: %v", filepath.Base(file), err)
			} else {
				processed = append(processed, doc)
			}
			report(progress, types.IndexProgress{
				Stage:     StageDocuments,
				Message:   filepath.Base(file),
				Processed: done,
				Total:     len(files),
			})
		})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return processed, nil
}

// indexChunks embeds chunk contents and stores them with their vectors.
func (s *IndexerService) indexChunks(ctx context.Context, chunks []types.DocumentChunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(embeddings), len(chunks))
	}

	return s.store.BatchInsertChunks(ctx, chunks, embeddings)
}

// ocrChunks runs OCR over images and keeps the non-empty results.
func (s *IndexerService) ocrChunks(imagePaths []string) []types.DocumentChunk {
	results := s.ocrService.ProcessImagesBatch(imagePaths)
	now := time.Now().Unix()

	var chunks []types.DocumentChunk
	for _, imagePath := range imagePaths {
		text := results[imagePath]
		if text == "" {
			continue
		}
		// The parent directory is named after the source document.
		sourceDoc := filepath.Base(filepath.Dir(imagePath))
		chunks = append(chunks, types.DocumentChunk{
			ID:        fmt.Sprintf("ocr_%s_%s", uuid.NewString()[:8], utils.FileNameWithoutExt(imagePath)),
			Content:   text,
			FileName:  sourceDoc + " (image)",
			ImagePath: imagePath,
			Kind:      types.ChunkKindOCR,
			CreatedAt: now,
		})
	}
	return chunks
}

// IndexFile processes and indexes a single uploaded document, reporting
// chunk-level progress on the status channel.
func (s *IndexerService) IndexFile(ctx context.Context, filePath string, opts types.IndexOptions, status chan<- types.ProcessingDocumentStatus) error {
	if !strings.EqualFold(filepath.Ext(filePath), ".docx") {
		return fmt.Errorf("unsupported file type: %s", filepath.Ext(filePath))
	}

	doc, err := s.docService.ProcessDocument(filePath, s.imagesDir)
	if err != nil {
		return err
	}

	// Drop chunks from any earlier indexing of this file, including the
	// OCR chunks of its images, before inserting the fresh ones.
	stem := utils.FileNameWithoutExt(doc.FileName)
	if err := s.store.DeleteByFile(ctx, doc.FileName); err != nil {
		return err
	}
	if err := s.store.DeleteByFile(ctx, stem+" (image)"); err != nil {
		return err
	}

	now := time.Now().Unix()
	chunks := make([]types.DocumentChunk, 0, len(doc.Chunks))
	for i, content := range doc.Chunks {
		chunks = append(chunks, types.DocumentChunk{
			ID:         fmt.Sprintf("%s_chunk_%d", stem, i),
			Content:    content,
			FileName:   doc.FileName,
			FilePath:   doc.FilePath,
			ChunkIndex: i,
			Kind:       types.ChunkKindText,
			CreatedAt:  now,
		})
	}

	total := len(chunks)
	for i := 0; i < total; i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > total {
			end = total
		}
		if err := s.indexChunks(ctx, chunks[i:end]); err != nil {
			return err
		}
		if status != nil {
			status <- types.ProcessingDocumentStatus{
				Status:          "processing",
				Message:         "Processing document",
				Progress:        float64(end) / float64(total),
				TotalChunks:     total,
				ProcessedChunks: end,
			}
		}
	}

	if opts.EnableOCR && len(doc.Images) > 0 && s.ocrService != nil {
		if ocrChunks := s.ocrChunks(doc.Images); len(ocrChunks) > 0 {
			if err := s.indexChunks(ctx, ocrChunks); err != nil {
				return err
			}
		}
	}

	return nil
}

// Stats reports the corpus size on disk and in the vector store.
func (s *IndexerService) Stats(ctx context.Context) (*types.StatsResponse, error) {
	files, err := s.docService.ListDocuments(s.documentsDir)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &types.StatsResponse{
		DocumentCount: len(files),
		VectorCount:   count,
		DocumentsDir:  s.documentsDir,
	}, nil
}

// Reset drops all indexed chunks.
func (s *IndexerService) Reset(ctx context.Context) error {
	return s.store.Reset(ctx)
}
