package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/openkms/docchat-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	fakeStore
	inserted   []types.DocumentChunk
	embeddings [][]float32
	deleted    []string
}

func (s *recordingStore) BatchInsertChunks(ctx context.Context, chunks []types.DocumentChunk, embeddings [][]float32) error {
	s.inserted = append(s.inserted, chunks...)
	s.embeddings = append(s.embeddings, embeddings...)
	return nil
}

func (s *recordingStore) DeleteByFile(ctx context.Context, fileName string) error {
	s.deleted = append(s.deleted, fileName)
	return nil
}

func newTestIndexer(t *testing.T, store *recordingStore, documentsDir, imagesDir string) *IndexerService {
	t.Helper()
	return NewIndexerService(
		NewDocxService(DefaultDocumentServiceConfig),
		nil,
		&fakeEmbedder{},
		store,
		documentsDir,
		imagesDir,
	)
}

func TestIndexDocuments(t *testing.T) {
	dir := t.TempDir()
	writeTestDocx(t, filepath.Join(dir, "notes.docx"), `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>Some meeting notes.</w:t></w:r></w:p></w:body></w:document>`, nil)

	store := &recordingStore{}
	indexer := newTestIndexer(t, store, dir, filepath.Join(dir, "images"))

	stats, err := indexer.IndexDocuments(context.Background(), types.IndexOptions{}, nil)

	require.NoError(t, err)
	assert.Equal(t, types.IndexStatusSuccess, stats.Status)
	assert.Equal(t, 1, stats.TotalDocs)
	assert.Equal(t, 1, stats.TotalChunks)

	require.Len(t, store.inserted, 1)
	chunk := store.inserted[0]
	assert.Equal(t, "notes_chunk_0", chunk.ID)
	assert.Equal(t, "Some meeting notes.", chunk.Content)
	assert.Equal(t, "notes.docx", chunk.FileName)
	assert.Equal(t, types.ChunkKindText, chunk.Kind)
	require.Len(t, store.embeddings, 1)
}

func TestIndexDocumentsEmptyDir(t *testing.T) {
	dir := t.TempDir()
	store := &recordingStore{}
	indexer := newTestIndexer(t, store, dir, filepath.Join(dir, "images"))

	stats, err := indexer.IndexDocuments(context.Background(), types.IndexOptions{}, nil)

	require.NoError(t, err)
	assert.Equal(t, types.IndexStatusNoDocuments, stats.Status)
	assert.Empty(t, store.inserted)
}

func TestIndexFile(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "guide.docx")
	writeTestDocx(t, docPath, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>Installation guide.</w:t></w:r></w:p></w:body></w:document>`, nil)

	store := &recordingStore{}
	indexer := newTestIndexer(t, store, dir, filepath.Join(dir, "images"))

	status := make(chan types.ProcessingDocumentStatus, 8)
	err := indexer.IndexFile(context.Background(), docPath, types.IndexOptions{}, status)
	close(status)

	require.NoError(t, err)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "guide_chunk_0", store.inserted[0].ID)

	// Stale chunks from an earlier indexing of this file are removed
	// first, for both the text and the OCR variants of the name.
	assert.Equal(t, []string{"guide.docx", "guide (image)"}, store.deleted)

	var updates []types.ProcessingDocumentStatus
	for s := range status {
		updates = append(updates, s)
	}
	require.Len(t, updates, 1)
	assert.Equal(t, 1, updates[0].TotalChunks)
	assert.Equal(t, 1, updates[0].ProcessedChunks)
}

func TestIndexFileRejectsOtherTypes(t *testing.T) {
	dir := t.TempDir()
	store := &recordingStore{}
	indexer := newTestIndexer(t, store, dir, filepath.Join(dir, "images"))

	err := indexer.IndexFile(context.Background(), filepath.Join(dir, "report.pdf"), types.IndexOptions{}, nil)
	assert.Error(t, err)
}
