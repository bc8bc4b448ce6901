package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/openkms/docchat-be/config"
	"github.com/openkms/docchat-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

var (
	CHUNK_CLASS        = "DocumentChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "fileName", DataType: []string{"text"}},
			{Name: "filePath", DataType: []string{"text"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "kind", DataType: []string{"text"}},
			{Name: "imagePath", DataType: []string{"text"}},
			{Name: "createdAt", DataType: []string{"int"}},
		},
		// Embeddings are computed client-side, so no text2vec module.
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
)

type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(config config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
		cfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     config.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			hasChunkClass = true
			break
		}
	}
	// Create DocumentChunk class if it doesn't exist
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create DocumentChunk class: %v", err)
		}
	}
	return &WeaviateStore{
		client: client,
	}, nil
}

// Reset drops the DocumentChunk class and recreates it empty.
func (s *WeaviateStore) Reset(ctx context.Context) error {
	err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete DocumentChunk class: %v", err)
	}

	err = s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create DocumentChunk class: %v", err)
	}
	return nil
}

func chunkProperties(chunk *types.DocumentChunk) map[string]interface{} {
	return map[string]interface{}{
		"content":    chunk.Content,
		"fileName":   chunk.FileName,
		"filePath":   chunk.FilePath,
		"chunkIndex": chunk.ChunkIndex,
		"kind":       chunk.Kind,
		"imagePath":  chunk.ImagePath,
		"createdAt":  chunk.CreatedAt,
	}
}

func (s *WeaviateStore) BatchInsertChunks(ctx context.Context, chunks []types.DocumentChunk, embeddings [][]float32) error {
	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()

		for j := i; j < end; j++ {
			obj := &models.Object{
				Class:      CHUNK_CLASS,
				Properties: chunkProperties(&chunks[j]),
			}
			if embeddings != nil && j < len(embeddings) {
				obj.Vector = embeddings[j]
			}
			batcher = batcher.WithObjects(obj)
		}

		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}

		log.Printf("Inserted batch %d-%d of %d chunks", i, end, total)
	}

	return nil
}

// DeleteByFile removes every chunk indexed from the given file.
func (s *WeaviateStore) DeleteByFile(ctx context.Context, fileName string) error {
	where := filters.Where().
		WithPath([]string{"fileName"}).
		WithOperator(filters.Equal).
		WithValueString(fileName)

	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(CHUNK_CLASS).
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete chunks of %s: %v", fileName, err)
	}
	return nil
}

// SearchSimilar runs a nearVector query and returns matched chunks with
// their cosine distances.
func (s *WeaviateStore) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]types.DocumentChunk, []float32, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "fileName"},
		{Name: "filePath"},
		{Name: "chunkIndex"},
		{Name: "kind"},
		{Name: "imagePath"},
		{Name: "createdAt"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}, {Name: "id"}}},
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(embedding)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearVector(nearVector)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, nil, err
	}
	if result.Errors != nil {
		return nil, nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var chunks []types.DocumentChunk
	var distances []float32

	if data, ok := result.Data["Get"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			chunk := parseChunk(obj)
			if additional, ok := obj["_additional"].(map[string]interface{}); ok {
				chunk.ID = parseString(additional["id"])
				distances = append(distances, float32(parseFloat(additional["distance"])))
			}
			chunks = append(chunks, chunk)
		}
	}

	return chunks, distances, nil
}

// Count returns the number of objects in the DocumentChunk class.
func (s *WeaviateStore) Count(ctx context.Context) (int64, error) {
	result, err := s.client.GraphQL().Aggregate().
		WithClassName(CHUNK_CLASS).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate: %v", err)
	}
	if result.Errors != nil {
		return 0, fmt.Errorf("failed to aggregate: %v", result.Errors[0].Message)
	}

	if data, ok := result.Data["Aggregate"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok && len(data) > 0 {
		if obj, ok := data[0].(map[string]interface{}); ok {
			if meta, ok := obj["meta"].(map[string]interface{}); ok {
				return int64(parseFloat(meta["count"])), nil
			}
		}
	}
	return 0, nil
}

// Helper functions
func parseChunk(obj map[string]interface{}) types.DocumentChunk {
	return types.DocumentChunk{
		Content:    parseString(obj["content"]),
		FileName:   parseString(obj["fileName"]),
		FilePath:   parseString(obj["filePath"]),
		ChunkIndex: int(parseFloat(obj["chunkIndex"])),
		Kind:       parseString(obj["kind"]),
		ImagePath:  parseString(obj["imagePath"]),
		CreatedAt:  int64(parseFloat(obj["createdAt"])),
	}
}

func parseString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func parseFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}
