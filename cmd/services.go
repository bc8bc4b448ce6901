/*
Copyright © 2025 openkms
*/
package cmd

import (
	"fmt"

	"github.com/openkms/docchat-be/config"
	"github.com/openkms/docchat-be/database"
	"github.com/openkms/docchat-be/service"
	"github.com/openkms/docchat-be/types"
)

// buildIndexer wires the document processing pipeline from config. The
// OpenAI service is always the embedder; the chat model may come from a
// different provider.
func buildIndexer(cfg *config.Config) (*service.IndexerService, *database.WeaviateStore, *service.OpenAIService, error) {
	weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to Weaviate database: %w", err)
	}

	openaiService := service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model, cfg.EmbeddingModel)

	docService := service.NewDocxService(types.DocumentServiceConfig{
		ChunkSize:   cfg.Chunking.ChunkSize,
		OverlapSize: cfg.Chunking.OverlapSize,
	})

	var ocrService *service.OCRService
	if cfg.OCR.Enabled {
		ocrService = service.NewOCRService(cfg.OCR.Languages, cfg.OCR.MinConfidence)
	}

	indexer := service.NewIndexerService(
		docService,
		ocrService,
		openaiService,
		weaviateDb,
		cfg.DocumentsDir,
		cfg.ImagesDir,
	)
	return indexer, weaviateDb, openaiService, nil
}

// buildAIService picks the chat model provider from config.
func buildAIService(cfg *config.Config, openaiService *service.OpenAIService) (service.AIService, error) {
	switch cfg.AIProvider {
	case "gemini":
		return service.NewGeminiService(cfg.GeminiAPIKeys, cfg.Model)
	default:
		return openaiService, nil
	}
}
