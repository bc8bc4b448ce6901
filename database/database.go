package database

import (
	"context"

	"github.com/openkms/docchat-be/types"
)

// ChatStore defines the interface for chat-related operations
type ChatStore interface {
	CreateChat(ctx context.Context, chat *types.Chat) error
	GetChat(ctx context.Context, id string) (*types.Chat, error)
	ListChats(ctx context.Context, userID string) ([]types.Chat, error)
	DeleteChat(ctx context.Context, id string) error

	CreateMessage(ctx context.Context, message *types.ChatMessage) error
	GetMessages(ctx context.Context, chatID string) ([]types.ChatMessage, error)
	DeleteMessages(ctx context.Context, chatID string) error
}

// VectorDatabase defines the interface for RAG operations
type VectorDatabase interface {
	// Document operations
	BatchInsertChunks(ctx context.Context, chunks []types.DocumentChunk, embeddings [][]float32) error
	DeleteByFile(ctx context.Context, fileName string) error

	// Search operations
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]types.DocumentChunk, []float32, error)

	// Collection operations
	Count(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
}
