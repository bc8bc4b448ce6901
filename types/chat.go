package types

type ChatRequest struct {
	ChatId   string    `json:"chat_id"`
	Messages []Message `json:"messages"`
	TopK     int       `json:"top_k,omitempty"`
}

type ChatResponse struct {
	ChatId  string   `json:"chat_id"`
	Message *Message `json:"message"`
	Sources []Source `json:"sources,omitempty"`
}

// Chat represents a conversation
type Chat struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	Title     string `bson:"title" json:"title"`
	UserID    string `bson:"user_id" json:"user_id"`
	CreatedAt int64  `bson:"created_at" json:"created_at"`
	UpdatedAt int64  `bson:"updated_at" json:"updated_at"`
}

// ChatMessage is a persisted chat turn.
type ChatMessage struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	ChatID    string `bson:"chat_id" json:"chat_id"`
	Role      string `bson:"role" json:"role"`
	Content   string `bson:"content" json:"content"`
	CreatedAt int64  `bson:"created_at" json:"created_at"`
}

// RetrievedDocument is a chunk returned by similarity search together
// with its similarity score (1 - cosine distance).
type RetrievedDocument struct {
	Chunk DocumentChunk `json:"chunk"`
	Score float32       `json:"score"`
}

// Source points at the document a part of an answer came from.
type Source struct {
	FileName string  `json:"file_name"`
	Kind     string  `json:"kind"`
	Score    float32 `json:"score"`
}

type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type AskResponse struct {
	Question      string              `json:"question"`
	Answer        string              `json:"answer"`
	Sources       []Source            `json:"sources"`
	RetrievedDocs []RetrievedDocument `json:"retrieved_docs,omitempty"`
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type SearchResponse struct {
	Documents []RetrievedDocument `json:"documents"`
}
