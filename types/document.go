package types

const (
	ChunkKindText = "text"
	ChunkKindOCR  = "ocr"
)

// DocumentChunk is a single indexed unit in the vector store: either a
// text window cut from a Word document or the OCR output of one embedded
// image.
type DocumentChunk struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	FileName   string `json:"file_name"`
	FilePath   string `json:"file_path"`
	ChunkIndex int    `json:"chunk_index"`
	Kind       string `json:"kind"`
	ImagePath  string `json:"image_path,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

// ProcessedDocument is the result of running one .docx file through the
// document processor.
type ProcessedDocument struct {
	FilePath string
	FileName string
	Text     string
	Chunks   []string
	Images   []string
}

// DocumentServiceConfig contains configuration options for text chunking
type DocumentServiceConfig struct {
	ChunkSize   int // Maximum size for text chunks, in runes
	OverlapSize int // Size of overlap between consecutive chunks, in runes
}

type UploadRequest struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// IndexStats summarizes one run of the indexing pipeline.
type IndexStats struct {
	TotalDocs   int    `json:"total_docs"`
	TotalChunks int    `json:"total_chunks"`
	TotalImages int    `json:"total_images"`
	OCRTexts    int    `json:"ocr_texts"`
	VectorCount int64  `json:"vector_count"`
	Status      string `json:"status"`
}

const (
	IndexStatusSuccess     = "success"
	IndexStatusNoDocuments = "no_documents"
	IndexStatusError       = "error"
)

// IndexProgress is sent over the progress channel while indexing runs.
type IndexProgress struct {
	Stage     string `json:"stage"`
	Message   string `json:"message"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
}

type IndexOptions struct {
	EnableOCR bool `json:"enable_ocr"`
}
