package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string              `mapstructure:"port"`
	AIProvider          string              `mapstructure:"ai_provider"`
	AIEndpoint          string              `mapstructure:"ai_endpoint"`
	Model               string              `mapstructure:"model"`
	EmbeddingModel      string              `mapstructure:"embedding_model"`
	OpenAIAPIKey        string              `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKeys       []string            `mapstructure:"gemini_api_keys"`
	DocumentsDir        string              `mapstructure:"documents_dir"`
	ImagesDir           string              `mapstructure:"images_dir"`
	UploadDir           string              `mapstructure:"upload_dir"`
	TopK                int                 `mapstructure:"top_k"`
	MongoURI            string              `mapstructure:"MONGODB_URI"`
	WeaviateStoreConfig WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
	Chunking            ChunkingConfig      `mapstructure:"chunking"`
	OCR                 OCRConfig           `mapstructure:"ocr"`
}

type WeaviateStoreConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"` // Changed to match env var
}

type ChunkingConfig struct {
	ChunkSize   int `mapstructure:"chunk_size"`
	OverlapSize int `mapstructure:"overlap_size"`
}

type OCRConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	Languages     string  `mapstructure:"languages"`
	MinConfidence float64 `mapstructure:"min_confidence"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("WEAVIATE_APIKEY")
	v.BindEnv("MONGODB_URI")

	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("ai_provider", "openai")
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("embedding_model", "text-embedding-3-small")
	v.SetDefault("documents_dir", "data/documents")
	v.SetDefault("images_dir", "data/images")
	v.SetDefault("upload_dir", "data/documents")
	v.SetDefault("top_k", 5)
	v.SetDefault("chunking.chunk_size", 500)
	v.SetDefault("chunking.overlap_size", 100)
	v.SetDefault("ocr.enabled", true)
	v.SetDefault("ocr.languages", "kor+eng")
	v.SetDefault("ocr.min_confidence", 0.5)
}
