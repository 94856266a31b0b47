package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Vector store backends.
const (
	VectorStoreQdrant = "qdrant"
	VectorStoreMemory = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL          string
	LLMModelName        string
	LLMAPIKey           string
	LLMTemperature      float64
	EmbeddingBaseURL    string
	EmbeddingModelName  string
	EmbeddingDimensions int
	VectorStore         string
	QdrantURL           string
	QdrantCollection    string
	DBPath              string
	BlobDir             string
	ChunkMaxTokens      int
	RAGTopK             int
	EmbedConcurrency    int
	MaxUploadBytes      int64
	PDFToTextPath       string
	RedisURL            string
	EmbeddingCacheTTL   time.Duration
	JWTSecret           string
	APIPort             string
	LogLevel            string
	LogFormat           string
	ImportDir           string
	ImportOwnerID       string
}

// Load reads configuration and returns a validated Config.
//
// Values come from, in order of precedence: environment variables, a .env file
// (current directory or up to 5 parents; never overrides the environment), the YAML
// file named by CONFIG_FILE, then built-in defaults. YAML keys are the environment
// variable names. The DB and blob directories are created.
func Load() (*Config, error) {
	loadDotEnv()

	file, err := readConfigFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	l := &loader{file: file}

	llmBaseURL := l.get("LLM_BASE_URL", "https://api.openai.com")

	cfg := &Config{
		LLMBaseURL:          llmBaseURL,
		LLMModelName:        l.get("LLM_MODEL", "gpt-4"),
		LLMAPIKey:           l.get("LLM_API_KEY", ""),
		LLMTemperature:      l.float("LLM_TEMPERATURE", 0.3),
		EmbeddingBaseURL:    l.get("EMBEDDING_BASE_URL", llmBaseURL),
		EmbeddingModelName:  l.get("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		EmbeddingDimensions: l.positiveInt("EMBEDDING_DIMENSIONS", 512),
		VectorStore:         strings.ToLower(l.get("VECTOR_STORE", VectorStoreQdrant)),
		QdrantURL:           l.get("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:    l.get("QDRANT_COLLECTION", "knowledge-search"),
		DBPath:              l.get("DB_PATH", "./data/knowledge-search.db"),
		BlobDir:             l.get("BLOB_DIR", "./data/blobs"),
		ChunkMaxTokens:      l.positiveInt("CHUNK_MAX_TOKENS", 8000),
		RAGTopK:             l.positiveInt("RAG_TOP_K", 10),
		EmbedConcurrency:    l.positiveInt("EMBED_CONCURRENCY", 8),
		MaxUploadBytes:      int64(l.positiveInt("MAX_UPLOAD_BYTES", 25<<20)),
		PDFToTextPath:       l.get("PDFTOTEXT_PATH", "pdftotext"),
		RedisURL:            l.get("REDIS_URL", ""),
		EmbeddingCacheTTL:   l.duration("EMBEDDING_CACHE_TTL", 24*time.Hour),
		JWTSecret:           l.get("JWT_SECRET", ""),
		APIPort:             l.get("API_PORT", "9000"),
		LogLevel:            strings.ToLower(l.get("LOG_LEVEL", "info")),
		LogFormat:           strings.ToLower(l.get("LOG_FORMAT", "text")),
		ImportDir:           l.get("IMPORT_DIR", ""),
		ImportOwnerID:       l.get("IMPORT_OWNER_ID", ""),
	}
	if l.err != nil {
		return nil, l.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for _, dir := range []string{filepath.Dir(cfg.DBPath), cfg.BlobDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

// Validate checks required fields and enumerated values.
func (c *Config) Validate() error {
	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.VectorStore != VectorStoreQdrant && c.VectorStore != VectorStoreMemory {
		return fmt.Errorf("VECTOR_STORE must be %q or %q, got %q", VectorStoreQdrant, VectorStoreMemory, c.VectorStore)
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.ImportDir != "" && c.ImportOwnerID == "" {
		return fmt.Errorf("IMPORT_OWNER_ID is required when IMPORT_DIR is set")
	}
	return nil
}

// loadDotEnv loads the first .env found in the working directory or its parents.
// Variables already set are not overridden.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i <= 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return // Reached filesystem root
		}
		dir = parent
	}
}

// readConfigFile parses an optional YAML file of KEY: value defaults.
func readConfigFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return values, nil
}

// loader resolves keys against the environment, then the config file.
// The first parse error is kept in err.
type loader struct {
	file map[string]string
	err  error
}

func (l *loader) get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value, ok := l.file[key]; ok && value != "" {
		return value
	}
	return defaultValue
}

func (l *loader) positiveInt(key string, defaultValue int) int {
	raw := l.get(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		l.fail(fmt.Errorf("%s must be a valid integer: %w", key, err))
		return defaultValue
	}
	if n <= 0 {
		l.fail(fmt.Errorf("%s must be greater than 0", key))
		return defaultValue
	}
	return n
}

func (l *loader) float(key string, defaultValue float64) float64 {
	raw := l.get(key, "")
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		l.fail(fmt.Errorf("%s must be a number: %w", key, err))
		return defaultValue
	}
	return f
}

func (l *loader) duration(key string, defaultValue time.Duration) time.Duration {
	raw := l.get(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		l.fail(fmt.Errorf("%s must be a duration: %w", key, err))
		return defaultValue
	}
	if d <= 0 {
		l.fail(fmt.Errorf("%s must be greater than 0", key))
		return defaultValue
	}
	return d
}

func (l *loader) fail(err error) {
	if l.err == nil {
		l.err = err
	}
}
