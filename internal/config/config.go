package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"docuchat/internal/apperr"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Address string `yaml:"address"` // listen address, e.g. ":8080"
}

// LoggingConfig selects the log level for the whole process.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// GeminiConfig configures the Google generative AI backend. The API key is
// taken from the GOOGLE_API_KEY environment variable, not from this file.
// Temperature is a pointer so an explicit 0 is distinguishable from unset.
type GeminiConfig struct {
	EmbeddingModel string        `yaml:"embeddingModel"` // e.g. "embedding-001"
	GenerateModel  string        `yaml:"generateModel"`  // e.g. "gemini-1.5-pro-latest"
	Temperature    *float32      `yaml:"temperature"`
	Timeout        time.Duration `yaml:"timeout"` // per-call deadline for embedding and generation
}

// OllamaConfig configures the optional local model backend.
type OllamaConfig struct {
	BaseURL        string        `yaml:"baseURL"`        // defaults to http://localhost:11434
	EmbeddingModel string        `yaml:"embeddingModel"` // e.g. "nomic-embed-text"
	GenerateModel  string        `yaml:"generateModel"`  // e.g. "llama3"
	Timeout        time.Duration `yaml:"timeout"`        // per-call deadline for embedding and generation
}

// ChunkProfile is one chunking configuration. Two independent profiles exist:
// a small one for Q&A embedding and a large one for summarization.
type ChunkProfile struct {
	Size    int `yaml:"size"`    // maximum chunk length in characters
	Overlap int `yaml:"overlap"` // characters shared between consecutive chunks
}

// ChunkingConfig holds both chunk profiles.
type ChunkingConfig struct {
	QA      ChunkProfile `yaml:"qa"`
	Summary ChunkProfile `yaml:"summary"`
}

// IndexConfig configures the on-disk vector index.
type IndexConfig struct {
	Dir  string `yaml:"dir"`  // directory holding index snapshots
	Name string `yaml:"name"` // default index name
}

// RetrievalConfig configures similarity search.
type RetrievalConfig struct {
	TopK int `yaml:"topK"` // number of chunks returned per query
}

// KeywordsConfig configures keyword extraction thresholds.
type KeywordsConfig struct {
	Count             int `yaml:"count"`             // keywords returned per text
	MinWordLenDoc     int `yaml:"minWordLenDoc"`     // minimum token length for raw document text
	MinWordLenSummary int `yaml:"minWordLenSummary"` // minimum token length for summary text
}

// PapersConfig configures the academic-search clients.
type PapersConfig struct {
	MaxResults   int           `yaml:"maxResults"`   // records returned per discovery request
	PageSize     int           `yaml:"pageSize"`     // results fetched per API call
	MaxRetries   int           `yaml:"maxRetries"`   // retry budget per API call
	RequestDelay time.Duration `yaml:"requestDelay"` // pacing between API calls
	Timeout      time.Duration `yaml:"timeout"`      // per-call deadline
}

// WebSearchConfig configures the Google Custom Search fallback. Empty
// credentials disable the fallback; the answer path then uses the no-result
// sentinel instead of failing.
type WebSearchConfig struct {
	EngineID string        `yaml:"engineID"` // Custom Search engine ID (cx)
	Timeout  time.Duration `yaml:"timeout"`
}

// VoiceConfig configures the speech-capture collaborator.
type VoiceConfig struct {
	BaseURL       string        `yaml:"baseURL"`       // transcription sidecar address
	ListenTimeout time.Duration `yaml:"listenTimeout"` // maximum wait for speech to start
	PhraseLimit   time.Duration `yaml:"phraseLimit"`   // maximum recorded phrase length
	Timeout       time.Duration `yaml:"timeout"`       // overall HTTP deadline
}

// AppConfig is the root configuration for the docuchat service. All tunables
// that used to be scattered constants live here with named fields.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Provider  string          `yaml:"provider"` // "gemini" (default) or "ollama"
	Gemini    GeminiConfig    `yaml:"gemini"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Keywords  KeywordsConfig  `yaml:"keywords"`
	Papers    PapersConfig    `yaml:"papers"`
	WebSearch WebSearchConfig `yaml:"webSearch"`
	Voice     VoiceConfig     `yaml:"voice"`

	// GoogleAPIKey is resolved from the environment at load time.
	GoogleAPIKey string `yaml:"-"`
}

// LoadConfig reads and parses the YAML configuration at path. A missing file
// is not an error: defaults are returned so the service can run with only
// environment variables set.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}

	applyDefaults(cfg)
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	return cfg, nil
}

// Validate checks startup-time requirements. A missing generative-service
// credential is a configuration error and must abort the process, not
// individual requests.
func (c *AppConfig) Validate() error {
	if c.Provider != "gemini" && c.Provider != "ollama" {
		return fmt.Errorf("%w: unknown provider '%s'", apperr.ErrConfiguration, c.Provider)
	}
	if c.Provider == "gemini" && c.GoogleAPIKey == "" {
		return fmt.Errorf("%w: GOOGLE_API_KEY environment variable is not set", apperr.ErrConfiguration)
	}
	if c.Chunking.QA.Overlap >= c.Chunking.QA.Size || c.Chunking.Summary.Overlap >= c.Chunking.Summary.Size {
		return fmt.Errorf("%w: chunk overlap must be smaller than chunk size", apperr.ErrConfiguration)
	}
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Provider == "" {
		cfg.Provider = "gemini"
	}
	if cfg.Gemini.EmbeddingModel == "" {
		cfg.Gemini.EmbeddingModel = "embedding-001"
	}
	if cfg.Gemini.GenerateModel == "" {
		cfg.Gemini.GenerateModel = "gemini-1.5-pro-latest"
	}
	if cfg.Gemini.Temperature == nil {
		t := float32(0.2)
		cfg.Gemini.Temperature = &t
	}
	if cfg.Gemini.Timeout == 0 {
		cfg.Gemini.Timeout = 60 * time.Second
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Ollama.Timeout == 0 {
		cfg.Ollama.Timeout = 120 * time.Second
	}
	if cfg.Chunking.QA.Size == 0 {
		cfg.Chunking.QA = ChunkProfile{Size: 2000, Overlap: 500}
	}
	if cfg.Chunking.Summary.Size == 0 {
		cfg.Chunking.Summary = ChunkProfile{Size: 10000, Overlap: 1000}
	}
	if cfg.Index.Dir == "" {
		cfg.Index.Dir = "data"
	}
	if cfg.Index.Name == "" {
		cfg.Index.Name = "faiss_index"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 4
	}
	if cfg.Keywords.Count == 0 {
		cfg.Keywords.Count = 5
	}
	if cfg.Keywords.MinWordLenDoc == 0 {
		cfg.Keywords.MinWordLenDoc = 3
	}
	if cfg.Keywords.MinWordLenSummary == 0 {
		cfg.Keywords.MinWordLenSummary = 2
	}
	if cfg.Papers.MaxResults == 0 {
		cfg.Papers.MaxResults = 10
	}
	if cfg.Papers.PageSize == 0 {
		cfg.Papers.PageSize = 10
	}
	if cfg.Papers.MaxRetries == 0 {
		cfg.Papers.MaxRetries = 3
	}
	if cfg.Papers.RequestDelay == 0 {
		cfg.Papers.RequestDelay = 3 * time.Second
	}
	if cfg.Papers.Timeout == 0 {
		cfg.Papers.Timeout = 30 * time.Second
	}
	if cfg.WebSearch.Timeout == 0 {
		cfg.WebSearch.Timeout = 15 * time.Second
	}
	if cfg.Voice.BaseURL == "" {
		cfg.Voice.BaseURL = "http://localhost:5005"
	}
	if cfg.Voice.ListenTimeout == 0 {
		cfg.Voice.ListenTimeout = 5 * time.Second
	}
	if cfg.Voice.PhraseLimit == 0 {
		cfg.Voice.PhraseLimit = 10 * time.Second
	}
	if cfg.Voice.Timeout == 0 {
		cfg.Voice.Timeout = 30 * time.Second
	}
}
