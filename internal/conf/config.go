package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Data      DataConfig      `mapstructure:"data"`
	Chunking  ChunkingConfig  `mapstructure:"chunking"`
	Search    SearchConfig    `mapstructure:"search"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Debug           bool          `mapstructure:"debug"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	EnableMetrics   bool          `mapstructure:"enable_metrics"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key" validate:"required"`
	BaseURL string `mapstructure:"base_url"`
}

type QdrantConfig struct {
	Host                string `mapstructure:"host" validate:"required"`
	Port                int    `mapstructure:"port" validate:"min=1,max=65535"`
	APIKey              string `mapstructure:"api_key"`
	UseTLS              bool   `mapstructure:"use_tls"`
	Collection          string `mapstructure:"collection" validate:"required"`
	CountryCollection   string `mapstructure:"country_collection" validate:"required"`
	UpsertBatchSize     int    `mapstructure:"upsert_batch_size" validate:"min=1"`
	DistinctScrollLimit int    `mapstructure:"distinct_scroll_limit" validate:"min=1"`
}

type EmbeddingConfig struct {
	Model     string `mapstructure:"model" validate:"required"`
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	Dimension int    `mapstructure:"dimension" validate:"min=1"`
	BatchSize int    `mapstructure:"batch_size" validate:"min=1"`
}

type DataConfig struct {
	SchoolsDirectory string `mapstructure:"schools_directory"`
}

type ChunkingConfig struct {
	MaxChunkSize   int    `mapstructure:"max_chunk_size" validate:"min=1"`
	PartSize       int    `mapstructure:"part_size" validate:"min=1"`
	SplitMode      string `mapstructure:"split_mode" validate:"oneof=supplement replace"`
	CountryWindow  int    `mapstructure:"country_window" validate:"min=1"`
	CountryOverlap int    `mapstructure:"country_overlap" validate:"min=0,ltfield=CountryWindow"`
	TokenEncoding  string `mapstructure:"token_encoding"`
}

type SearchConfig struct {
	Limit          int     `mapstructure:"limit" validate:"min=1"`
	ScoreThreshold float64 `mapstructure:"score_threshold" validate:"gte=0,lte=1"`
	CountryLimit   int     `mapstructure:"country_limit" validate:"min=1"`
}

type LLMConfig struct {
	Model          string  `mapstructure:"model" validate:"required"`
	MaxTokens      int     `mapstructure:"max_tokens" validate:"min=1"`
	Temperature    float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	AnswerLanguage string  `mapstructure:"answer_language"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"min=0,max=15"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type WorkerConfig struct {
	EmbeddingWorkers int `mapstructure:"embedding_workers" validate:"min=1"`
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

// envBindings 配置键与环境变量的映射，排在前面的变量名优先
var envBindings = map[string][]string{
	"server.host":               {"SERVER_HOST", "FLASK_HOST"},
	"server.port":               {"SERVER_PORT", "FLASK_PORT"},
	"server.debug":              {"SERVER_DEBUG", "FLASK_DEBUG"},
	"server.request_timeout":    {"SERVER_REQUEST_TIMEOUT"},
	"server.enable_metrics":     {"SERVER_ENABLE_METRICS"},
	"openai.api_key":            {"OPENAI_API_KEY"},
	"openai.base_url":           {"OPENAI_BASE_URL"},
	"qdrant.host":               {"QDRANT_HOST"},
	"qdrant.port":               {"QDRANT_PORT"},
	"qdrant.api_key":            {"QDRANT_API_KEY"},
	"qdrant.use_tls":            {"QDRANT_USE_TLS"},
	"qdrant.collection":         {"COLLECTION_NAME"},
	"qdrant.country_collection": {"COUNTRY_COLLECTION_NAME"},
	"embedding.model":           {"EMBEDDING_MODEL_NAME"},
	"embedding.base_url":        {"EMBEDDING_BASE_URL"},
	"embedding.api_key":         {"EMBEDDING_API_KEY"},
	"embedding.dimension":       {"EMBEDDING_DIMENSION"},
	"data.schools_directory":    {"SCHOOLS_DIRECTORY"},
	"chunking.max_chunk_size":   {"MAX_CHUNK_SIZE"},
	"chunking.part_size":        {"CHUNK_PART_SIZE"},
	"chunking.split_mode":       {"CHUNK_SPLIT_MODE"},
	"search.limit":              {"SEARCH_LIMIT"},
	"search.score_threshold":    {"SCORE_THRESHOLD"},
	"llm.model":                 {"LLM_MODEL"},
	"llm.max_tokens":            {"LLM_MAX_TOKENS"},
	"llm.temperature":           {"LLM_TEMPERATURE"},
	"llm.answer_language":       {"ANSWER_LANGUAGE"},
	"redis.enabled":             {"REDIS_ENABLED"},
	"redis.addr":                {"REDIS_ADDR"},
	"redis.password":            {"REDIS_PASSWORD"},
	"log.level":                 {"LOG_LEVEL"},
	"log.format":                {"LOG_FORMAT"},
	"log.output":                {"LOG_OUTPUT"},
	"worker.embedding_workers":  {"EMBEDDING_WORKERS"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.enable_metrics", true)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")

	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("qdrant.api_key", "")
	v.SetDefault("qdrant.use_tls", false)
	v.SetDefault("qdrant.collection", "scholar-ai")
	v.SetDefault("qdrant.country_collection", "scholar-ai-countries")
	v.SetDefault("qdrant.upsert_batch_size", 100)
	v.SetDefault("qdrant.distinct_scroll_limit", 1000)

	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.base_url", "")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.dimension", 384)
	v.SetDefault("embedding.batch_size", 32)

	v.SetDefault("data.schools_directory", "data/schools")

	v.SetDefault("chunking.max_chunk_size", 1200)
	v.SetDefault("chunking.part_size", 1000)
	v.SetDefault("chunking.split_mode", "supplement")
	v.SetDefault("chunking.country_window", 800)
	v.SetDefault("chunking.country_overlap", 100)
	v.SetDefault("chunking.token_encoding", "cl100k_base")

	v.SetDefault("search.limit", 10)
	v.SetDefault("search.score_threshold", 0.5)
	v.SetDefault("search.country_limit", 15)

	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.max_tokens", 800)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.answer_language", "Vietnamese")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 24*time.Hour)

	v.SetDefault("worker.embedding_workers", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.enablecaller", true)
	v.SetDefault("log.enablestacktrace", true)
	v.SetDefault("log.file.filename", "logs/scholar-ai.log")
	v.SetDefault("log.file.maxsize", 100)
	v.SetDefault("log.file.maxage", 30)
	v.SetDefault("log.file.maxbackups", 10)
	v.SetDefault("log.file.compress", true)
}

// LoadConfig 加载配置：.env -> 默认值 -> 配置文件（可选）-> 环境变量
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", key, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Embedding.APIKey == "" {
		config.Embedding.APIKey = config.OpenAI.APIKey
	}

	return &config, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 校验配置，OPENAI_API_KEY 为必填；
// 非 OpenAI 托管的 embedding 模型必须配置 EMBEDDING_BASE_URL
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Embedding.needsBaseURL() {
		return fmt.Errorf("invalid config: embedding model %q is not served by OpenAI, set EMBEDDING_BASE_URL", c.Embedding.Model)
	}
	return nil
}

// openAIEmbeddingPrefix api.openai.com 提供的 embedding 模型前缀
const openAIEmbeddingPrefix = "text-embedding-"

func (e *EmbeddingConfig) needsBaseURL() bool {
	return e.BaseURL == "" && !strings.HasPrefix(e.Model, openAIEmbeddingPrefix)
}

// MissingRequirements 返回未满足的配置项对应的环境变量名
func (c *Config) MissingRequirements() []string {
	var missing []string
	if c.OpenAI.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.Qdrant.Host == "" {
		missing = append(missing, "QDRANT_HOST")
	}
	if c.Qdrant.Collection == "" {
		missing = append(missing, "COLLECTION_NAME")
	}
	if c.Embedding.needsBaseURL() {
		missing = append(missing, "EMBEDDING_BASE_URL")
	}
	return missing
}

// Addr 返回 HTTP 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
