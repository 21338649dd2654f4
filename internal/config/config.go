package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Answer   AnswerConfig   `mapstructure:"answer"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Render   RenderConfig   `mapstructure:"render"`
	Deploy   DeployConfig   `mapstructure:"deploy"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig selects and configures the session storage backend.
type StorageConfig struct {
	Type       string `mapstructure:"type"` // memory, disk or sqlite
	DataDir    string `mapstructure:"data_dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// AnswerConfig configures the remote answer client.
type AnswerConfig struct {
	Provider  string            `mapstructure:"provider"` // http or openai
	BaseURL   string            `mapstructure:"base_url"`
	Path      string            `mapstructure:"path"`
	Timeout   time.Duration     `mapstructure:"timeout"`
	AuthToken string            `mapstructure:"auth_token"`
	Headers   map[string]string `mapstructure:"headers"`
	OpenAI    OpenAIConfig      `mapstructure:"openai"`
}

// OpenAIConfig configures the OpenAI-compatible answer backend.
type OpenAIConfig struct {
	APIKey  string            `mapstructure:"api_key"`
	BaseURL string            `mapstructure:"base_url"`
	Model   string            `mapstructure:"model"`
	Models  map[string]string `mapstructure:"models"` // selector name -> model id
}

// DefaultsConfig holds the settings used before the user changes any.
type DefaultsConfig struct {
	UseRag       bool   `mapstructure:"use_rag"`
	StrictPrompt bool   `mapstructure:"strict_prompt"`
	ModelName    string `mapstructure:"model_name"`
}

// RenderConfig configures answer rendering.
type RenderConfig struct {
	CartURL string `mapstructure:"cart_url"`
}

// DeployConfig points at the deployed stack outputs.
type DeployConfig struct {
	OutputsFile string `mapstructure:"outputs_file"`
	StackName   string `mapstructure:"stack_name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.max_header_bytes", 1<<20)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization"})
	v.SetDefault("cors.max_age", 43200)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("storage.type", "disk")
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.sqlite_path", "./data/chat.db")

	v.SetDefault("answer.provider", "http")
	v.SetDefault("answer.base_url", "")
	v.SetDefault("answer.auth_token", "")
	v.SetDefault("answer.path", "/prompt")
	v.SetDefault("answer.timeout", 120*time.Second)
	v.SetDefault("answer.openai.api_key", "")
	v.SetDefault("answer.openai.base_url", "")
	v.SetDefault("answer.openai.model", "gpt-4o-mini")

	v.SetDefault("defaults.use_rag", true)
	v.SetDefault("defaults.strict_prompt", false)
	v.SetDefault("defaults.model_name", "Claude")

	v.SetDefault("render.cart_url", "https://www.amazon.com/gp/aws/cart/add.html")

	v.SetDefault("deploy.outputs_file", "")
	v.SetDefault("deploy.stack_name", "")
}

var cfg *Config

// Load reads the YAML file at configPath, if there is one, on top of the
// defaults; CHAT_* environment variables override both.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, err
	}

	// the file wins, then CHAT_ANSWER_OPENAI_API_KEY, then the usual OPENAI_API_KEY
	if loaded.Answer.OpenAI.APIKey == "" {
		loaded.Answer.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	cfg = loaded
	return cfg, nil
}

// Get returns the configuration loaded by Load.
func Get() *Config {
	return cfg
}
