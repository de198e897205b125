// Package config loads hobbyfinder settings from defaults, an optional YAML
// file and HOBBY_ environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"yashubustudio/hobbyfinder/hobby"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig         `koanf:"server"`
	Data     DataConfig           `koanf:"data"`
	Embedder hobby.EmbedderConfig `koanf:"embedder"`
	Ranking  hobby.RankingConfig  `koanf:"ranking"`
	Logging  LoggingConfig        `koanf:"logging"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	StaticDir         string        `koanf:"static_dir"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gte=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DataConfig locates the catalog and the embedding cache pair.
type DataConfig struct {
	HobbiesPath    string `koanf:"hobbies_path" validate:"required"`
	EmbeddingsPath string `koanf:"embeddings_path" validate:"required"`
	DocumentsPath  string `koanf:"documents_path" validate:"required"`
}

// LoggingConfig mirrors logging.Config for the file-backed settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	File   string `koanf:"file"`
	Caller bool   `koanf:"caller"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8001,
			CORSOrigins:       []string{"*"},
			StaticDir:         "static",
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
		},
		Data: DataConfig{
			HobbiesPath:    "hobbies.json",
			EmbeddingsPath: "hobby_emb.npy",
			DocumentsPath:  "hobby_docs.json",
		},
		Embedder: hobby.EmbedderConfig{
			Provider:      hobby.ProviderORT,
			ModelID:       "all-MiniLM-L6-v2",
			OrtLibrary:    "",
			ModelPath:     "models/all-MiniLM-L6-v2/model.onnx",
			TokenizerPath: "models/all-MiniLM-L6-v2/tokenizer.json",
			MaxSeqLen:     256,
			HashDim:       384,
		},
		Ranking: hobby.RankingConfig{
			Mode:           hobby.ModeHybrid,
			TopK:           5,
			CandidateK:     10,
			SemanticWeight: 2.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "server.log",
		},
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks field constraints and returns one error listing every
// violation.
func (c *Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
