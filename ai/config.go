// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Backend names an AI service implementation.
type Backend string

const (
	// BackendOpenAI targets any OpenAI-compatible API (Ollama, vLLM, LocalAI).
	BackendOpenAI Backend = "openai"
	// BackendHuggingFace targets the Hugging Face Inference API.
	BackendHuggingFace Backend = "huggingface"
	// BackendGemini targets the Google Gemini API.
	BackendGemini Backend = "gemini"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Backend selects the provider implementation.
	// Default: BackendOpenAI
	Backend Backend

	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// CompletionHost is the base URL for the text completion service API.
	// Entity extraction uses this host too, except on the huggingface backend.
	CompletionHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "michiyasunaga/BioLinkBERT-large"
	EmbeddingModel string

	// CompletionModel is the model identifier to use for criteria parsing.
	// Example: "qwen2.5:3b", "microsoft/Phi-3-mini-4k-instruct"
	CompletionModel string

	// NERModel is the token-classification model used by the huggingface backend.
	// Other backends extract entities through the completion model.
	NERModel string

	// APIKey authenticates against hosted APIs. Optional for local servers.
	APIKey string

	// MaxNewTokens bounds completion length.
	// Default: 512
	MaxNewTokens int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend selects the backend and resets hosts and models to its defaults.
// Apply it before any host or model option.
func WithBackend(backend Backend) ConfigOption {
	return func(c *Config) {
		d := defaultsFor(backend)
		c.Backend = backend
		c.EmbeddingHost = d.EmbeddingHost
		c.CompletionHost = d.CompletionHost
		c.EmbeddingModel = d.EmbeddingModel
		c.CompletionModel = d.CompletionModel
		c.NERModel = d.NERModel
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithCompletionHost sets the completion service host URL.
func WithCompletionHost(host string) ConfigOption {
	return func(c *Config) {
		c.CompletionHost = host
	}
}

// WithHost sets both embedding and completion hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.CompletionHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithCompletionModel sets the completion model identifier.
func WithCompletionModel(model string) ConfigOption {
	return func(c *Config) {
		c.CompletionModel = model
	}
}

// WithNERModel sets the token-classification model identifier.
func WithNERModel(model string) ConfigOption {
	return func(c *Config) {
		c.NERModel = model
	}
}

// WithAPIKey sets the API key for hosted services.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithMaxNewTokens sets the completion length bound.
func WithMaxNewTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxNewTokens = n
	}
}

func defaultsFor(backend Backend) Config {
	switch backend {
	case BackendHuggingFace:
		host := "https://router.huggingface.co/hf-inference"
		return Config{
			Backend:         backend,
			EmbeddingHost:   host,
			CompletionHost:  host,
			EmbeddingModel:  "michiyasunaga/BioLinkBERT-large",
			CompletionModel: "microsoft/Phi-3-mini-4k-instruct",
			NERModel:        "d4data/biomedical-ner-all",
		}
	case BackendGemini:
		return Config{
			Backend:         backend,
			EmbeddingModel:  "text-embedding-004",
			CompletionModel: "gemini-2.5-flash",
		}
	default:
		host := "http://localhost:11434/v1"
		return Config{
			Backend:         BackendOpenAI,
			EmbeddingHost:   host,
			CompletionHost:  host,
			EmbeddingModel:  "embeddinggemma",
			CompletionModel: "qwen2.5:3b",
		}
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and completion use the same host.
func DefaultConfig() *Config {
	cfg := defaultsFor(BackendOpenAI)
	cfg.MaxNewTokens = DefaultMaxNewTokens
	return &cfg
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//   cfg := NewConfig(
//       WithBackend(BackendHuggingFace),
//       WithAPIKey(os.Getenv("HF_TOKEN")),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ParseBackend converts a backend name into a Backend.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendOpenAI, BackendHuggingFace, BackendGemini:
		return b, nil
	case "hf":
		return BackendHuggingFace, nil
	default:
		return "", fmt.Errorf("ai config: unknown backend %q", s)
	}
}

// Normalize ensures the configuration is in a canonical form.
// For the openai backend it adds the /v1 suffix to hosts if missing, which is
// required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
// Other backends only lose trailing slashes.
func (c *Config) Normalize() {
	if c.Backend == "" {
		c.Backend = BackendOpenAI
	}
	c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
	c.CompletionHost = strings.TrimSuffix(c.CompletionHost, "/")
	if c.Backend != BackendOpenAI {
		return
	}
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.CompletionHost != "" && !strings.HasSuffix(c.CompletionHost, "/v1") {
		c.CompletionHost = c.CompletionHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Backend {
	case BackendOpenAI, BackendHuggingFace:
		if c.EmbeddingHost == "" {
			return errors.New("ai config: EmbeddingHost is required")
		}
		if c.CompletionHost == "" {
			return errors.New("ai config: CompletionHost is required")
		}
	case BackendGemini:
		if c.APIKey == "" {
			return errors.New("ai config: APIKey is required for the gemini backend")
		}
	default:
		return fmt.Errorf("ai config: unknown backend %q", c.Backend)
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.CompletionModel == "" {
		return errors.New("ai config: CompletionModel is required")
	}
	if c.Backend == BackendHuggingFace && c.NERModel == "" {
		return errors.New("ai config: NERModel is required for the huggingface backend")
	}
	if c.MaxNewTokens < 1 {
		return errors.New("ai config: MaxNewTokens must be positive")
	}
	return nil
}
