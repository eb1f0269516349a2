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
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// CaptionHost is the base URL for the image captioning service.
	// Example: "http://localhost:11434" for a local Ollama server
	CaptionHost string

	// EmbeddingHost is the base URL for the embedding service.
	// Example: "http://localhost:11434" for a local Ollama server
	EmbeddingHost string

	// CaptionModel is the vision model identifier used for image descriptions.
	// Example: "llava:latest", "llava:13b"
	CaptionModel string

	// EmbeddingModel is the model identifier used for text embeddings.
	// Example: "embeddinggemma", "nomic-embed-text"
	EmbeddingModel string

	// MaxAttempts is the total number of attempts per captioning request,
	// including the first. Default: 3
	MaxAttempts int

	// RetryBaseDelay is the delay before the first retry; it doubles on each
	// subsequent retry. Default: 2s
	RetryBaseDelay time.Duration

	// RequestTimeout bounds each individual service call, independent of the
	// retry schedule. Default: 60s
	RequestTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithCaptionHost sets the captioning service host URL.
func WithCaptionHost(host string) ConfigOption {
	return func(c *Config) {
		c.CaptionHost = host
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithHost sets both caption and embedding hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.CaptionHost = host
		c.EmbeddingHost = host
	}
}

// WithCaptionModel sets the vision model identifier.
func WithCaptionModel(model string) ConfigOption {
	return func(c *Config) {
		c.CaptionModel = model
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithMaxAttempts sets the total attempt count for captioning requests.
func WithMaxAttempts(attempts int) ConfigOption {
	return func(c *Config) {
		c.MaxAttempts = attempts
	}
}

// WithRetryBaseDelay sets the base delay for exponential backoff.
func WithRetryBaseDelay(delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryBaseDelay = delay
	}
}

// WithRequestTimeout sets the per-attempt request timeout.
func WithRequestTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

// DefaultConfig returns a Config with sensible defaults for a local Ollama server.
// By default, captioning and embeddings use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434"
	return &Config{
		CaptionHost:    defaultHost,
		EmbeddingHost:  defaultHost,
		CaptionModel:   "llava:latest",
		EmbeddingModel: "embeddinggemma",
		MaxAttempts:    3,
		RetryBaseDelay: 2 * time.Second,
		RequestTimeout: 60 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithCaptionModel("llava:13b"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// Trailing slashes on host URLs are removed; the Ollama client appends its
// own API paths.
func (c *Config) Normalize() {
	c.CaptionHost = strings.TrimSuffix(c.CaptionHost, "/")
	c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	// Normalize first to ensure hosts are in correct format
	c.Normalize()

	if c.CaptionHost == "" {
		return errors.New("ai config: CaptionHost is required")
	}
	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.CaptionModel == "" {
		return errors.New("ai config: CaptionModel is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.MaxAttempts < 1 {
		return errors.New("ai config: MaxAttempts must be at least 1")
	}
	if c.RetryBaseDelay <= 0 {
		return errors.New("ai config: RetryBaseDelay must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("ai config: RequestTimeout must be positive")
	}
	return nil
}
