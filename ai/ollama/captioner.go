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


package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/archivit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// ErrEmptyImage is returned when DescribeImage is called with no image data.
var ErrEmptyImage = errors.New("image data is empty")

// Captioner implements ai.Captioner using an Ollama vision model.
type Captioner struct {
	client      llms.Model
	maxAttempts int
	baseDelay   time.Duration
	timeout     time.Duration
	logger      *slog.Logger
}

// newCaptioner is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCaptioner(config *ai.Config) (*Captioner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := ollama.New(
		ollama.WithServerURL(config.CaptionHost),
		ollama.WithModel(config.CaptionModel),
	)
	if err != nil {
		return nil, err
	}

	return &Captioner{
		client:      client,
		maxAttempts: config.MaxAttempts,
		baseDelay:   config.RetryBaseDelay,
		timeout:     config.RequestTimeout,
		logger:      slog.Default().With("component", "ollama-captioner"),
	}, nil
}

// NewCaptioner creates a new captioner using the provided configuration.
//
// Returns ai.Captioner interface to enforce abstraction.
func NewCaptioner(config *ai.Config) (ai.Captioner, error) {
	return newCaptioner(config)
}

// DescribeImage requests a natural-language description of the image bytes
// from the vision model. The request carries the model identifier, the fixed
// descriptive prompt, and the image payload (base64-encoded on the wire by
// the client), non-streaming. Transient failures are retried with exponential
// backoff; each attempt is bounded by the configured request timeout. If all
// attempts fail the last error is returned: the caller decides what to do
// with an uncaptioned image, never this type.
func (c *Captioner) DescribeImage(ctx context.Context, imageData []byte) (string, error) {
	if len(imageData) == 0 {
		return "", ErrEmptyImage
	}

	mime := http.DetectContentType(imageData)
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(captionPrompt),
				llms.BinaryPart(mime, imageData),
			},
		},
	}

	var raw string
	err := ai.RetryWithBackoff(ctx, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		response, err := c.client.GenerateContent(attemptCtx, content, llms.WithTemperature(0.2))
		if err != nil {
			c.logger.Warn("caption request failed", "err", err)
			return err
		}
		if len(response.Choices) < 1 {
			return errors.New("captioning service returned no choices")
		}

		raw = strings.TrimSpace(response.Choices[0].Content)
		return nil
	}, c.maxAttempts, c.baseDelay)

	if err != nil {
		c.logger.Error("caption generation exhausted retries", "attempts", c.maxAttempts, "err", err)
		return "", fmt.Errorf("describe image: %w", err)
	}

	if raw == "" {
		return "", errors.New("captioning service returned an empty description")
	}

	return cleanCaption(raw), nil
}
