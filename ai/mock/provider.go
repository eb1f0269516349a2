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


package mock

import "github.com/poiesic/archivit/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock captioner and embedder instances.
type MockProvider struct {
	captioner *MockCaptioner
	embedder  *MockEmbedder
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockCaptioner()/GetMockEmbedder() to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		captioner: NewMockCaptioner(),
		embedder:  NewMockEmbedder(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(captioner *MockCaptioner, embedder *MockEmbedder) ai.AIProvider {
	return &MockProvider{
		captioner: captioner,
		embedder:  embedder,
	}
}

// Captioner returns the mock captioner.
func (p *MockProvider) Captioner() ai.Captioner {
	return p.captioner
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// GetMockCaptioner returns the concrete mock captioner for test assertions.
func (p *MockProvider) GetMockCaptioner() *MockCaptioner {
	return p.captioner
}

// GetMockEmbedder returns the concrete mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}
