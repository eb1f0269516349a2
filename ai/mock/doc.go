// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Captioner, ai.Embedder,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run
// without an Ollama server and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	caption, err := mockProvider.Captioner().DescribeImage(ctx, imageBytes)
//
//	// Custom behavior injection
//	mockCaptioner := mock.NewMockCaptioner()
//	mockCaptioner.DescribeImageFunc = func(ctx context.Context, data []byte) (string, error) {
//	    return "", errors.New("service unavailable")
//	}
//
//	// Check call counts
//	count := mockCaptioner.CallCount()
//
// # Default Behavior
//
//   - MockCaptioner: Returns a stable caption derived from the payload size
//   - MockEmbedder: Returns deterministic 384-dimension vectors based on text hash
//   - MockProvider: Aggregates mock captioner and embedder
package mock
