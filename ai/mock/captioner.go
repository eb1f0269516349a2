package mock

import (
	"context"
	"fmt"
)

// MockCaptioner is a test double for ai.Captioner.
// It allows custom behavior injection via function fields.
type MockCaptioner struct {
	// DescribeImageFunc is called by DescribeImage if set.
	// If nil, uses default deterministic behavior.
	DescribeImageFunc func(ctx context.Context, imageData []byte) (string, error)

	callCount int
}

// NewMockCaptioner creates a mock captioner with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via call counting.
func NewMockCaptioner() *MockCaptioner {
	return &MockCaptioner{}
}

// DescribeImage generates a deterministic caption from the payload size.
func (m *MockCaptioner) DescribeImage(ctx context.Context, imageData []byte) (string, error) {
	m.callCount++

	if m.DescribeImageFunc != nil {
		return m.DescribeImageFunc(ctx, imageData)
	}

	// Default: a stable caption derived from the payload
	return fmt.Sprintf("A test image of %d bytes.", len(imageData)), nil
}

// CallCount returns the number of times DescribeImage was called.
func (m *MockCaptioner) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockCaptioner) Reset() {
	m.callCount = 0
	m.DescribeImageFunc = nil
}
