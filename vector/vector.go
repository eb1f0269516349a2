package vector

import (
	"fmt"
	"math"

	"github.com/mus-format/mus-go/raw"
)

// DefaultDim is the embedding dimension produced by the default
// sentence-embedding models.
const DefaultDim = 384

// float32Size is the fixed encoded width of one vector component.
const float32Size = 4

// Marshal serializes a vector as a contiguous sequence of fixed-width
// little-endian float32 values. The encoding carries no length prefix;
// the dimension is implied by the blob length.
func Marshal(v []float32) []byte {
	bs := make([]byte, len(v)*float32Size)
	n := 0
	for _, val := range v {
		n += raw.Float32.Marshal(val, bs[n:])
	}
	return bs
}

// Unmarshal deserializes a vector of the given dimension from its fixed-width
// encoding. The blob length must be exactly dim components; anything else is
// a hard error. Unmarshal(Marshal(v), len(v)) reproduces v exactly.
func Unmarshal(bs []byte, dim int) ([]float32, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", dim)
	}
	if len(bs) != dim*float32Size {
		return nil, fmt.Errorf("vector blob is %d bytes, expected %d for dimension %d",
			len(bs), dim*float32Size, dim)
	}

	v := make([]float32, dim)
	n := 0
	for i := range v {
		val, read, err := raw.Float32.Unmarshal(bs[n:])
		if err != nil {
			return nil, err
		}
		v[i] = val
		n += read
	}
	return v, nil
}

// Dim returns the dimension implied by an encoded vector blob, or an error if
// the blob length is not a whole number of components.
func Dim(bs []byte) (int, error) {
	if len(bs)%float32Size != 0 {
		return 0, fmt.Errorf("vector blob is %d bytes, not a multiple of %d", len(bs), float32Size)
	}
	return len(bs) / float32Size, nil
}

// CosineSimilarity computes the cosine similarity between a and b: the dot
// product of the unit-normalized vectors, in [-1, 1]. If either vector has
// zero norm, or the lengths differ, the similarity is 0 rather than NaN.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Normalize normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	// Can't normalize zero vector
	if magnitude == 0 {
		result := make([]float32, len(v))
		return result
	}

	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}
