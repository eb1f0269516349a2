// Package vector provides the fixed-width binary encoding and similarity
// math for embedding vectors.
package vector
