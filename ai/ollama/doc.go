// Package ollama implements the ai service interfaces against an Ollama
// server: image captioning through a vision model (llava by default) and
// text embeddings through an embedding model.
package ollama
