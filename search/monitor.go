package search

import "github.com/poiesic/archivit/core"

// SearchMonitor provides hooks to observe the semantic search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterQueryEmbedding(embedding []float32)
	AfterScan(candidates int, kept int)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                  {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32) {}
func (n *noopMonitor) AfterScan(_ int, _ int)          {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)   {}
