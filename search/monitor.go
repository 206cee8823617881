package search

import "github.com/Jash2606/vector-graph-retrieval-app/core"

// SearchMonitor provides hooks to observe the hybrid search process.
// Implement this interface to track intermediate candidate sets and the
// merge outcome during search.
type SearchMonitor interface {
	Start(query string)
	AfterVectorSearch(matches []core.Match)
	AfterQueryEntityExtraction(entities []*core.Entity)
	AfterGraphExpansion(scores map[core.ID]float64)
	Degraded(reason string)
	Finish(results []*core.HybridResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                              {}
func (n *noopMonitor) AfterVectorSearch(_ []core.Match)            {}
func (n *noopMonitor) AfterQueryEntityExtraction(_ []*core.Entity) {}
func (n *noopMonitor) AfterGraphExpansion(_ map[core.ID]float64)   {}
func (n *noopMonitor) Degraded(_ string)                           {}
func (n *noopMonitor) Finish(_ []*core.HybridResult)               {}
