package search

import "github.com/poiesic/kala/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterNormalization(normalized string)
	AfterSemanticSearch(ids []string)
	VerbatimHit(doc *core.Document)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                 {}
func (n *noopMonitor) AfterNormalization(_ string)    {}
func (n *noopMonitor) AfterSemanticSearch(_ []string) {}
func (n *noopMonitor) VerbatimHit(_ *core.Document)   {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)  {}
