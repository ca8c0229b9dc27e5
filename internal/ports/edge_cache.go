package ports

import "freight-route-optimizer/internal/domain"

// Memo of outgoing edges per time-expanded node, shared by concurrent solves.
// Entries are idempotent: computing the same node twice yields equal edges,
// so LoadOrStore keeps whichever value was stored first.
type EdgeCache interface {
	Load(node domain.TimeNode) ([]domain.TimeEdge, bool)
	LoadOrStore(node domain.TimeNode, edges []domain.TimeEdge) []domain.TimeEdge
}
