package crawler

import (
	"deck-crawler/pkg/models"
)

// RowFilter decides which traversal rows reach the output artifact.
type RowFilter interface {
	Filter(row models.Row) bool
}

// CompleteFilter keeps only rows with all four fields set. Placeholder rows
// for commanders without decks and decks without cards are dropped here.
type CompleteFilter struct{}

func (filter CompleteFilter) Filter(row models.Row) bool {
	return row.Complete()
}

// AlwaysFilter keeps every row, placeholders included.
type AlwaysFilter struct{}

func (filter AlwaysFilter) Filter(row models.Row) bool {
	return true
}

// NewRowFilter returns AlwaysFilter when keepIncomplete is set, CompleteFilter otherwise.
func NewRowFilter(keepIncomplete bool) RowFilter {
	if keepIncomplete {
		return AlwaysFilter{}
	}
	return CompleteFilter{}
}
