package domain

// Match pairs a catalog item with its similarity to the query.
// The item is returned exactly as submitted, never a derived projection.
type Match struct {
	item  Item
	score float64
}

// NewMatch creates a match.
func NewMatch(item Item, score float64) Match {
	return Match{item: item, score: score}
}

// Item returns the original catalog item.
func (m Match) Item() Item { return m.item }

// Score returns the cosine similarity in [-1, 1].
func (m Match) Score() float64 { return m.score }
