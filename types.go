package towersearch

import (
	"context"
	"fmt"

	"github.com/mobinnet/towersearch/internal/domain"
)

// Item is one inventory material record. ID and Code are required;
// Condition is derived from the code prefix when empty.
type Item struct {
	ID          string
	Code        string
	Description string
	PartNumber  string
	Condition   string
}

// Match is a catalog item with its similarity score.
type Match struct {
	Item  Item
	Score float64
}

// Location is a probable install location on a tower site.
type Location string

// Install locations.
const (
	LocationTowerTop   = Location(domain.LocationTowerTop)
	LocationRackInside = Location(domain.LocationRackInside)
	LocationRackBottom = Location(domain.LocationRackBottom)
)

// InterpretedQuery is the normalized form of a raw search query.
type InterpretedQuery struct {
	Keywords []string
	Facets   map[string]string
}

// Interpreter normalizes raw queries into keywords.
type Interpreter interface {
	Interpret(ctx context.Context, query string) (InterpretedQuery, error)
}

// Embedder vectorizes text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

func (i Item) toDomain() (domain.Item, error) {
	item, err := domain.NewItem(i.ID, i.Code, i.Description, i.PartNumber, domain.Condition(i.Condition))
	if err != nil {
		return domain.Item{}, fmt.Errorf("towersearch: %w", err)
	}
	return item, nil
}

func itemsToDomain(items []Item) ([]domain.Item, error) {
	out := make([]domain.Item, 0, len(items))
	for _, i := range items {
		item, err := i.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func itemFromDomain(item domain.Item) Item {
	return Item{
		ID:          item.ID(),
		Code:        item.Code(),
		Description: item.Description(),
		PartNumber:  item.PartNumber(),
		Condition:   string(item.Condition()),
	}
}

func matchesFromDomain(matches []domain.Match) []Match {
	out := make([]Match, len(matches))
	for i, m := range matches {
		out[i] = Match{Item: itemFromDomain(m.Item()), Score: m.Score()}
	}
	return out
}
