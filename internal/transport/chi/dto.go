package chi

import (
	"fmt"

	"github.com/mobinnet/towersearch/internal/domain"
)

// ErrorCode identifies an API error category.
type ErrorCode string

const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeInterpretationFailed   ErrorCode = "interpretation_failed"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeClassificationFailed   ErrorCode = "classification_failed"
	ErrorCodeVectorDimMismatch      ErrorCode = "vector_dim_mismatch"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the API error envelope.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Item is the wire form of a catalog item.
type Item struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	PartNumber  string `json:"part_number,omitempty"`
	Condition   string `json:"condition,omitempty"`
}

// SearchRequest is the POST /v1/search body. Threshold and Limit override
// the configured defaults for this request only.
type SearchRequest struct {
	Query     string   `json:"query"`
	Items     []Item   `json:"items"`
	Threshold *float64 `json:"threshold,omitempty"`
	Limit     *int     `json:"limit,omitempty"`
}

// SimilarRequest is the POST /v1/similar body.
type SimilarRequest struct {
	Source    Item     `json:"source"`
	Items     []Item   `json:"items"`
	Threshold *float64 `json:"threshold,omitempty"`
	Limit     *int     `json:"limit,omitempty"`
}

// ClassifyRequest is the POST /v1/classify body.
type ClassifyRequest struct {
	Item Item `json:"item"`
}

// ClassifyResponse is the POST /v1/classify result.
type ClassifyResponse struct {
	Location string `json:"location"`
}

// MatchItem is one search result. Score is present only when requested.
type MatchItem struct {
	Item
	Score *float64 `json:"score,omitempty"`
}

// SearchResponse is the result list envelope.
type SearchResponse struct {
	Items []MatchItem `json:"items"`
	Total int         `json:"total"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func itemFromDTO(dto Item) (domain.Item, error) {
	item, err := domain.NewItem(dto.ID, dto.Code, dto.Description, dto.PartNumber, domain.Condition(dto.Condition))
	if err != nil {
		return domain.Item{}, fmt.Errorf("item %q: %w", dto.ID, err)
	}
	return item, nil
}

func itemsFromDTO(dtos []Item) ([]domain.Item, error) {
	if len(dtos) > maxCatalogSize {
		return nil, fmt.Errorf("%w: catalog exceeds %d items", domain.ErrInvalidItem, maxCatalogSize)
	}
	items := make([]domain.Item, 0, len(dtos))
	for _, dto := range dtos {
		item, err := itemFromDTO(dto)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func itemToDTO(item domain.Item) Item {
	return Item{
		ID:          item.ID(),
		Code:        item.Code(),
		Description: item.Description(),
		PartNumber:  item.PartNumber(),
		Condition:   string(item.Condition()),
	}
}

func matchListToDTO(matches []domain.Match, includeScores bool) SearchResponse {
	items := make([]MatchItem, len(matches))
	for i, m := range matches {
		items[i] = MatchItem{Item: itemToDTO(m.Item())}
		if includeScores {
			score := m.Score()
			items[i].Score = &score
		}
	}
	return SearchResponse{Items: items, Total: len(items)}
}
