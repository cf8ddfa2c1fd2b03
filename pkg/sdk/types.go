package sdk

// Item is one catalog item sent with a search request.
type Item struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	PartNumber  string `json:"part_number,omitempty"`
	Condition   string `json:"condition,omitempty"`
}

// SearchRequest is the payload for Search. Threshold and Limit override
// the server defaults for this request only. IncludeScores asks the
// server to return similarity scores with each match.
type SearchRequest struct {
	Query         string   `json:"query"`
	Items         []Item   `json:"items"`
	Threshold     *float64 `json:"threshold,omitempty"`
	Limit         *int     `json:"limit,omitempty"`
	IncludeScores bool     `json:"-"`
}

// SimilarRequest is the payload for Similar.
type SimilarRequest struct {
	Source    Item     `json:"source"`
	Items     []Item   `json:"items"`
	Threshold *float64 `json:"threshold,omitempty"`
	Limit     *int     `json:"limit,omitempty"`
}

// Match is one search result. Score is nil unless scores were requested.
type Match struct {
	Item
	Score *float64 `json:"score,omitempty"`
}

// SearchResponse is the result list envelope.
type SearchResponse struct {
	Items []Match `json:"items"`
	Total int     `json:"total"`
}

// ClassifyResponse is the location classification result.
type ClassifyResponse struct {
	Location string `json:"location"`
}

// HealthResponse reports server component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type classifyRequest struct {
	Item Item `json:"item"`
}
