package models

// SearchMode selects how the server ranks results. Ranking itself is
// opaque to the client.
type SearchMode string

const (
	SearchKeyword  SearchMode = "keyword"
	SearchSemantic SearchMode = "semantic"
	SearchHybrid   SearchMode = "hybrid"
)

// SearchResult is one ranked interaction-like record returned by the
// search endpoint.
type SearchResult struct {
	LogID           string  `json:"log_id"`
	RelationshipID  string  `json:"relationship_id"`
	RelationName    string  `json:"relation_name,omitempty"`
	Details         string  `json:"details"`
	InteractionDate string  `json:"interaction_date"`
	HybridScore     float64 `json:"hybrid_score"`
}

// SearchResponse carries ranked results plus the AI-generated answer.
type SearchResponse struct {
	Results   []SearchResult `json:"results"`
	LLMAnswer string         `json:"llm_answer"`
	Count     int            `json:"count"`
}
