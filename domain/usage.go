package domain

// TokenUsage holds token counts for one completion call. Counts come from
// the upstream API when it reports them; otherwise they are estimated.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// EstimateTokens approximates the token count of text as len/4. This is a
// rough heuristic used only when the upstream omits usage totals.
func EstimateTokens(text string) int {
	return len(text) / 4
}
