package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by an LLM request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// OpMeta holds operational metadata for one planner operation.
type OpMeta struct {
	Operation string
	WeekKey   string
	Fallbacks int
	Fixed     int
	Changed   int
	Degraded  bool
	Latency   time.Duration
	Usage     TokenUsage
}
