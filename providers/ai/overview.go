package ai

import "context"

// Overview aggregates the requests, responses, and token usage of a session.
// Carry one through the context to get a running total across multiple
// provider calls without threading an extra parameter everywhere.
type Overview struct {
	LastResponse *ChatResponse   `json:"last_response,omitempty"`
	Requests     []*ChatRequest  `json:"requests"`
	Responses    []*ChatResponse `json:"responses"`
	TotalUsage   Usage           `json:"total_usage"`
}

type overviewContextKey struct{}

// OverviewFromContext returns the Overview stored in ctx, or nil when none
// is present.
func OverviewFromContext(ctx context.Context) *Overview {
	if ctx == nil {
		return nil
	}
	overview, _ := ctx.Value(overviewContextKey{}).(*Overview)
	return overview
}

// ToContext returns a child context carrying the overview.
func (o *Overview) ToContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, overviewContextKey{}, o)
}

// IncludeUsage adds usage to the running total. Nil usage is a no-op.
func (o *Overview) IncludeUsage(usage *Usage) {
	if usage == nil {
		return
	}
	o.TotalUsage.PromptTokens += usage.PromptTokens
	o.TotalUsage.CompletionTokens += usage.CompletionTokens
	o.TotalUsage.TotalTokens += usage.TotalTokens
}

// AddRequest records a dispatched request.
func (o *Overview) AddRequest(request *ChatRequest) {
	o.Requests = append(o.Requests, request)
}

// AddResponse records a completed response and its usage.
func (o *Overview) AddResponse(response *ChatResponse) {
	o.Responses = append(o.Responses, response)
	o.LastResponse = response
	if response != nil {
		o.IncludeUsage(response.Usage)
	}
}
