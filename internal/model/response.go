package model

// PromptCartItem is a cart line as the remote endpoint reports it.
type PromptCartItem struct {
	ASIN string `json:"asin"`
	Qty  int    `json:"qty"`
}

// PromptResponse is the body returned by the remote prompt endpoint.
type PromptResponse struct {
	PromptResponse string           `json:"promptResponse"`
	PromptTitle    string           `json:"promptTitle"`
	PromptS3URI    string           `json:"promptS3URI"`
	WordsToBold    []string         `json:"wordsToBold"`
	CartItemsList  []PromptCartItem `json:"cartItemsList"`
}

// CartItems converts the cart list of the response into message cart items.
func (r *PromptResponse) CartItems() []CartItem {
	if len(r.CartItemsList) == 0 {
		return nil
	}
	items := make([]CartItem, 0, len(r.CartItemsList))
	for _, item := range r.CartItemsList {
		items = append(items, CartItem{SKU: item.ASIN, Quantity: item.Qty})
	}
	return items
}

// SessionSummary is the list view of a session.
type SessionSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MessageCount int    `json:"messageCount"`
	Current      bool   `json:"current"`
}

// StateResponse is the body of GET /api/chat/state.
type StateResponse struct {
	Sessions         []*Session `json:"sessions"`
	CurrentSessionID string     `json:"currentSessionId"`
	Settings         Settings   `json:"settings"`
}

// NewStateResponse builds a StateResponse from a state snapshot.
func NewStateResponse(state *State) StateResponse {
	return StateResponse{
		Sessions:         state.Sessions.List(),
		CurrentSessionID: state.CurrentSessionID,
		Settings:         state.Settings,
	}
}

// SubmitPromptResponse is returned when a prompt is accepted.
type SubmitPromptResponse struct {
	SessionID      string  `json:"sessionId"`
	UserMessage    Message `json:"userMessage"`
	PendingMessage Message `json:"pendingMessage"`
}

// Summaries lists sessions newest first, the order the session list displays them in.
func Summaries(state *State) []SessionSummary {
	list := state.Sessions.List()
	summaries := make([]SessionSummary, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		session := list[i]
		summaries = append(summaries, SessionSummary{
			ID:           session.ID,
			Name:         session.DisplayName(),
			MessageCount: len(session.Conversation),
			Current:      session.ID == state.CurrentSessionID,
		})
	}
	return summaries
}
