package chat

// Message is one chat turn as the UI keeps it.
type Message struct {
	Role string `json:"role"` // user | model
	Text string `json:"text"`
}

type SendMessageRequest struct {
	Message   string    `json:"message"`
	History   []Message `json:"history"`
	ProfileID string    `json:"profile_id,omitempty"`
}

type SendMessageResponse struct {
	Reply string `json:"reply"`
}

type GreetingResponse struct {
	Greeting string `json:"greeting"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
