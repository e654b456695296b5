package models

// Roles understood by the completion backend.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is a single message in a conversation, tagged with its speaker.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// HistoryEntry is one prior turn as the chat widget sends it. Any Type
// other than "user" is treated as an assistant turn.
type HistoryEntry struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint. History arrives
// most-recent-last; the widget truncates it to the last 10 turns before
// sending, so the server does not truncate again.
type ChatRequest struct {
	Message string         `json:"message"`
	History []HistoryEntry `json:"history"`
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the body for 405 and validation failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// InternalErrorResponse is the 500 body. Message is a caller-safe
// summary; the underlying error is only logged server-side.
type InternalErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RateLimitResponse is the 429 body, mirroring the X-RateLimit headers.
type RateLimitResponse struct {
	Error     string `json:"error"`
	Limit     int    `json:"limit"`
	Reset     int64  `json:"reset"`
	Remaining int    `json:"remaining"`
}
