package chat

const (
	RoleUser   = "user"
	RoleAgent  = "assistant" // narrator
	RoleSystem = "system"
)

// Message is a single message in an oracle conversation.
// The role/content shape is shared by the Anthropic and
// OpenAI-style chat completion APIs.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the oracle's reply to a completion request.
type Response struct {
	Message string `json:"message"`
}
