package ai

// Roles accepted by the chat endpoint.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// chatRequest is the request body sent to the chat endpoint.
type chatRequest struct {
	Messages []Message `json:"messages"`
}

// chunkPayload is one `data:` frame of a streamed completion.
// Only choices[0].delta.content is read.
type chunkPayload struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// errorResponse is the best-effort JSON body of a non-200 response.
type errorResponse struct {
	Error string `json:"error"`
}
