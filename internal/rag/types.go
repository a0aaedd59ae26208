package rag

// AskRequest represents a question against the indexed documents.
type AskRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// ConversationID optionally names the thread to append the exchange to.
	// Empty or unknown IDs start a new thread.
	ConversationID string `json:"conversation_id,omitempty"`
}

// Source is one citation attached to an answer: the originating file, the
// chunk ordinal within it, and an excerpt of the chunk text.
type Source struct {
	Filename string `json:"source"`
	Chunk    int    `json:"chunk"`
	Content  string `json:"content"`
}

// AskResponse is the generated answer with its citations and the thread the
// exchange was recorded in.
type AskResponse struct {
	Answer         string   `json:"answer"`
	Sources        []Source `json:"sources"`
	ConversationID string   `json:"conversation_id"`
}
