package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks docqa-ai/internal/rag Engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/modelconfig"
	"docqa-ai/internal/service"
	"docqa-ai/internal/storage"
	"docqa-ai/internal/vectorstore"
)

const (
	// topK is how many chunks are retrieved per question.
	topK = 3
	// maxSourceChars is the excerpt length for source citations.
	maxSourceChars = 200

	fallbackAnswer = "I couldn't find any relevant information in the uploaded documents to answer your question."

	answerPromptTemplate = `Based on the following context from the uploaded documents, please answer the question. If the answer cannot be found in the context, say so.

Context:
%s

Question: %s

Answer:`
)

// Engine answers questions grounded in retrieved document chunks.
type Engine interface {
	// Answer retrieves the chunks most similar to the question, asks the
	// generation model to answer from them, and records the exchange in a
	// conversation thread.
	Answer(ctx context.Context, req AskRequest) (AskResponse, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	registry   modelconfig.Provider
	vectors    vectorstore.VectorStore
	collection string
	convs      storage.ConversationStore
	logger     *slog.Logger
}

// NewEngine creates a new RAG engine.
func NewEngine(
	registry modelconfig.Provider,
	vectors vectorstore.VectorStore,
	collection string,
	convs storage.ConversationStore,
) Engine {
	return &ragEngine{
		registry:   registry,
		vectors:    vectors,
		collection: collection,
		convs:      convs,
		logger:     slog.Default(),
	}
}

// Answer runs the retrieval-augmented query flow.
func (e *ragEngine) Answer(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AskResponse{}, fmt.Errorf("%w: no question provided", service.ErrInvalidInput)
	}

	var answer string
	var sources []Source

	err := e.registry.Do(func(cfg modelconfig.Config, client llm.ModelService) error {
		if err := client.Heartbeat(ctx); err != nil {
			return service.Unavailable(cfg.BaseURL, err)
		}

		// Nothing ingested yet means no collection; that's a fallback answer,
		// not an error.
		exists, err := e.vectors.CollectionExists(ctx, e.collection)
		if err != nil {
			return fmt.Errorf("%w: %v", service.ErrStorageFailure, err)
		}
		if !exists {
			answer = fallbackAnswer
			sources = []Source{}
			return nil
		}

		embeddings, err := client.EmbedTexts(ctx, []string{question})
		if err != nil {
			return service.Unavailable(cfg.BaseURL, err)
		}

		results, err := e.vectors.Search(ctx, e.collection, embeddings[0], topK)
		if err != nil {
			return fmt.Errorf("%w: %v", service.ErrStorageFailure, err)
		}

		logger.InfoContext(ctx, "vector search completed", "question_length", len(question), "results", len(results))

		if len(results) == 0 {
			answer = fallbackAnswer
			sources = []Source{}
			return nil
		}

		// Context block: chunk texts in similarity order, blank-line separated
		texts := make([]string, 0, len(results))
		sources = make([]Source, 0, len(results))
		for _, result := range results {
			text, _ := result.Meta["text"].(string)
			filename, _ := result.Meta["filename"].(string)
			chunkIndex := metaInt(result.Meta["chunk_index"])

			texts = append(texts, text)
			sources = append(sources, Source{
				Filename: filename,
				Chunk:    chunkIndex,
				Content:  excerpt(text),
			})
		}

		prompt := fmt.Sprintf(answerPromptTemplate, strings.Join(texts, "\n\n"), question)

		logger.DebugContext(ctx, "sending prompt to LLM", "prompt_length", len(prompt), "chunks", len(texts))

		answer, err = client.Generate(ctx, prompt)
		if err != nil {
			return service.Unavailable(cfg.BaseURL, err)
		}
		return nil
	})
	if err != nil {
		return AskResponse{}, err
	}

	// The exchange is recorded only after a successful answer, so a failed
	// query never corrupts the conversation store.
	stored := make([]storage.Source, len(sources))
	for i, s := range sources {
		stored[i] = storage.Source{Filename: s.Filename, Chunk: s.Chunk, Content: s.Content}
	}
	convID, err := e.convs.Append(ctx, req.ConversationID, &storage.MessageRecord{
		Question: question,
		Answer:   answer,
		Sources:  stored,
	})
	if err != nil {
		return AskResponse{}, fmt.Errorf("%w: %v", service.ErrStorageFailure, err)
	}

	logger.InfoContext(ctx, "answered question",
		"conversation_id", convID, "sources", len(sources), "answer_length", len(answer))

	return AskResponse{
		Answer:         answer,
		Sources:        sources,
		ConversationID: convID,
	}, nil
}

// excerpt truncates chunk text to maxSourceChars runes with a trailing
// ellipsis marker when truncated.
func excerpt(text string) string {
	if utf8.RuneCountInString(text) <= maxSourceChars {
		return text
	}
	return string([]rune(text)[:maxSourceChars]) + "..."
}

// metaInt reads an integer payload value, which Qdrant may hand back as
// int64 or float64 depending on the transport.
func metaInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
