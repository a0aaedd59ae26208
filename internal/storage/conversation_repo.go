package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_conversation_store.go -package=mocks docqa-ai/internal/storage ConversationStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ConversationStore defines the interface for conversation thread operations.
// Threads are append-only; the only other mutation is whole-thread deletion.
type ConversationStore interface {
	// Append adds a message to the thread with the given ID, creating the
	// thread first if the ID is empty or unknown. It returns the thread ID the
	// message landed in. The append is durable before Append returns.
	Append(ctx context.Context, conversationID string, msg *MessageRecord) (string, error)
	// Get returns a thread with its messages in order. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*ConversationRecord, error)
	// List returns all threads newest-first, without messages.
	List(ctx context.Context) ([]*ConversationRecord, error)
	// Delete removes a thread and its messages. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}

// ConversationRepo provides methods for conversation operations.
// It implements the ConversationStore interface.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo creates a new ConversationRepo.
func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Append adds a message to a thread, creating the thread when needed.
// The thread row, the message row and the updated_at bump commit in one
// transaction so a recorded exchange is never half-written.
func (r *ConversationRepo) Append(ctx context.Context, conversationID string, msg *MessageRecord) (string, error) {
	sources, err := json.Marshal(msg.Sources)
	if err != nil {
		return "", fmt.Errorf("failed to marshal sources: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	id := conversationID
	exists := false
	if id != "" {
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM conversations WHERE id = ?`, id).Scan(new(int))
		if err != nil && err != sql.ErrNoRows {
			return "", fmt.Errorf("failed to check conversation: %w", err)
		}
		exists = err == nil
	}

	if !exists {
		// Unknown or absent thread ID: start a fresh thread
		id = uuid.New().String()
		if _, err := tx.ExecContext(ctx, `INSERT INTO conversations (id) VALUES (?)`, id); err != nil {
			return "", fmt.Errorf("failed to create conversation: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, question, answer, sources) VALUES (?, ?, ?, ?)`,
		id, msg.Question, msg.Answer, string(sources),
	); err != nil {
		return "", fmt.Errorf("failed to insert message: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
	); err != nil {
		return "", fmt.Errorf("failed to touch conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit append: %w", err)
	}

	return id, nil
}

// Get returns a thread with its messages ordered oldest-first.
func (r *ConversationRepo) Get(ctx context.Context, id string) (*ConversationRecord, error) {
	var conv ConversationRecord
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at FROM conversations WHERE id = ?`, id,
	).Scan(&conv.ID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	if conv.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	if conv.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT question, answer, sources, created_at FROM messages
		 WHERE conversation_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var msg MessageRecord
		var sources, msgCreatedAt string
		if err := rows.Scan(&msg.Question, &msg.Answer, &sources, &msgCreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &msg.Sources); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
		}
		if msg.CreatedAt, err = parseTimestamp(msgCreatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse message timestamp: %w", err)
		}
		conv.Messages = append(conv.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	conv.MessageCount = len(conv.Messages)
	return &conv, nil
}

// List returns all threads newest-first with message counts, without messages.
func (r *ConversationRepo) List(ctx context.Context) ([]*ConversationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.created_at, c.updated_at, COUNT(m.id)
		 FROM conversations c LEFT JOIN messages m ON m.conversation_id = c.id
		 GROUP BY c.id ORDER BY c.updated_at DESC, c.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var convs []*ConversationRecord
	for rows.Next() {
		var conv ConversationRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&conv.ID, &createdAt, &updatedAt, &conv.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		if conv.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		if conv.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
		}
		convs = append(convs, &conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}
	return convs, nil
}

// Delete removes a thread and, via cascade, its messages.
func (r *ConversationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
