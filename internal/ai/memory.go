package ai

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

const memoryCollection = "assistant-memory"

// Embedder embeds a single text. Satisfied by *Gateway.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Memory keeps an in-memory vector index of past conversation turns so the
// assistant can pull earlier context into new answers. Like the
// notification list, it does not survive a restart.
type Memory struct {
	collection *chromem.Collection
}

// NewMemory creates an empty memory using the given embedder.
func NewMemory(embedder Embedder) (*Memory, error) {
	database := chromem.NewDB()

	ef := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}

	col, err := database.GetOrCreateCollection(memoryCollection, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("creating memory collection: %w", err)
	}

	return &Memory{collection: col}, nil
}

// Remember indexes one conversation turn for a user.
func (m *Memory) Remember(ctx context.Context, userID, content string) error {
	doc := chromem.Document{
		ID:       uuid.New().String(),
		Content:  content,
		Metadata: map[string]string{"user_id": userID},
	}
	if err := m.collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("indexing memory: %w", err)
	}
	return nil
}

// Similar returns up to limit past turns of the given user resembling the query.
func (m *Memory) Similar(ctx context.Context, userID, query string, limit int) ([]string, error) {
	count := m.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := m.collection.Query(ctx, query, limit, map[string]string{"user_id": userID}, nil)
	if err != nil {
		return nil, fmt.Errorf("querying memory: %w", err)
	}

	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Content)
	}
	return out, nil
}
