// Package docstore is a hierarchical collection/document store. Documents
// are addressed by slash-joined paths such as users/u1/diary/2025-01-10;
// a document's collection is its path without the last segment.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("docstore: document not found")
	ErrInvalidPath = errors.New("docstore: invalid path")
)

// Document is a stored node with its raw JSON body.
type Document struct {
	ID   string
	Path string
	Data json.RawMessage
}

// Decode unmarshals the body into v.
func (d Document) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// Tx is the set of operations allowed inside a transaction.
type Tx interface {
	Get(ctx context.Context, path string) (Document, error)
	// Set replaces the document, creating it if needed.
	Set(ctx context.Context, path string, v any) error
	// Merge writes fields over the existing body, creating it if needed.
	Merge(ctx context.Context, path string, fields map[string]any) error
	// Update writes fields over an existing body; ErrNotFound if absent.
	Update(ctx context.Context, path string, fields map[string]any) error
	// Delete is idempotent.
	Delete(ctx context.Context, path string) error
}

type Store interface {
	Tx
	// List returns every document directly inside collection, ordered by id.
	List(ctx context.Context, collection string) ([]Document, error)
	// ListRange returns documents of collection with startID <= id <= endID.
	ListRange(ctx context.Context, collection, startID, endID string) ([]Document, error)
	// RunTransaction commits everything fn wrote, or nothing if fn fails.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Join builds a path from segments. Segments must be non-empty and slash free.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Split validates path and returns its collection and document id.
func Split(path string) (collection, id string, err error) {
	segs := strings.Split(path, "/")
	if len(segs) < 2 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	for _, s := range segs {
		if strings.TrimSpace(s) == "" {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return strings.Join(segs[:len(segs)-1], "/"), segs[len(segs)-1], nil
}
