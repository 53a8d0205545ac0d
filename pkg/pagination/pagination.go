package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any cursor query can request.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the keyset position of the last row on a page, ordered by
// (timestamp desc, id desc).
type Cursor struct {
	At time.Time
	ID uuid.UUID
}

// Page is one slice of a keyset-paginated listing.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer returns the normalization result plus one to detect the next page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// Build trims rows fetched with LimitWithBuffer to the page size and encodes the
// cursor of the last kept row when another page exists.
func Build[T any](rows []T, limit int, cursorOf func(T) Cursor) Page[T] {
	size := NormalizeLimit(limit)
	if len(rows) <= size {
		return Page[T]{Items: rows}
	}
	items := rows[:size]
	return Page[T]{Items: items, NextCursor: EncodeCursor(cursorOf(items[size-1]))}
}

// EncodeCursor builds a base64 cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%s|%s", cursor.At.UTC().Format(time.RFC3339Nano), cursor.ID.String())
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components. An empty
// value yields a nil cursor.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	ts, rawID, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil, fmt.Errorf("invalid cursor format")
	}

	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{At: t, ID: id}, nil
}
