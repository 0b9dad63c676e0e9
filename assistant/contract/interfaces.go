package contract

import "context"

// IntentSource turns one free-text message into an Extraction.
// Implementations must degrade internally: a failed understanding call
// yields IntentUnknown, never an error that aborts the turn.
type IntentSource interface {
	Extract(ctx context.Context, sessionID, text string) (Extraction, error)
}

// ProductFinder resolves a free-text query to a catalog entry.
// A missing match and an unreachable catalog both surface as
// ErrNotFound so the dialogue agent renders "not found".
type ProductFinder interface {
	Find(ctx context.Context, query string) (*Product, error)
}
