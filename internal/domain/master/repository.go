package master

import "context"

type LookupRepository interface {
	// EnsureByCode returns the row for code, creating it with name when absent.
	// Uniqueness on code makes concurrent calls converge on one row.
	EnsureByCode(ctx context.Context, kind Kind, code string, name string) (Lookup, error)
}
