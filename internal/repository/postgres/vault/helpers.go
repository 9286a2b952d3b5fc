package vault

import (
	"context"
	"fmt"

	"promptvault/internal/domain"
	"promptvault/internal/domain/repositories"
)

var (
	errConflict = domain.ErrConflict
	errNotFound = domain.ErrNotFound
)

func count(ctx context.Context, executor repositories.DBTX, query string, args ...any) (int, error) {
	var n int
	if err := executor.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
