package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/master"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/database"
	"github.com/google/uuid"
)

var lookupTables = map[master.Kind]string{
	master.KindDepartment:  "departments",
	master.KindDesignation: "designations",
	master.KindOrgUnit:     "org_units",
	master.KindTimePolicy:  "time_policies",
}

type lookupRepositoryImpl struct {
	db *database.DB
}

func NewLookupRepository(db *database.DB) master.LookupRepository {
	return &lookupRepositoryImpl{db: db}
}

// EnsureByCode implements master.LookupRepository.
func (r *lookupRepositoryImpl) EnsureByCode(ctx context.Context, kind master.Kind, code string, name string) (master.Lookup, error) {
	table, ok := lookupTables[kind]
	if !ok {
		return master.Lookup{}, master.ErrUnknownKind
	}
	code = master.NormalizeCode(code)
	if code == "" {
		return master.Lookup{}, master.ErrEmptyCode
	}

	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return master.Lookup{}, err
	}

	// The no-op update makes RETURNING yield the existing row on conflict.
	query := fmt.Sprintf(`
		INSERT INTO %s (id, code, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		RETURNING id, code, name, created_at
	`, table)

	lookup := master.Lookup{Kind: kind}
	if err := q.QueryRow(ctx, query, id.String(), code, name).Scan(&lookup.ID, &lookup.Code, &lookup.Name, &lookup.CreatedAt); err != nil {
		return master.Lookup{}, fmt.Errorf("failed to ensure %s %s: %w", kind, code, err)
	}
	return lookup, nil
}
