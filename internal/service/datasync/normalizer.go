package datasync

import (
	"context"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/master"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/database"
)

// Normalizer resolves lookup codes to ids. One instance lives for one sync run.
type Normalizer struct {
	lookups master.LookupRepository
	retry   database.RetryPolicy
	memo    map[master.Kind]map[string]string
}

func NewNormalizer(lookups master.LookupRepository, retry database.RetryPolicy) *Normalizer {
	return &Normalizer{
		lookups: lookups,
		retry:   retry,
		memo:    make(map[master.Kind]map[string]string, len(master.Kinds)),
	}
}

// Resolve returns the id for code, creating the lookup on first sight. An empty code resolves to nil.
func (n *Normalizer) Resolve(ctx context.Context, kind master.Kind, code string) (*string, error) {
	code = master.NormalizeCode(code)
	if code == "" {
		return nil, nil
	}
	if id, ok := n.memo[kind][code]; ok {
		return &id, nil
	}

	var lookup master.Lookup
	err := database.Retry(ctx, n.retry, func(ctx context.Context) error {
		var err error
		lookup, err = n.lookups.EnsureByCode(ctx, kind, code, master.DisplayName(kind, code))
		return err
	})
	if err != nil {
		return nil, err
	}

	if n.memo[kind] == nil {
		n.memo[kind] = make(map[string]string)
	}
	n.memo[kind][code] = lookup.ID
	id := lookup.ID
	return &id, nil
}
