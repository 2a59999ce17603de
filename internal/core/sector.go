package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Bernah2o/legalmatrix/internal/database"
)

// SectorResolver resolves free-text sector names against the catalog,
// creating entries on demand. Lookups are case-insensitive; new entries are
// auto-flagged as the "all sectors" sentinel when the taxonomy's token
// heuristic says so. A per-batch cache avoids re-querying the same name for
// every row of an import.
type SectorResolver struct {
	tax   *Taxonomy
	cache map[string]pgtype.Int4
}

// NewSectorResolver returns a resolver with an empty cache. One resolver
// serves one import batch; the cache is never invalidated.
func NewSectorResolver(tax *Taxonomy) *SectorResolver {
	return &SectorResolver{tax: tax, cache: make(map[string]pgtype.Int4)}
}

// Resolve returns the sector id for a raw sector cell, creating the catalog
// entry if absent. Empty text resolves to NULL.
func (r *SectorResolver) Resolve(ctx context.Context, q *database.Queries, raw *string) (pgtype.Int4, error) {
	if raw == nil {
		return pgtype.Int4{}, nil
	}
	name := strings.TrimSpace(*raw)
	if name == "" {
		return pgtype.Int4{}, nil
	}

	key := strings.ToLower(name)
	if id, ok := r.cache[key]; ok {
		return id, nil
	}

	sector, err := q.GetSectorByName(ctx, name)
	if errors.Is(err, pgx.ErrNoRows) {
		sector, err = q.InsertSector(ctx, database.InsertSectorParams{
			Nombre:  name,
			EsTodos: r.tax.IsAllSectors(name),
		})
	}
	if err != nil {
		return pgtype.Int4{}, fmt.Errorf("resolve sector %q: %w", name, err)
	}

	id := pgtype.Int4{Int32: sector.ID, Valid: true}
	r.cache[key] = id
	return id, nil
}
