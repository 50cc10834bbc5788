package business

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the catalog reader needs. Tests
// substitute a pgxmock pool.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CatalogRepository reads the bookable services and knowledge base for a
// business. All queries are scoped by business ID; the memory blob is caller
// supplied so the ID is the only trust boundary.
type CatalogRepository interface {
	ListActiveServices(ctx context.Context, businessID string) ([]Service, error)
	ListKnowledge(ctx context.Context, businessID string) ([]KnowledgeEntry, error)
}

// PostgresCatalogRepository is the pgx-backed catalog reader.
type PostgresCatalogRepository struct {
	pool Querier
}

// NewPostgresCatalogRepository initializes a repo backed by pgxpool.
func NewPostgresCatalogRepository(pool Querier) *PostgresCatalogRepository {
	if pool == nil {
		panic("business: pgx pool required")
	}
	return &PostgresCatalogRepository{pool: pool}
}

var _ CatalogRepository = (*PostgresCatalogRepository)(nil)

// ListActiveServices returns the active services for a business.
func (r *PostgresCatalogRepository) ListActiveServices(ctx context.Context, businessID string) ([]Service, error) {
	query := `
		SELECT id, business_id, name, duration_minutes, active, created_at
		FROM services
		WHERE business_id = $1 AND active = TRUE
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("business: list services: %w", err)
	}
	defer rows.Close()

	return scanServices(rows)
}

// ListKnowledge returns every knowledge-base entry for a business.
func (r *PostgresCatalogRepository) ListKnowledge(ctx context.Context, businessID string) ([]KnowledgeEntry, error) {
	query := `
		SELECT id, business_id, question, answer, created_at
		FROM knowledge_entries
		WHERE business_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("business: list knowledge: %w", err)
	}
	defer rows.Close()

	var entries []KnowledgeEntry
	for rows.Next() {
		var e KnowledgeEntry
		if err := rows.Scan(&e.ID, &e.BusinessID, &e.Question, &e.Answer, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("business: scan knowledge: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("business: read knowledge: %w", err)
	}
	return entries, nil
}

func scanServices(rows pgx.Rows) ([]Service, error) {
	var services []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.Name, &s.DurationMinutes, &s.Active, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("business: scan service: %w", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("business: read services: %w", err)
	}
	return services, nil
}

// InMemoryCatalogRepository backs tests and local development.
type InMemoryCatalogRepository struct {
	mu        sync.RWMutex
	services  map[string][]Service
	knowledge map[string][]KnowledgeEntry
}

// NewInMemoryCatalogRepository creates an empty in-memory catalog.
func NewInMemoryCatalogRepository() *InMemoryCatalogRepository {
	return &InMemoryCatalogRepository{
		services:  make(map[string][]Service),
		knowledge: make(map[string][]KnowledgeEntry),
	}
}

var _ CatalogRepository = (*InMemoryCatalogRepository)(nil)

// AddService registers a service for a business.
func (r *InMemoryCatalogRepository) AddService(s Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[s.BusinessID] = append(r.services[s.BusinessID], s)
}

// AddKnowledge registers a knowledge entry for a business.
func (r *InMemoryCatalogRepository) AddKnowledge(e KnowledgeEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.knowledge[e.BusinessID] = append(r.knowledge[e.BusinessID], e)
}

// ListActiveServices returns active services sorted by name.
func (r *InMemoryCatalogRepository) ListActiveServices(ctx context.Context, businessID string) ([]Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Service
	for _, s := range r.services[businessID] {
		if s.Active {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListKnowledge returns all knowledge entries for a business.
func (r *InMemoryCatalogRepository) ListKnowledge(ctx context.Context, businessID string) ([]KnowledgeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]KnowledgeEntry(nil), r.knowledge[businessID]...), nil
}
