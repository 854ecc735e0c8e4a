// Package services orchestrates ledger operations: it is the validation
// boundary in front of the store and owns the aggregate caches.
package services

import (
	"context"
	"fmt"
	"time"

	"smartledger/internal/backup"
	"smartledger/internal/cache"
	"smartledger/internal/core"
	"smartledger/internal/log"
	"smartledger/internal/storage"
)

// LedgerService exposes the ledger engine to the presentation layer.
// Malformed input is rejected here, before anything touches storage.
type LedgerService struct {
	store  *storage.Store
	codec  *backup.Codec
	logger *log.Logger

	summaryCache   *cache.LRUCache[core.Summary]
	breakdownCache *cache.LRUCache[[]core.CategoryAmount]
	trendCache     *cache.LRUCache[[]core.TrendBucket]
}

func NewLedgerService(store *storage.Store, codec *backup.Codec, cacheSize int, cacheTTL time.Duration, logger *log.Logger) *LedgerService {
	return &LedgerService{
		store:          store,
		codec:          codec,
		logger:         logger.WithComponent(log.ComponentLedger),
		summaryCache:   cache.NewLRUCache[core.Summary](cacheSize, cacheTTL),
		breakdownCache: cache.NewLRUCache[[]core.CategoryAmount](cacheSize, cacheTTL),
		trendCache:     cache.NewLRUCache[[]core.TrendBucket](cacheSize, cacheTTL),
	}
}

// RegisterCaches adds the aggregate caches to a cleanup manager.
func (s *LedgerService) RegisterCaches(m *cache.Manager) {
	m.Register(s.summaryCache)
	m.Register(s.breakdownCache)
	m.Register(s.trendCache)
}

// CreateEntry validates and persists a new entry, returning the assigned id.
func (s *LedgerService) CreateEntry(ctx context.Context, e core.Entry) (int64, error) {
	e.ID = 0
	if err := e.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.Insert(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("create entry: %w", err)
	}
	s.invalidateAggregates(e.OwnerID)
	return id, nil
}

// UpdateEntry overwrites the mutable fields of the entry matching the
// given id and owner. Returns false when nothing matched (unknown id or
// an entry owned by someone else); that is a soft no-op, not an error.
func (s *LedgerService) UpdateEntry(ctx context.Context, e core.Entry) (bool, error) {
	if e.ID <= 0 {
		return false, core.ErrInvalidEntryID
	}
	if err := e.Validate(); err != nil {
		return false, err
	}
	affected, err := s.store.Update(ctx, e)
	if err != nil {
		return false, fmt.Errorf("update entry: %w", err)
	}
	if affected == 0 {
		s.logger.DebugContext(ctx, "Update matched nothing",
			log.FieldEntryID, e.ID,
			log.FieldOwnerID, e.OwnerID)
		return false, nil
	}
	s.invalidateAggregates(e.OwnerID)
	return true, nil
}

// DeleteEntry removes the entry matching (id, owner); missing or
// foreign-owned ids are a no-op.
func (s *LedgerService) DeleteEntry(ctx context.Context, id int64, ownerID string) error {
	if ownerID == "" {
		return core.ErrEmptyOwner
	}
	if err := s.store.Delete(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	s.invalidateAggregates(ownerID)
	return nil
}

// ListEntries returns the ordered entries matching the filter.
func (s *LedgerService) ListEntries(ctx context.Context, f core.Filter) ([]core.Entry, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	entries, err := s.store.Query(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Summary returns income/expense totals for the inclusive range.
func (s *LedgerService) Summary(ctx context.Context, ownerID, start, end string) (core.Summary, error) {
	if err := validateRange(ownerID, start, end); err != nil {
		return core.Summary{}, err
	}
	key := aggregateKey(ownerID, start, end)
	if cached, ok := s.summaryCache.Get(key); ok {
		return cached, nil
	}
	summary, err := s.store.Summary(ctx, ownerID, start, end)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summary: %w", err)
	}
	s.summaryCache.Set(key, summary)
	return summary, nil
}

// ExpenseBreakdown returns per-category expense totals for the range,
// largest first. Zero-sum categories are omitted.
func (s *LedgerService) ExpenseBreakdown(ctx context.Context, ownerID, start, end string) ([]core.CategoryAmount, error) {
	if err := validateRange(ownerID, start, end); err != nil {
		return nil, err
	}
	key := aggregateKey(ownerID, start, end)
	if cached, ok := s.breakdownCache.Get(key); ok {
		return cached, nil
	}
	breakdown, err := s.store.ExpenseBreakdown(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("expense breakdown: %w", err)
	}
	s.breakdownCache.Set(key, breakdown)
	return breakdown, nil
}

// Trend returns time-bucketed income/expense totals for the range in
// ascending key order. Empty buckets are omitted, never zero-filled.
func (s *LedgerService) Trend(ctx context.Context, ownerID, start, end string) ([]core.TrendBucket, error) {
	if err := validateRange(ownerID, start, end); err != nil {
		return nil, err
	}
	key := aggregateKey(ownerID, start, end)
	if cached, ok := s.trendCache.Get(key); ok {
		return cached, nil
	}
	trend, err := s.store.Trend(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("trend: %w", err)
	}
	s.trendCache.Set(key, trend)
	return trend, nil
}

// Export serializes the owner's full entry set into a backup document.
func (s *LedgerService) Export(ctx context.Context, ownerID string) ([]byte, error) {
	if ownerID == "" {
		return nil, core.ErrEmptyOwner
	}
	return s.codec.Export(ctx, ownerID)
}

// Import replaces the owner's entries with the document's records. See
// backup.Codec.Import for the destructive-replace guarantees.
func (s *LedgerService) Import(ctx context.Context, ownerID string, doc []byte) (int, error) {
	n, err := s.codec.Import(ctx, ownerID, doc)
	if err != nil {
		return 0, err
	}
	s.invalidateAggregates(ownerID)
	return n, nil
}

// invalidateAggregates drops every cached aggregate for one owner. Cache
// keys start with the owner id, so a prefix sweep is sufficient. Sweeping
// slightly too much only costs a recomputation.
func (s *LedgerService) invalidateAggregates(ownerID string) {
	prefix := ownerID + "|"
	s.summaryCache.InvalidatePrefix(prefix)
	s.breakdownCache.InvalidatePrefix(prefix)
	s.trendCache.InvalidatePrefix(prefix)
}

func aggregateKey(ownerID, start, end string) string {
	return ownerID + "|" + start + "|" + end
}

// validateRange checks the aggregate triple: unlike list queries, both
// bounds are required here.
func validateRange(ownerID, start, end string) error {
	if ownerID == "" {
		return core.ErrEmptyOwner
	}
	if err := core.ValidDate(start); err != nil {
		return err
	}
	return core.ValidDate(end)
}
