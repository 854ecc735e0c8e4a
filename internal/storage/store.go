// Package storage implements the SQLite-backed entry store. All reads and
// mutations are scoped by owner; aggregation queries live here as well so
// summing happens in the database over integer cents.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"smartledger/internal/core"
	"smartledger/internal/query"

	_ "modernc.org/sqlite"
)

const entryColumns = "id, user_id, kind, category, amount_cents, date, note, attachment_ref"

// monthlyBucketThresholdDays is the range length above which trend buckets
// flip from daily to monthly. Measured as end minus start in calendar days,
// so a January 1st to 31st range (difference 30) still buckets by day.
const monthlyBucketThresholdDays = 30

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at dbPath and applies
// the embedded migrations before returning a usable store.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Insert persists a new entry and returns the id the store assigned.
// Ids are monotonic and never reused (AUTOINCREMENT).
func (s *Store) Insert(ctx context.Context, e core.Entry) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (user_id, kind, category, amount_cents, date, note, attachment_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.OwnerID, string(e.Kind), e.Category, e.Amount.Cents, e.Date, e.Note, e.AttachmentRef)
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert entry id: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved",
		"id", id,
		"owner_id", e.OwnerID,
		"kind", e.Kind,
		"amount_cents", e.Amount.Cents,
		"date", e.Date)

	return id, nil
}

// Update overwrites all mutable fields of the entry matching (id, owner).
// Returns the number of rows affected: 0 means nothing matched, which is a
// soft no-op, not an error. Id and owner are never rewritten.
func (s *Store) Update(ctx context.Context, e core.Entry) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE entries
		 SET kind = ?, category = ?, amount_cents = ?, date = ?, note = ?, attachment_ref = ?
		 WHERE id = ? AND user_id = ?`,
		string(e.Kind), e.Category, e.Amount.Cents, e.Date, e.Note, e.AttachmentRef,
		e.ID, e.OwnerID)
	if err != nil {
		return 0, fmt.Errorf("update entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update entry rows affected: %w", err)
	}
	return n, nil
}

// Delete removes the entry matching (id, owner). Deleting a missing or
// foreign-owned id is a no-op.
func (s *Store) Delete(ctx context.Context, id int64, ownerID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// DeleteAll removes every entry owned by ownerID and returns the count.
func (s *Store) DeleteAll(ctx context.Context, ownerID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE user_id = ?`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete all entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all rows affected: %w", err)
	}
	return n, nil
}

// Scan returns every entry owned by ownerID in store order. Used by the
// backup codec; callers must not depend on ordering.
func (s *Store) Scan(ctx context.Context, ownerID string) ([]core.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE user_id = ?`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("scan entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Query returns the ordered subset of one owner's entries matching the
// filter. Every supplied predicate applies conjunctively; an empty result
// is a nil slice, not an error.
func (s *Store) Query(ctx context.Context, f core.Filter) ([]core.Entry, error) {
	b := filterClauses(f)
	where, args := b.Compile()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE `+where+` ORDER BY `+orderClause(f.OrderBy),
		args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Summary sums income and expense amounts for one owner within the
// inclusive [start, end] range. Both totals default to zero.
func (s *Store) Summary(ctx context.Context, ownerID, start, end string) (core.Summary, error) {
	var income, expense sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT
		   SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE 0 END),
		   SUM(CASE WHEN kind = 'expense' THEN amount_cents ELSE 0 END)
		 FROM entries
		 WHERE user_id = ? AND date BETWEEN ? AND ?`,
		ownerID, start, end).Scan(&income, &expense)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summary query: %w", err)
	}
	return core.Summary{
		TotalIncome:  core.Money{Cents: income.Int64},
		TotalExpense: core.Money{Cents: expense.Int64},
	}, nil
}

// ExpenseBreakdown groups expense entries by category within the inclusive
// range, summing per group, dropping zero-sum groups and ordering by total
// descending.
func (s *Store) ExpenseBreakdown(ctx context.Context, ownerID, start, end string) ([]core.CategoryAmount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) AS total_cents
		 FROM entries
		 WHERE user_id = ? AND kind = 'expense' AND date BETWEEN ? AND ?
		 GROUP BY category
		 HAVING total_cents > 0
		 ORDER BY total_cents DESC`,
		ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("expense breakdown query: %w", err)
	}
	defer rows.Close()

	var result []core.CategoryAmount
	for rows.Next() {
		var ca core.CategoryAmount
		var cents int64
		if err := rows.Scan(&ca.Category, &cents); err != nil {
			return nil, fmt.Errorf("scan breakdown row: %w", err)
		}
		ca.Amount = core.Money{Cents: cents}
		result = append(result, ca)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("breakdown rows: %w", err)
	}
	return result, nil
}

// Trend buckets all entries (both kinds) within the inclusive range by
// calendar day, or by calendar month when the range spans more than 30
// days. Buckets come back in ascending key order; empty buckets are
// omitted.
func (s *Store) Trend(ctx context.Context, ownerID, start, end string) ([]core.TrendBucket, error) {
	format, err := bucketFormat(start, end)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT strftime(?, date) AS bucket,
		   SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE 0 END) AS income_cents,
		   SUM(CASE WHEN kind = 'expense' THEN amount_cents ELSE 0 END) AS expense_cents
		 FROM entries
		 WHERE user_id = ? AND date BETWEEN ? AND ?
		 GROUP BY bucket
		 ORDER BY bucket ASC`,
		format, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("trend query: %w", err)
	}
	defer rows.Close()

	var result []core.TrendBucket
	for rows.Next() {
		var b core.TrendBucket
		var income, expense int64
		if err := rows.Scan(&b.Key, &income, &expense); err != nil {
			return nil, fmt.Errorf("scan trend row: %w", err)
		}
		b.Income = core.Money{Cents: income}
		b.Expense = core.Money{Cents: expense}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("trend rows: %w", err)
	}
	return result, nil
}

// ReplaceAll wipes every entry owned by ownerID and inserts the given set,
// all inside one transaction, so a failure partway through leaves the prior
// data intact. Incoming ids are ignored; the store assigns fresh ones.
// Returns the number of entries inserted.
func (s *Store) ReplaceAll(ctx context.Context, ownerID string, entries []core.Entry) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM entries WHERE user_id = ?`, ownerID); err != nil {
		return 0, fmt.Errorf("replace: delete existing: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (user_id, kind, category, amount_cents, date, note, attachment_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("replace: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			ownerID, string(e.Kind), e.Category, e.Amount.Cents, e.Date, e.Note, e.AttachmentRef); err != nil {
			return 0, fmt.Errorf("replace: insert entry: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("replace: commit: %w", err)
	}

	slog.InfoContext(ctx, "Entries replaced",
		"owner_id", ownerID,
		"inserted", inserted)

	return inserted, nil
}

// filterClauses translates a filter spec into bound predicate clauses.
// The owner predicate always comes first; omitted fields add nothing.
func filterClauses(f core.Filter) *query.Builder {
	b := query.NewBuilder().WhereEq("user_id", f.OwnerID)
	if f.Kind != "" {
		b.WhereEq("kind", string(f.Kind))
	}
	if f.Category != "" {
		b.WhereEq("category", f.Category)
	}
	if f.Range.Start != "" {
		b.Where("date", query.OpGte, f.Range.Start)
	}
	if f.Range.End != "" {
		b.Where("date", query.OpLte, f.Range.End)
	}
	return b
}

// orderClause maps an order value onto its fixed ORDER BY fragment. Only
// whitelisted fragments exist; caller data never reaches the SQL text.
func orderClause(o core.Order) string {
	switch o {
	case core.OrderDateAsc:
		return "date ASC, id ASC"
	case core.OrderAmountDesc:
		return "amount_cents DESC"
	case core.OrderAmountAsc:
		return "amount_cents ASC"
	default:
		return "date DESC, id DESC"
	}
}

// bucketFormat picks the strftime grouping format for a trend range.
func bucketFormat(start, end string) (string, error) {
	from, err := time.Parse(core.DateLayout, start)
	if err != nil {
		return "", fmt.Errorf("trend start date: %w", core.ErrInvalidDate)
	}
	to, err := time.Parse(core.DateLayout, end)
	if err != nil {
		return "", fmt.Errorf("trend end date: %w", core.ErrInvalidDate)
	}
	if to.Sub(from) > monthlyBucketThresholdDays*24*time.Hour {
		return "%Y-%m", nil
	}
	return "%Y-%m-%d", nil
}

func collectEntries(rows *sql.Rows) ([]core.Entry, error) {
	var result []core.Entry
	for rows.Next() {
		var e core.Entry
		var kind string
		var cents int64
		if err := rows.Scan(&e.ID, &e.OwnerID, &kind, &e.Category, &cents, &e.Date, &e.Note, &e.AttachmentRef); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		e.Kind = core.Kind(kind)
		e.Amount = core.Money{Cents: cents}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("entry rows: %w", err)
	}
	return result, nil
}
