// Package backup implements the JSON export/import round trip for one
// owner's full entry set. The document format is the only on-disk format
// the ledger defines and must stay parseable across versions: new fields
// are added as optional, never by changing existing ones.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"smartledger/internal/core"
	"smartledger/internal/storage"
)

var (
	// ErrFormat means the document could not be parsed as a record
	// sequence at all. Import aborts before any destructive step.
	ErrFormat = errors.New("backup document is not a record sequence")

	// ErrEmptyPayload means the document parsed but yielded no valid
	// records. Import aborts before the wipe so a bad backup can never
	// erase existing data.
	ErrEmptyPayload = errors.New("backup document contains no records")
)

// Record is one serialized entry. Field names are fixed for round-trip
// stability; amount travels as a decimal number, never as cents.
type Record struct {
	ID            int64       `json:"id"`
	OwnerID       string      `json:"ownerId"`
	Kind          string      `json:"kind"`
	Category      string      `json:"category"`
	Amount        json.Number `json:"amount"`
	Date          string      `json:"date"`
	Note          string      `json:"note"`
	AttachmentRef string      `json:"attachmentRef,omitempty"`
}

// Codec reads and writes backup documents against the entry store.
type Codec struct {
	store *storage.Store
}

func NewCodec(store *storage.Store) *Codec {
	return &Codec{store: store}
}

// Export serializes every entry owned by ownerID into a backup document.
// Record order follows store scan order and carries no meaning.
func (c *Codec) Export(ctx context.Context, ownerID string) ([]byte, error) {
	entries, err := c.store.Scan(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("export scan: %w", err)
	}

	records := make([]Record, len(entries))
	for i, e := range entries {
		records[i] = Record{
			ID:            e.ID,
			OwnerID:       e.OwnerID,
			Kind:          string(e.Kind),
			Category:      e.Category,
			Amount:        json.Number(e.Amount.Decimal()),
			Date:          e.Date,
			Note:          e.Note,
			AttachmentRef: e.AttachmentRef,
		}
	}

	doc, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("export marshal: %w", err)
	}

	slog.InfoContext(ctx, "Backup exported",
		"owner_id", ownerID,
		"records", len(records))

	return doc, nil
}

// Import parses the document and replaces all of ownerID's entries with its
// records. Document ownership is never trusted: every record is re-owned by
// the importing user and re-keyed by the store. The wipe and the inserts run
// in one transaction, and the wipe only happens once parsing has produced at
// least one valid record. Returns the number of entries inserted.
func (c *Codec) Import(ctx context.Context, ownerID string, doc []byte) (int, error) {
	if ownerID == "" {
		return 0, core.ErrEmptyOwner
	}

	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var records []Record
	if err := dec.Decode(&records); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	candidates := make([]core.Entry, 0, len(records))
	for i, rec := range records {
		e, err := rec.toEntry(ownerID)
		if err != nil {
			slog.WarnContext(ctx, "Skipping invalid backup record",
				"owner_id", ownerID,
				"index", i,
				"error", err)
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return 0, ErrEmptyPayload
	}

	inserted, err := c.store.ReplaceAll(ctx, ownerID, candidates)
	if err != nil {
		return 0, fmt.Errorf("import replace: %w", err)
	}

	slog.InfoContext(ctx, "Backup imported",
		"owner_id", ownerID,
		"records", len(records),
		"inserted", inserted)

	return int(inserted), nil
}

// toEntry converts a record into an unpersisted entry owned by ownerID.
// The record's own id and ownerId are discarded.
func (r Record) toEntry(ownerID string) (core.Entry, error) {
	cents, err := core.ParseDecimalToCents(r.Amount.String())
	if err != nil {
		return core.Entry{}, err
	}
	e := core.Entry{
		OwnerID:       ownerID,
		Kind:          core.Kind(r.Kind),
		Category:      r.Category,
		Amount:        core.Money{Cents: cents},
		Date:          r.Date,
		Note:          r.Note,
		AttachmentRef: r.AttachmentRef,
	}
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	return e, nil
}
