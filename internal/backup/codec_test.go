package backup

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"smartledger/internal/core"
	"smartledger/internal/storage"
)

func newTestCodec(t *testing.T) (*Codec, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewCodec(store), store
}

func seed(t *testing.T, store *storage.Store, e core.Entry) {
	t.Helper()
	_, err := store.Insert(context.Background(), e)
	require.NoError(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	codec, store := newTestCodec(t)
	ctx := context.Background()

	seed(t, store, core.Entry{
		OwnerID: "u1", Kind: core.Income, Category: "salary",
		Amount: core.Money{Cents: 500000}, Date: "2024-01-01",
	})
	seed(t, store, core.Entry{
		OwnerID: "u1", Kind: core.Expense, Category: "food",
		Amount: core.Money{Cents: 1250}, Date: "2024-01-02",
		Note: "lunch", AttachmentRef: "content://photos/9",
	})

	doc, err := codec.Export(ctx, "u1")
	require.NoError(t, err)

	n, err := codec.Import(ctx, "u1", doc)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err := store.Scan(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	byCategory := map[string]core.Entry{}
	for _, e := range got {
		byCategory[e.Category] = e
	}
	require.Equal(t, int64(500000), byCategory["salary"].Amount.Cents)
	require.Equal(t, int64(1250), byCategory["food"].Amount.Cents)
	require.Equal(t, "lunch", byCategory["food"].Note)
	require.Equal(t, "content://photos/9", byCategory["food"].AttachmentRef)
}

func TestExportAmountIsDecimal(t *testing.T) {
	codec, store := newTestCodec(t)
	ctx := context.Background()

	seed(t, store, core.Entry{
		OwnerID: "u1", Kind: core.Expense, Category: "food",
		Amount: core.Money{Cents: 1250}, Date: "2024-01-02",
	})

	doc, err := codec.Export(ctx, "u1")
	require.NoError(t, err)

	var records []Record
	require.NoError(t, json.Unmarshal(doc, &records))
	require.Len(t, records, 1)
	require.Equal(t, "12.50", records[0].Amount.String())
}

func TestExportEmptyOwner(t *testing.T) {
	codec, _ := newTestCodec(t)

	doc, err := codec.Export(context.Background(), "u1")
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(doc))
}

func TestImportMalformedLeavesDataIntact(t *testing.T) {
	codec, store := newTestCodec(t)
	ctx := context.Background()

	seed(t, store, core.Entry{
		OwnerID: "u1", Kind: core.Expense, Category: "food",
		Amount: core.Money{Cents: 100}, Date: "2024-01-01",
	})

	for _, doc := range []string{"{not json}", `{"id": 1}`, "", "42"} {
		_, err := codec.Import(ctx, "u1", []byte(doc))
		require.ErrorIs(t, err, ErrFormat, "doc %q", doc)
	}

	got, err := store.Scan(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1, "a rejected import must not wipe existing entries")
}

func TestImportEmptyPayloadLeavesDataIntact(t *testing.T) {
	codec, store := newTestCodec(t)
	ctx := context.Background()

	seed(t, store, core.Entry{
		OwnerID: "u1", Kind: core.Expense, Category: "food",
		Amount: core.Money{Cents: 100}, Date: "2024-01-01",
	})

	_, err := codec.Import(ctx, "u1", []byte("[]"))
	require.ErrorIs(t, err, ErrEmptyPayload)

	// All records invalid counts as empty too.
	_, err = codec.Import(ctx, "u1", []byte(`[{"kind":"transfer","category":"x","amount":"1","date":"2024-01-01"}]`))
	require.ErrorIs(t, err, ErrEmptyPayload)

	got, err := store.Scan(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestImportReplacesExisting(t *testing.T) {
	codec, store := newTestCodec(t)
	ctx := context.Background()

	seed(t, store, core.Entry{
		OwnerID: "u1", Kind: core.Expense, Category: "old",
		Amount: core.Money{Cents: 100}, Date: "2024-01-01",
	})

	doc := `[{"kind":"income","category":"salary","amount":"3000.00","date":"2024-02-01","note":""}]`
	n, err := codec.Import(ctx, "u1", []byte(doc))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := store.Scan(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "salary", got[0].Category)
}

func TestImportRewritesOwnership(t *testing.T) {
	codec, store := newTestCodec(t)
	ctx := context.Background()

	// The document claims a different owner and a fixed id; both are
	// discarded on import.
	doc := `[{"id":7,"ownerId":"mallory","kind":"expense","category":"food","amount":"5","date":"2024-01-01"}]`
	n, err := codec.Import(ctx, "u1", []byte(doc))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := store.Scan(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "u1", got[0].OwnerID)
	require.NotEqual(t, int64(7), got[0].ID)

	stolen, err := store.Scan(ctx, "mallory")
	require.NoError(t, err)
	require.Empty(t, stolen)
}

func TestImportSkipsInvalidRecords(t *testing.T) {
	codec, store := newTestCodec(t)
	ctx := context.Background()

	doc := `[
		{"kind":"expense","category":"food","amount":"5.00","date":"2024-01-01"},
		{"kind":"expense","category":"","amount":"5.00","date":"2024-01-01"},
		{"kind":"expense","category":"food","amount":"-5","date":"2024-01-01"},
		{"kind":"expense","category":"food","amount":"5.00","date":"not-a-date"},
		{"kind":"income","category":"salary","amount":"100","date":"2024-01-02"}
	]`
	n, err := codec.Import(ctx, "u1", []byte(doc))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err := store.Scan(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestImportAcceptsNumericAmounts(t *testing.T) {
	codec, store := newTestCodec(t)
	ctx := context.Background()

	doc := `[{"kind":"expense","category":"food","amount":12.34,"date":"2024-01-01"}]`
	n, err := codec.Import(ctx, "u1", []byte(doc))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := store.Scan(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(1234), got[0].Amount.Cents)
}

func TestImportEmptyOwnerRejected(t *testing.T) {
	codec, _ := newTestCodec(t)

	_, err := codec.Import(context.Background(), "", []byte("[]"))
	require.ErrorIs(t, err, core.ErrEmptyOwner)
}
