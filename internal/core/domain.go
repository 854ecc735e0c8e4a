package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// DateLayout is the storage and wire format for entry dates. Lexicographic
// order on this layout equals chronological order, so date strings are
// compared directly in SQL.
const DateLayout = "2006-01-02"

type (
	// Kind distinguishes money coming in from money going out. The amount
	// itself is always non-negative; sign semantics live here.
	Kind string

	Money struct {
		Cents int64
	}

	// Entry is a single ledger transaction owned by exactly one user.
	// ID 0 means "not yet persisted"; the store assigns ids.
	Entry struct {
		ID            int64
		OwnerID       string
		Kind          Kind
		Category      string
		Amount        Money
		Date          string // YYYY-MM-DD
		Note          string
		AttachmentRef string // optional image reference, empty for most entries
	}
)

var (
	ErrEmptyOwner    = errors.New("empty owner id")
	ErrInvalidKind   = errors.New("invalid kind")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")

	// ErrInvalidEntryID rejects updates that carry no persisted id.
	ErrInvalidEntryID = errors.New("invalid entry id")
)

// SuggestedCategories is the category list offered by the presentation
// layer. Entries may carry any label; this set is advisory only.
var SuggestedCategories = []string{
	"food", "transport", "shopping", "study", "entertainment", "other",
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func ValidDate(s string) error {
	if len(s) != len(DateLayout) {
		return ErrInvalidDate
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return ValidDate(e.Date)
}
