package core

import "errors"

// ErrInvalidOrder rejects order values outside the fixed set.
var ErrInvalidOrder = errors.New("invalid order")

// Order selects one of the fixed orderings for entry queries. Only these
// four values exist; anything else is rejected before reaching the store.
type Order string

const (
	// OrderDateDesc is the default: newest first, ties broken by
	// descending id so insertion order within a day stays stable.
	OrderDateDesc   Order = "date_desc"
	OrderDateAsc    Order = "date_asc"
	OrderAmountDesc Order = "amount_desc"
	OrderAmountAsc  Order = "amount_asc"
)

func (o Order) Validate() error {
	switch o {
	case "", OrderDateDesc, OrderDateAsc, OrderAmountDesc, OrderAmountAsc:
		return nil
	default:
		return ErrInvalidOrder
	}
}

// DateRange is an inclusive [Start, End] interval. Either bound may be
// empty, meaning that side is unconstrained.
type DateRange struct {
	Start string
	End   string
}

// Filter describes which of one owner's entries a query should return.
// OwnerID is always applied; every other zero-valued field means "no
// predicate". The engine has no sentinel for "all" — callers translate
// UI sentinels into omitted fields before building a Filter.
type Filter struct {
	OwnerID  string
	Kind     Kind   // empty matches both kinds
	Category string // empty matches all categories
	Range    DateRange
	OrderBy  Order // empty means OrderDateDesc
}

func (f Filter) Validate() error {
	if f.OwnerID == "" {
		return ErrEmptyOwner
	}
	if f.Kind != "" {
		if err := f.Kind.Validate(); err != nil {
			return err
		}
	}
	if f.Range.Start != "" {
		if err := ValidDate(f.Range.Start); err != nil {
			return err
		}
	}
	if f.Range.End != "" {
		if err := ValidDate(f.Range.End); err != nil {
			return err
		}
	}
	return f.OrderBy.Validate()
}
