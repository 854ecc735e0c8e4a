package core

import "testing"

func TestFilterValidate(t *testing.T) {
	cases := []struct {
		name string
		f    Filter
		ok   bool
	}{
		{"owner only", Filter{OwnerID: "u1"}, true},
		{"all predicates", Filter{
			OwnerID:  "u1",
			Kind:     Expense,
			Category: "food",
			Range:    DateRange{Start: "2024-01-01", End: "2024-01-31"},
			OrderBy:  OrderAmountDesc,
		}, true},
		{"open ended start", Filter{OwnerID: "u1", Range: DateRange{Start: "2024-01-01"}}, true},
		{"open ended end", Filter{OwnerID: "u1", Range: DateRange{End: "2024-01-31"}}, true},
		{"missing owner", Filter{}, false},
		{"bad kind", Filter{OwnerID: "u1", Kind: "transfer"}, false},
		{"bad start date", Filter{OwnerID: "u1", Range: DateRange{Start: "01/01/2024"}}, false},
		{"bad end date", Filter{OwnerID: "u1", Range: DateRange{End: "2024-1-1"}}, false},
		{"bad order", Filter{OwnerID: "u1", OrderBy: "random"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.f.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestOrderValidateDefault(t *testing.T) {
	if err := Order("").Validate(); err != nil {
		t.Fatalf("empty order should default, got %v", err)
	}
}
