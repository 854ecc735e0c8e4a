package core

import "testing"

func TestKindValidate(t *testing.T) {
	if err := Income.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := Expense.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := Kind("transfer").Validate(); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if err := Kind("").Validate(); err == nil {
		t.Fatalf("expected error for empty kind")
	}
}

func TestValidDate(t *testing.T) {
	cases := []struct {
		date string
		ok   bool
	}{
		{"2024-01-01", true},
		{"2024-12-31", true},
		{"2024-02-29", true},  // leap year
		{"2023-02-29", false}, // not a leap year
		{"2024-13-01", false},
		{"2024-01-32", false},
		{"2024-1-1", false},
		{"24-01-01", false},
		{"2024/01/01", false},
		{"", false},
	}
	for i, tc := range cases {
		err := ValidDate(tc.date)
		if tc.ok && err != nil {
			t.Fatalf("case %d (%q) expected ok, got %v", i, tc.date, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q) expected error", i, tc.date)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("zero amount should be valid, got %v", err)
	}
	if err := (Money{Cents: 100}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestEntryValidate(t *testing.T) {
	good := Entry{
		OwnerID:  "u1",
		Kind:     Expense,
		Category: "food",
		Amount:   Money{Cents: 4000},
		Date:     "2024-01-01",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Entry{
		{OwnerID: "", Kind: Expense, Category: "food", Amount: Money{Cents: 1}, Date: "2024-01-01"},
		{OwnerID: "  ", Kind: Expense, Category: "food", Amount: Money{Cents: 1}, Date: "2024-01-01"},
		{OwnerID: "u1", Kind: "other", Category: "food", Amount: Money{Cents: 1}, Date: "2024-01-01"},
		{OwnerID: "u1", Kind: Expense, Category: "", Amount: Money{Cents: 1}, Date: "2024-01-01"},
		{OwnerID: "u1", Kind: Expense, Category: "food", Amount: Money{Cents: -1}, Date: "2024-01-01"},
		{OwnerID: "u1", Kind: Expense, Category: "food", Amount: Money{Cents: 1}, Date: "01-01-2024"},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
