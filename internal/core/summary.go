package core

// Summary holds the income and expense totals for one owner over an
// inclusive date range. Both totals are always present; an empty range
// yields zeros.
type Summary struct {
	TotalIncome  Money
	TotalExpense Money
}

// CategoryAmount is one slice of an expense breakdown: a category and the
// summed amount spent on it.
type CategoryAmount struct {
	Category string
	Amount   Money
}

// TrendBucket is one calendar day or month of summed income and expense.
// Key is YYYY-MM-DD for daily buckets and YYYY-MM for monthly ones.
// Buckets with no entries are never emitted.
type TrendBucket struct {
	Key     string
	Income  Money
	Expense Money
}
