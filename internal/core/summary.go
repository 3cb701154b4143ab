package core

// Totals holds income and expense sums over a date range.
type Totals struct {
	TotalIncome  float64
	TotalExpense float64
}

// Balance is income minus expense.
func (t Totals) Balance() float64 {
	return t.TotalIncome - t.TotalExpense
}

// CategoryTotal is an amount aggregated by category name.
type CategoryTotal struct {
	Category string
	Total    float64
}
