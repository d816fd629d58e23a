package domain

import "github.com/shopspring/decimal"

// NewSessionView derives the totals of a session from its children.
// Sums are accumulated in decimal so that balance = total_sales - total_expenses
// holds exactly for the values that are returned.
func NewSessionView(s Session, txs []Transaction, debts []Debt) SessionView {
	var (
		sales, expenses decimal.Decimal
		owed, owe       decimal.Decimal
		salesCount      int
		expensesCount   int
	)

	for _, t := range txs {
		switch t.Type {
		case TransactionSale:
			salesCount++
			sales = sales.Add(decimal.NewFromFloat(t.Amount))
			expenses = expenses.Add(decimal.NewFromFloat(t.ExpenseAmount))
		case TransactionExpense:
			expensesCount++
			expenses = expenses.Add(decimal.NewFromFloat(t.Amount))
		}
	}

	for _, d := range debts {
		if d.IsRepaid {
			continue
		}
		switch d.Type {
		case DebtOwedToMe:
			owed = owed.Add(decimal.NewFromFloat(d.Amount))
		case DebtIOwe:
			owe = owe.Add(decimal.NewFromFloat(d.Amount))
		}
	}

	view := SessionView{
		Session:       s,
		TotalSales:    sales.InexactFloat64(),
		TotalExpenses: expenses.InexactFloat64(),
		Balance:       sales.Sub(expenses).InexactFloat64(),
		SalesCount:    salesCount,
		ExpensesCount: expensesCount,
		OwedToMe:      owed.InexactFloat64(),
		IOwe:          owe.InexactFloat64(),
	}
	if salesCount > 0 {
		view.AvgCheck = sales.Div(decimal.NewFromInt(int64(salesCount))).InexactFloat64()
	}
	return view
}
