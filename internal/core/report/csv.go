package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// ExportKind selects which records an export contains.
type ExportKind string

const (
	ExportSales    ExportKind = "sales"
	ExportExpenses ExportKind = "expenses"
	ExportDebts    ExportKind = "debts"
)

// Valid reports whether k is a known export kind.
func (k ExportKind) Valid() bool {
	switch k {
	case ExportSales, ExportExpenses, ExportDebts:
		return true
	}
	return false
}

// utf8BOM lets spreadsheet applications detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const exportTimeLayout = "2006-01-02 15:04:05"

// CSV exports one kind of record from the snapshot, newest first, as UTF-8
// CSV with a byte order mark. Timestamps are written in loc.
func CSV(kind ExportKind, snap *domain.Snapshot, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}

	var rows [][]string
	switch kind {
	case ExportSales:
		rows = append(rows, []string{"id", "date", "amount", "expense_amount", "profit", "margin_percent", "description"})
		for _, t := range sortedTransactions(snap.Sales()) {
			margin := 0.0
			if t.Amount > 0 {
				margin = t.Profit() / t.Amount * 100
			}
			rows = append(rows, []string{
				id(t.ID), t.CreatedAt.In(loc).Format(exportTimeLayout),
				num(t.Amount), num(t.ExpenseAmount), num(t.Profit()), num(margin), t.Description,
			})
		}
	case ExportExpenses:
		rows = append(rows, []string{"id", "date", "amount", "description"})
		for _, t := range sortedTransactions(snap.Expenses()) {
			rows = append(rows, []string{
				id(t.ID), t.CreatedAt.In(loc).Format(exportTimeLayout), num(t.Amount), t.Description,
			})
		}
	case ExportDebts:
		rows = append(rows, []string{"id", "date", "type", "type_display", "person_name", "amount", "description", "is_repaid"})
		for _, d := range sortedDebts(snap.Debts) {
			rows = append(rows, []string{
				id(d.ID), d.CreatedAt.In(loc).Format(exportTimeLayout), string(d.Type), debtLabel(d.Type),
				d.PersonName, num(d.Amount), d.Description, strconv.FormatBool(d.IsRepaid),
			})
		}
	default:
		return nil, fmt.Errorf("%w: unknown export kind %q", domain.ErrInvalidInput, kind)
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func sortedTransactions(txs []domain.Transaction) []domain.Transaction {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].CreatedAt.After(txs[j].CreatedAt)
		}
		return txs[i].ID > txs[j].ID
	})
	return txs
}

func sortedDebts(debts []domain.Debt) []domain.Debt {
	out := make([]domain.Debt, len(debts))
	copy(out, debts)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type == domain.DebtOwedToMe
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func debtLabel(t domain.DebtType) string {
	if t == domain.DebtOwedToMe {
		return "Owed to me"
	}
	return "I owe"
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func num(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
