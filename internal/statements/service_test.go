package statements

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agromart/agromart/internal/ledger"
)

type fakeLedger struct {
	summary *ledger.AccountSummary
	entries []ledger.Entry
}

func (f *fakeLedger) Account(context.Context, int64, int64) (*ledger.AccountSummary, error) {
	return f.summary, nil
}

func (f *fakeLedger) ListEntries(_ context.Context, req ledger.ListEntriesRequest) ([]ledger.Entry, int, error) {
	if req.Offset >= len(f.entries) {
		return nil, len(f.entries), nil
	}
	end := min(req.Offset+req.Limit, len(f.entries))
	return f.entries[req.Offset:end], len(f.entries), nil
}

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildStatementTotalsAndOrder(t *testing.T) {
	// Newest first, as the ledger store returns them.
	source := &fakeLedger{
		summary: &ledger.AccountSummary{CustomerID: 1, CustomerName: "Ravi Traders", Balance: 250},
		entries: []ledger.Entry{
			{Type: ledger.TypePayment, Amount: -150, Balance: 250, Description: "Payment received via cash", CreatedAt: day(20)},
			{Type: ledger.TypeCreditSale, Amount: 400, Balance: 400, Description: "Credit sale ORD-000002", CreatedAt: day(10)},
		},
	}

	svc := NewService(source)
	st, err := svc.Build(context.Background(), 1, 1, day(1), day(30))
	require.NoError(t, err)

	require.Len(t, st.Rows, 2)
	require.Equal(t, ledger.TypeCreditSale, st.Rows[0].Type, "oldest first")
	require.Equal(t, 400.0, st.Rows[0].Charge)
	require.Equal(t, 150.0, st.Rows[1].Payment)
	require.Equal(t, 400.0, st.TotalCharges)
	require.Equal(t, 150.0, st.TotalPayments)
	require.Equal(t, 250.0, st.ClosingBalance)
}

func TestBuildStatementEmptyPeriodUsesAccountBalance(t *testing.T) {
	source := &fakeLedger{
		summary: &ledger.AccountSummary{CustomerID: 2, CustomerName: "Anita Agro", Balance: 75},
	}

	svc := NewService(source)
	st, err := svc.Build(context.Background(), 2, 1, day(1), day(30))
	require.NoError(t, err)
	require.Empty(t, st.Rows)
	require.Equal(t, 75.0, st.ClosingBalance)
}

func TestWriteCSV(t *testing.T) {
	source := &fakeLedger{
		summary: &ledger.AccountSummary{CustomerID: 1, CustomerName: "Ravi Traders", Balance: 120000},
		entries: []ledger.Entry{
			{Type: ledger.TypeCreditSale, Amount: 120000, Balance: 120000, Description: "Bulk fertilizer", CreatedAt: day(5)},
		},
	}

	svc := NewService(source)
	st, err := svc.Build(context.Background(), 1, 1, day(1), day(30))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf, st))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, "header + row + totals")
	require.Equal(t, "Date,Type,Description,Charge,Payment,Balance", lines[0])
	require.Contains(t, out, "2025-06-05")
	require.Contains(t, out, `"120,000.00"`, "grouped amounts are quoted")
}
