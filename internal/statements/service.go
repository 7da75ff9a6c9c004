package statements

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/agromart/agromart/internal/ledger"
)

// LedgerSource reads ledger history for statement generation.
type LedgerSource interface {
	Account(ctx context.Context, customerID, ownerID int64) (*ledger.AccountSummary, error)
	ListEntries(ctx context.Context, req ledger.ListEntriesRequest) ([]ledger.Entry, int, error)
}

// Row is one statement line.
type Row struct {
	Date        time.Time              `json:"date"`
	Type        ledger.TransactionType `json:"transactionType"`
	Description string                 `json:"description"`
	Charge      float64                `json:"charge"`
	Payment     float64                `json:"payment"`
	Balance     float64                `json:"balance"`
}

// Statement is a customer's account activity over a period.
type Statement struct {
	CustomerID     int64     `json:"customerId"`
	CustomerName   string    `json:"customerName"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	Rows           []Row     `json:"rows"`
	TotalCharges   float64   `json:"totalCharges"`
	TotalPayments  float64   `json:"totalPayments"`
	ClosingBalance float64   `json:"closingBalance"`
}

// Service builds customer account statements.
type Service struct {
	ledger LedgerSource
}

// NewService constructs the Service.
func NewService(source LedgerSource) *Service {
	return &Service{ledger: source}
}

const statementPageSize = 500

// Build assembles a statement for the period. Rows come out oldest first;
// the closing balance is the balance of the newest entry in range, or the
// account balance when the range is empty.
func (s *Service) Build(ctx context.Context, customerID, ownerID int64, from, to time.Time) (*Statement, error) {
	account, err := s.ledger.Account(ctx, customerID, ownerID)
	if err != nil {
		return nil, err
	}

	st := &Statement{
		CustomerID:     account.CustomerID,
		CustomerName:   account.CustomerName,
		From:           from,
		To:             to,
		ClosingBalance: account.Balance,
	}

	offset := 0
	for {
		entries, total, err := s.ledger.ListEntries(ctx, ledger.ListEntriesRequest{
			CustomerID: customerID,
			OwnerID:    ownerID,
			From:       &from,
			To:         &to,
			Limit:      statementPageSize,
			Offset:     offset,
		})
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			row := Row{
				Date:        e.CreatedAt,
				Type:        e.Type,
				Description: e.Description,
				Balance:     e.Balance,
			}
			if e.Amount >= 0 {
				row.Charge = e.Amount
				st.TotalCharges += e.Amount
			} else {
				row.Payment = -e.Amount
				st.TotalPayments += -e.Amount
			}
			st.Rows = append(st.Rows, row)
		}
		offset += len(entries)
		if offset >= total || len(entries) == 0 {
			break
		}
	}

	// Entries arrive newest first; statements read oldest first.
	for i, j := 0, len(st.Rows)-1; i < j; i, j = i+1, j-1 {
		st.Rows[i], st.Rows[j] = st.Rows[j], st.Rows[i]
	}
	if n := len(st.Rows); n > 0 {
		st.ClosingBalance = st.Rows[n-1].Balance
	}
	return st, nil
}

// WriteCSV renders the statement as CSV. Amounts carry digit grouping from
// the en locale, e.g. 120,000.00.
func (s *Service) WriteCSV(w io.Writer, st *Statement) error {
	p := message.NewPrinter(language.English)
	cw := csv.NewWriter(w)

	header := []string{"Date", "Type", "Description", "Charge", "Payment", "Balance"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("statements: write csv: %w", err)
	}
	for _, row := range st.Rows {
		record := []string{
			row.Date.Format("2006-01-02"),
			string(row.Type),
			row.Description,
			p.Sprintf("%.2f", row.Charge),
			p.Sprintf("%.2f", row.Payment),
			p.Sprintf("%.2f", row.Balance),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("statements: write csv: %w", err)
		}
	}
	totals := []string{
		"", "", "Totals",
		p.Sprintf("%.2f", st.TotalCharges),
		p.Sprintf("%.2f", st.TotalPayments),
		p.Sprintf("%.2f", st.ClosingBalance),
	}
	if err := cw.Write(totals); err != nil {
		return fmt.Errorf("statements: write csv: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
