package shared

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Document sequence kinds.
const (
	SeqOrder   = "order"
	SeqInvoice = "invoice"
)

var seqPrefixes = map[string]string{
	SeqOrder:   "ORD",
	SeqInvoice: "INV",
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NextDocumentNumber atomically increments the per-owner counter for kind and
// returns the formatted number, e.g. ORD-000042. It must run inside the
// transaction that creates the document so numbers stay gap-free on rollback
// races and are never duplicated under concurrent checkouts.
func NextDocumentNumber(ctx context.Context, q rowQuerier, ownerID int64, kind string) (string, error) {
	prefix, ok := seqPrefixes[kind]
	if !ok {
		return "", fmt.Errorf("shared: unknown sequence kind %q", kind)
	}
	var next int64
	err := q.QueryRow(ctx, `
		INSERT INTO doc_sequences (created_by, kind, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (created_by, kind)
		DO UPDATE SET last_value = doc_sequences.last_value + 1
		RETURNING last_value`, ownerID, kind).Scan(&next)
	if err != nil {
		return "", fmt.Errorf("shared: next %s number: %w", kind, err)
	}
	return FormatDocumentNumber(prefix, next), nil
}

// FormatDocumentNumber renders a sequence value as PREFIX-NNNNNN.
func FormatDocumentNumber(prefix string, value int64) string {
	return fmt.Sprintf("%s-%06d", prefix, value)
}
