// Package report renders admin exports.
package report

import (
	"fmt"
	"io"
	"time"

	"paywin/internal/domain"

	"github.com/xuri/excelize/v2"
)

const TransactionsSheet = "Transactions"

var transactionHeader = []any{"ID", "User", "Type", "Amount", "Balance after", "Status", "Reference", "Description", "Created at"}

// WriteTransactions writes one XLSX workbook with a row per transaction
func WriteTransactions(w io.Writer, txs []domain.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TransactionsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(TransactionsSheet, "A1", &transactionHeader); err != nil {
		return err
	}
	for i, t := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{t.ID, t.UserID, string(t.Type), signedAmount(t), t.BalanceAfter, t.Status, t.Reference, t.Description, t.CreatedAt.UTC().Format(time.RFC3339)}
		if err := f.SetSheetRow(TransactionsSheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	if err := f.SetPanes(TransactionsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

// signedAmount shows debits as negative numbers
func signedAmount(t domain.Transaction) int64 {
	if t.Type.Credit() {
		return t.Amount
	}
	return -t.Amount
}
