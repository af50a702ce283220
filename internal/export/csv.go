package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"ms-tombola/internal/models"
)

// csvHeader is the fixed column order consumed by the accounting
// spreadsheet. Do not reorder.
var csvHeader = []string{
	"identifier",
	"sellerId",
	"lastName",
	"firstName",
	"contact",
	"quantity",
	"sellerEarning",
	"companyEarning",
	"timestamp",
}

// SalesCSV renders the ledger as UTF-8 CSV with a BOM so spreadsheet
// tools pick up accented names correctly.
func SalesCSV(sales []models.Sale) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\ufeff")

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range sales {
		record := []string{
			s.ID,
			s.SellerID,
			s.LastName,
			s.FirstName,
			s.Contact,
			strconv.Itoa(s.Quantity),
			strconv.FormatInt(s.SellerEarning, 10),
			strconv.FormatInt(s.CompanyEarning, 10),
			s.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename builds the attachment name for a ledger export.
func Filename(now time.Time) string {
	return "tombola-sales-" + now.Format("2006-01-02") + ".csv"
}
