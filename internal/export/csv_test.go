package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-tombola/internal/models"
)

func TestSalesCSVStartsWithBOM(t *testing.T) {
	data, err := SalesCSV(nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\ufeff")), "UTF-8 BOM prefix")
}

func TestSalesCSVHeaderAndRows(t *testing.T) {
	created := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	sales := []models.Sale{
		{
			ID:             "sale-1",
			SellerID:       "seller-1",
			FirstName:      "Jean",
			LastName:       "Dupont",
			Contact:        "jean@example.com",
			Quantity:       3,
			SellerEarning:  1200,
			CompanyEarning: 3300,
			CreatedAt:      created,
		},
	}

	data, err := SalesCSV(sales)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	records, err := r.ReadAll()
	require.NoError(t, err, "output must be valid CSV")
	require.Len(t, records, 2, "header + 1 row")

	wantHeader := "identifier,sellerId,lastName,firstName,contact,quantity,sellerEarning,companyEarning,timestamp"
	assert.Equal(t, wantHeader, strings.Join(records[0], ","))

	row := records[1]
	assert.Equal(t, "sale-1", row[0])
	assert.Equal(t, "Dupont", row[2])
	assert.Equal(t, "3", row[5])
	assert.Equal(t, "2025-06-15T14:30:00Z", row[8])
}

func TestSalesCSVQuotesSpecialCharacters(t *testing.T) {
	sales := []models.Sale{
		{
			ID:        "sale-1",
			SellerID:  "seller-1",
			FirstName: `Jean "JJ"`,
			LastName:  "Dupont, Sr.",
			Contact:   "jean@example.com",
			Quantity:  1,
			CreatedAt: time.Now(),
		},
	}

	data, err := SalesCSV(sales)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	records, err := r.ReadAll()
	require.NoError(t, err, "quoted output must be valid CSV")
	assert.Equal(t, "Dupont, Sr.", records[1][2], "comma round-trips")
	assert.Equal(t, `Jean "JJ"`, records[1][3], "quote round-trips")
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "tombola-sales-2025-06-15.csv", Filename(now))
}
