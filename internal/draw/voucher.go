package draw

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// WinnerVoucher renders a draw result as a QR PNG so the winner can be
// handed a scannable proof at the prize table.
func WinnerVoucher(res *Result, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	payload := fmt.Sprintf("TOMBOLA WINNER\n%s %s\n%s\nsale:%s tickets:%d/%d",
		res.Winner.FirstName, res.Winner.LastName, res.Winner.Contact,
		res.Winner.ID, res.Winner.Quantity, res.TotalTickets)

	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode voucher QR: %w", err)
	}
	return png, nil
}
