package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// NewSaleID returns the identifier for a new sale row.
func NewSaleID() string {
	return uuid.New().String()
}

// NewSeasonID returns the identifier for a new season header.
func NewSeasonID() string {
	return uuid.New().String()
}

// NewLoginCode returns a 6-digit one-time login code.
func NewLoginCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// Extremely unlikely; fall back to a time-derived code.
		return fmt.Sprintf("%06d", time.Now().UnixNano()%900000+100000)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
