package draw

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"

	"ms-tombola/internal/ledger"
	"ms-tombola/internal/models"
)

// Result names the winning sale and the pool it was drawn from.
type Result struct {
	Winner            models.Sale `json:"winner"`
	TotalTickets      int         `json:"total_tickets"`
	TotalParticipants int         `json:"total_participants"`
}

// Engine performs weighted random draws over a set of sales. A sale with
// quantity 5 holds five slots and is five times as likely to win as a
// quantity-1 sale. The engine is stateless: nothing is persisted and a
// result reflects the pool exactly as passed in.
type Engine struct {
	rng *rand.Rand
}

// NewEngine seeds the engine from the OS entropy source.
func NewEngine() *Engine {
	var seed [8]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic(fmt.Sprintf("draw: cannot seed rng: %v", err))
	}
	return NewEngineWithSource(rand.NewSource(int64(binary.LittleEndian.Uint64(seed[:]))))
}

// NewEngineWithSource injects a deterministic source. Tests use this.
func NewEngineWithSource(src rand.Source) *Engine {
	return &Engine{rng: rand.New(src)}
}

// Draw samples one winning sale, weighted by ticket quantity.
//
// The sampled index is a uniform integer in [0, totalTickets); the pool
// is walked in input order accumulating quantities until the running sum
// passes the index, which makes the win probability of a sale exactly
// quantity/totalTickets.
func (e *Engine) Draw(pool []models.Sale) (*Result, error) {
	totalTickets := 0
	for _, s := range pool {
		if s.Quantity > 0 {
			totalTickets += s.Quantity
		}
	}
	if totalTickets == 0 {
		return nil, ledger.ErrEmptyPool
	}

	slot := e.rng.Intn(totalTickets)
	var winner models.Sale
	acc := 0
	for _, s := range pool {
		if s.Quantity <= 0 {
			continue
		}
		acc += s.Quantity
		if slot < acc {
			winner = s
			break
		}
	}

	return &Result{
		Winner:            winner,
		TotalTickets:      totalTickets,
		TotalParticipants: countParticipants(pool),
	}, nil
}

// countParticipants counts distinct customers, not sale rows: the same
// person buying twice is one participant.
func countParticipants(pool []models.Sale) int {
	seen := make(map[string]struct{}, len(pool))
	for _, s := range pool {
		key := s.LastName + "\x00" + s.FirstName + "\x00" + s.Contact
		seen[key] = struct{}{}
	}
	return len(seen)
}
