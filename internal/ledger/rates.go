package ledger

// Rates is the per-ticket money split in effect for a computation.
// It is always passed in explicitly: a rate change never rewrites
// earnings already stored on a sale.
type Rates struct {
	TicketPrice int64
	SellerRate  int64
	CompanyRate int64
}

// DefaultRates is the stock split: 1500 per ticket, 400 to the seller,
// 1100 to the company.
var DefaultRates = Rates{
	TicketPrice: 1500,
	SellerRate:  400,
	CompanyRate: 1100,
}

// SellerEarning returns the seller's cut for a quantity of tickets.
func (r Rates) SellerEarning(quantity int) int64 {
	return int64(quantity) * r.SellerRate
}

// CompanyEarning returns the company's cut for a quantity of tickets.
func (r Rates) CompanyEarning(quantity int) int64 {
	return int64(quantity) * r.CompanyRate
}

// Revenue returns the gross ticket revenue for a quantity of tickets.
func (r Rates) Revenue(quantity int) int64 {
	return int64(quantity) * r.TicketPrice
}
