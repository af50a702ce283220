package ledger

// SearchOptions narrows and pages a ledger listing. The zero value means
// "first page of everything".
type SearchOptions struct {
	Window   Window
	SellerID string
	Search   string
	Page     int
	Limit    int
}

// Normalize clamps paging to sane values.
func (o SearchOptions) Normalize() SearchOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 50
	}
	return o
}
