package model

// WorkshopAccessFacts is the typed snapshot that admission decisions run
// on. It is produced by the workshop repository in one query; services
// never probe schema variants themselves.
type WorkshopAccessFacts struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	OwnerID         string `json:"owner_id"`
	PaymentRequired bool   `json:"payment_required"`
	PriceCents      int    `json:"price_cents"`
	Capacity        int    `json:"capacity"` // 0 means unlimited
}

// IsPaid reports whether admission requires proof of payment. The
// repository resolves the flag at query time: an explicit paid_required
// value wins, and a nonzero price is only the fallback when the flag was
// never configured either way.
func (w *WorkshopAccessFacts) IsPaid() bool {
	return w.PaymentRequired
}

// HasCapacityLimit reports whether the workshop caps its roster.
func (w *WorkshopAccessFacts) HasCapacityLimit() bool {
	return w.Capacity > 0
}
