package confirmation

// Confirmation is one pending action awaiting mobile approval. It is
// ephemeral: created by a fetch, consumed by a resolve, superseded by
// the next fetch. Ids and keys carry no identity across fetches, so
// callers re-fetch before re-acting.
type Confirmation struct {
	ID        string
	Key       string
	Type      int
	CreatorID string
	Icon      string
	Title     string
	Summary   string
	Time      string
}

// Category buckets a type code the way the auto-accept filters do.
type Category int

const (
	CategoryOther Category = iota
	CategoryTrade
	CategoryMarket
)

func (c *Confirmation) Category() Category {
	switch c.Type {
	case TypeTrade:
		return CategoryTrade
	case TypeMarket:
		return CategoryMarket
	default:
		return CategoryOther
	}
}
