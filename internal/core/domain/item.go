package domain

// Item is one catalog entry. ID is the identity key; Topic is a non-unique
// grouping attribute shared by many items.
type Item struct {
	ID       int64  `json:"id"`
	Topic    string `json:"topic"`
	Title    string `json:"title"`
	UnitCost int64  `json:"unitCost"`
	Quantity int64  `json:"quantity"`
}
