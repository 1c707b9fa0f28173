package domain

// LineItem is one ordered product as it should be displayed. Quantity and
// Price are kept as display text because point-of-sale payloads mix numbers
// and pre-formatted strings.
type LineItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

// Order is the normalized form of an inbound order notification.
//
// When the payload carried an item collection that was not a list, Items is
// empty and ItemsText holds the textual form of that value instead.
type Order struct {
	ID           string     `json:"order_id"`
	CustomerName string     `json:"customer_name"`
	Items        []LineItem `json:"items"`
	ItemsText    string     `json:"items_text,omitempty"`
	Total        string     `json:"total"`
}

type OutboundMessage struct {
	Body string
	From string
	To   string
}
