package domain

import "time"

type OrderRelayedEvent struct {
	EventID      string    `json:"event_id"`
	OrderID      string    `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	ItemCount    int       `json:"item_count"`
	Total        string    `json:"total"`
	SID          string    `json:"sid"`
	Timestamp    time.Time `json:"timestamp"`
}
