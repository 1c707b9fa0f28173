package message

import (
	"strings"
	"time"

	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/domain"
)

const timestampLayout = "2006-01-02 15:04 UTC"

// Format renders order as the plain-text notification sent to the recipient.
// The timestamp is converted to UTC. Nothing is truncated.
func Format(order domain.Order, now time.Time) string {
	var b strings.Builder

	b.WriteString("Yeni sifariş!\n\n")
	b.WriteString("Sifariş ID: " + order.ID + "\n")
	b.WriteString("Müştəri: " + order.CustomerName + "\n\n")
	b.WriteString("Əşyalar:\n")
	if order.ItemsText != "" {
		b.WriteString(order.ItemsText + "\n")
	}
	for _, item := range order.Items {
		b.WriteString(ItemLine(item) + "\n")
	}
	b.WriteString("\n")
	b.WriteString("Ümumi: " + order.Total + "\n\n")
	b.WriteString("Vaxt: " + now.UTC().Format(timestampLayout))

	return b.String()
}

// ItemLine renders one item as "- {name} x{quantity} {price}", dropping the
// trailing separator when the price is empty.
func ItemLine(item domain.LineItem) string {
	line := "- " + item.Name + " x" + item.Quantity
	if item.Price != "" {
		line += " " + item.Price
	}
	return line
}
