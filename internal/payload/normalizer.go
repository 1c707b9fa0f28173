package payload

import "github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/domain"

const (
	DefaultOrderID      = "unknown"
	DefaultCustomerName = "Qonaq"
	DefaultTotal        = "—"
	DefaultItemName     = "item"
	DefaultQuantity     = "1"
)

var (
	orderIDRules  = []Rule{Key("order_id"), Key("id"), Key("OrderId")}
	customerRules = []Rule{Nested("customer", "name"), Key("client_name")}
	itemsRules    = []Rule{Key("items"), Key("lines")}
	totalRules    = []Rule{Key("total"), Key("amount"), Key("sum")}

	itemNameRules     = []Rule{Key("name"), Key("product"), Key("Title")}
	itemQuantityRules = []Rule{Key("quantity"), Key("qty"), Key("count")}
	itemPriceRules    = []Rule{Key("price"), Key("unit_price")}
)

// Normalize maps a schema-flexible order notification onto domain.Order.
// It never fails: every missing or unusable field falls back to its default.
func Normalize(obj Object) domain.Order {
	order := domain.Order{
		ID:           FirstText(obj, DefaultOrderID, orderIDRules...),
		CustomerName: FirstText(obj, DefaultCustomerName, customerRules...),
		Items:        []domain.LineItem{},
		Total:        FirstText(obj, DefaultTotal, totalRules...),
	}

	raw, ok := First(obj, itemsRules...)
	if !ok {
		return order
	}

	list, ok := raw.([]any)
	if !ok {
		order.ItemsText = Text(raw)
		return order
	}

	for _, el := range list {
		order.Items = append(order.Items, normalizeItem(el))
	}
	return order
}

func normalizeItem(el any) domain.LineItem {
	fields, ok := el.(map[string]any)
	if !ok {
		// bare scalars such as "Tea" are treated as the item name
		name := DefaultItemName
		if !absent(el) {
			name = Text(el)
		}
		return domain.LineItem{Name: name, Quantity: DefaultQuantity}
	}

	return domain.LineItem{
		Name:     FirstText(fields, DefaultItemName, itemNameRules...),
		Quantity: FirstText(fields, DefaultQuantity, itemQuantityRules...),
		Price:    FirstText(fields, "", itemPriceRules...),
	}
}
