package contract

import "strings"

// Intent is the user's inferred high-level goal for one message.
type Intent string

const (
	IntentGreet         Intent = "greet"
	IntentSearchProduct Intent = "search_product"
	IntentAddToCart     Intent = "add_to_cart"
	IntentCheckout      Intent = "checkout"
	IntentViewOrders    Intent = "view_orders"
	IntentRequestReturn Intent = "request_return"
	IntentProvideInfo   Intent = "provide_info"
	IntentUnknown       Intent = "unknown"
)

var knownIntents = map[Intent]bool{
	IntentGreet:         true,
	IntentSearchProduct: true,
	IntentAddToCart:     true,
	IntentCheckout:      true,
	IntentViewOrders:    true,
	IntentRequestReturn: true,
	IntentProvideInfo:   true,
	IntentUnknown:       true,
}

// ParseIntent maps a raw intent string onto a known Intent,
// defaulting to IntentUnknown.
func ParseIntent(raw string) Intent {
	in := Intent(strings.ToLower(strings.TrimSpace(raw)))
	if knownIntents[in] {
		return in
	}
	return IntentUnknown
}

// Entities are the named fields extracted from one message. Absent
// fields stay zero; Quantity is normalized to at least 1 by the
// extractor before the dialogue agent sees it.
type Entities struct {
	ProductName   string `json:"product_name,omitempty"`
	Quantity      int    `json:"quantity,omitempty"`
	OrderID       int64  `json:"order_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Name          string `json:"name,omitempty"`
	Address       string `json:"address,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// Extraction is the structured result of understanding one message.
type Extraction struct {
	Intent   Intent   `json:"intent"`
	Entities Entities `json:"entities"`
}

// Product is one catalog entry as surfaced to the dialogue agent.
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
}
