// Package market provides the daily market types and the priority
// clearing engine that pairs shopper demand with seller offers.
package market

// Offer is one agent's published price and maximum quantity for a
// single day. Offers are consumed entirely within the day they are set.
type Offer struct {
	AgentName string `json:"agent_name"`
	Price     int    `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Trade records one unit sold to a shopper at the seller's price.
type Trade struct {
	Day       int    `json:"day"`
	ShopperID string `json:"shopper_id"`
	Seller    string `json:"seller"`
	Price     int    `json:"price"`
}

// UnmetDemand records a demand unit that went unfilled: either the
// cheapest remaining seller asked more than the shopper would pay
// (AskPrice is that seller's price), or no seller had stock left
// (AskPrice is 0).
type UnmetDemand struct {
	Day          int    `json:"day"`
	ShopperID    string `json:"shopper_id"`
	WillingToPay int    `json:"willing_to_pay"`
	AskPrice     int    `json:"ask_price"`
}

// WholesaleTrade records a negotiated broker/supplier transaction.
type WholesaleTrade struct {
	Day      int    `json:"day"`
	Buyer    string `json:"buyer"`
	Seller   string `json:"seller"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}
