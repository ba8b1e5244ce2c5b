package models

// Biller is a utility or service provider that accepts bill payments.
type Biller struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`

	// VATRate is the VAT fraction applied on top of the bill (0.05 = 5%).
	VATRate float64 `json:"vat_rate,omitempty"`
}

// Ticket describes a bus, train, flight or event booking.
type Ticket struct {
	Kind     string `json:"kind"`
	Provider string `json:"provider"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Date     string `json:"date"`
	Seats    int    `json:"seats"`
}

// CartItem is one line in a marketplace cart.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`

	// DeliveryAddress is required at checkout.
	DeliveryAddress string `json:"delivery_address,omitempty"`
}

// LineTotal is the price of the line before any checkout fees.
func (c CartItem) LineTotal() float64 {
	return c.Price * float64(c.Quantity)
}
