package cart

import "github.com/shopspring/decimal"

const (
	ItemStatusActive = "active"
	ItemStatusLocked = "locked"
)

type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is the snapshot of a product embedded in a cart line.
type Product struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	PartNumber   string          `json:"partNumber,omitempty"`
	Price        decimal.Decimal `json:"price"`
	AllowCart    bool            `json:"allowCart"`
	Organization *Organization   `json:"organization,omitempty"`
}

type CartItem struct {
	ID         string          `json:"id"`
	Quantity   int             `json:"quantity"`
	Status     string          `json:"status"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Product    Product         `json:"product"`
}

// Cart is the full view. TotalItems, TotalAmount and UniqueItems always agree with
// Items after a local patch.
type Cart struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Items       []CartItem      `json:"items"`
	UniqueItems int             `json:"uniqueItems"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Summary is the badge-sized aggregate cached apart from the full cart.
type Summary struct {
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}
