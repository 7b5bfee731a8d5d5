package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusNew = "new"

	AuthorBuyer  = "buyer"
	AuthorSeller = "seller"
	AuthorSystem = "system"

	SystemGreeting = "chat opened; contact the seller for details"

	DefaultSupplierID   = "default_supplier"
	DefaultSupplierName = "Supplier"

	RoleSeller = "seller"
)

// AuthorForRole maps the token role to a chat author. Only seller tokens speak
// as the seller.
func AuthorForRole(role string) string {
	if role == RoleSeller {
		return AuthorSeller
	}
	return AuthorBuyer
}

// Line is one cart line handed to the splitter.
type Line struct {
	ProductID string
	Qty       int
}

// ProductInfo is what the splitter needs to know about a product.
type ProductInfo struct {
	SupplierID   string
	SupplierName string
	Price        decimal.Decimal
	Title        string
}

type OrderLine struct {
	ProductID string          `json:"productId"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Title     string          `json:"title"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Order is a per-supplier shell created from the cart at checkout.
type Order struct {
	ID           string        `json:"id"`
	SupplierID   string        `json:"supplierId"`
	SupplierName string        `json:"supplierName"`
	Items        []OrderLine   `json:"items"`
	Chat         []ChatMessage `json:"chat"`
	Status       string        `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
}

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return total
}
