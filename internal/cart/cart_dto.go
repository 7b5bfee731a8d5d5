package cart

import "github.com/shopspring/decimal"

// ==================== REQUEST STRUCTS ====================

type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=999"`
}

type UpdateQtyRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=999"`
}

// ==================== UPSTREAM WIRE STRUCTS ====================

type organizationDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type productDTO struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	PartNumber   *string          `json:"part_number"`
	Price        decimal.Decimal  `json:"price"`
	AllowCart    bool             `json:"allow_cart"`
	Organization *organizationDTO `json:"organization"`
}

type cartItemDTO struct {
	ID         string          `json:"id"`
	Quantity   int             `json:"quantity"`
	Status     string          `json:"status"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Product    productDTO      `json:"product"`
}

type cartDTO struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Items       []cartItemDTO   `json:"items"`
	UniqueItems int             `json:"unique_items"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type summaryDTO struct {
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type addItemBody struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateItemBody struct {
	Quantity int `json:"quantity"`
}

// ==================== ADAPTERS ====================

func (d cartDTO) toCart() Cart {
	items := make([]CartItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, it.toItem())
	}
	return Cart{
		ID:          d.ID,
		UserID:      d.UserID,
		Items:       items,
		UniqueItems: d.UniqueItems,
		TotalItems:  d.TotalItems,
		TotalAmount: d.TotalAmount,
	}
}

func (d cartItemDTO) toItem() CartItem {
	p := Product{
		ID:        d.Product.ID,
		Title:     d.Product.Title,
		Price:     d.Product.Price,
		AllowCart: d.Product.AllowCart,
	}
	if d.Product.PartNumber != nil {
		p.PartNumber = *d.Product.PartNumber
	}
	if d.Product.Organization != nil {
		p.Organization = &Organization{ID: d.Product.Organization.ID, Name: d.Product.Organization.Name}
	}
	status := d.Status
	if status == "" {
		status = ItemStatusActive
	}
	return CartItem{
		ID:         d.ID,
		Quantity:   d.Quantity,
		Status:     status,
		UnitPrice:  d.UnitPrice,
		TotalPrice: d.TotalPrice,
		Product:    p,
	}
}

func (d summaryDTO) toSummary() Summary {
	return Summary{TotalItems: d.TotalItems, TotalAmount: d.TotalAmount}
}
