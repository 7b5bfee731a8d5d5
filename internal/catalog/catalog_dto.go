package catalog

import "github.com/shopspring/decimal"

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
	MaxFeedPages     = 5
)

// ==================== REQUEST STRUCTS ====================

type FeedQuery struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit"`
	Pages  int    `form:"pages"`
}

// ==================== UPSTREAM WIRE STRUCTS ====================

type organizationDTO struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Country *string `json:"country"`
}

type mediaDTO struct {
	ID  string  `json:"id"`
	URL string  `json:"url"`
	Alt *string `json:"alt"`
}

type productDTO struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	PartNumber   *string          `json:"part_number"`
	Condition    string           `json:"condition"`
	Price        decimal.Decimal  `json:"price"`
	Currency     *string          `json:"currency"`
	AllowCart    bool             `json:"allow_cart"`
	IsBuyable    bool             `json:"is_buyable"`
	Media        []mediaDTO       `json:"media"`
	Organization *organizationDTO `json:"organization"`
}

type pageDTO struct {
	Items      []productDTO `json:"items"`
	NextCursor *string      `json:"next_cursor"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toProduct(d productDTO) Product {
	p := Product{
		ID:         d.ID,
		Title:      d.Title,
		PartNumber: deref(d.PartNumber),
		Condition:  d.Condition,
		Price:      d.Price,
		Currency:   deref(d.Currency),
		AllowCart:  d.AllowCart,
		IsBuyable:  d.IsBuyable,
		Media:      make([]Media, 0, len(d.Media)),
	}
	for _, m := range d.Media {
		p.Media = append(p.Media, Media{ID: m.ID, URL: m.URL, Alt: deref(m.Alt)})
	}
	if d.Organization != nil {
		p.Organization = &Organization{
			ID:      d.Organization.ID,
			Name:    d.Organization.Name,
			Country: deref(d.Organization.Country),
		}
	}
	return p
}

func toPage(d pageDTO) Page {
	page := Page{
		Items:      make([]Product, 0, len(d.Items)),
		NextCursor: deref(d.NextCursor),
	}
	for _, it := range d.Items {
		page.Items = append(page.Items, toProduct(it))
	}
	return page
}

// clampLimit keeps a feed page size within [1, MaxFeedLimit]; zero or negative
// selects the default.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultFeedLimit
	case limit > MaxFeedLimit:
		return MaxFeedLimit
	default:
		return limit
	}
}
