package catalog

import "github.com/shopspring/decimal"

type Organization struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

type Media struct {
	ID  string `json:"id"`
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

type Product struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	PartNumber   string          `json:"partNumber,omitempty"`
	Condition    string          `json:"condition,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency,omitempty"`
	AllowCart    bool            `json:"allowCart"`
	IsBuyable    bool            `json:"isBuyable"`
	Media        []Media         `json:"media"`
	Organization *Organization   `json:"organization,omitempty"`
}

// Page is one slice of the feed. NextCursor is empty on the last page.
type Page struct {
	Items      []Product `json:"items"`
	NextCursor string    `json:"nextCursor,omitempty"`
}
