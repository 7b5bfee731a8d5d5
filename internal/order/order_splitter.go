package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type supplierGroup struct {
	id    string
	name  string
	items []OrderLine
}

// Split groups cart lines into one order shell per supplier, in the order each
// supplier first appears in lines. Lines whose product is not in products are
// dropped. A nil or empty lines slice yields an empty, non-nil result.
func Split(lines []Line, products map[string]ProductInfo, now time.Time) []Order {
	var groups []*supplierGroup
	bySupplier := make(map[string]*supplierGroup)

	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}

		g, seen := bySupplier[p.SupplierID]
		if !seen {
			g = &supplierGroup{id: p.SupplierID, name: p.SupplierName}
			bySupplier[p.SupplierID] = g
			groups = append(groups, g)
		}
		g.items = append(g.items, OrderLine{
			ProductID: l.ProductID,
			Qty:       l.Qty,
			Price:     p.Price,
			Title:     p.Title,
		})
	}

	orders := make([]Order, 0, len(groups))
	for i, g := range groups {
		orders = append(orders, Order{
			ID:           shellID(now, i),
			SupplierID:   g.id,
			SupplierName: g.name,
			Items:        g.items,
			Chat: []ChatMessage{{
				ID:        uuid.NewString(),
				Author:    AuthorSystem,
				Text:      SystemGreeting,
				Timestamp: now,
			}},
			Status:    StatusNew,
			CreatedAt: now,
		})
	}
	return orders
}

func shellID(now time.Time, position int) string {
	return fmt.Sprintf("ord-%d-%d", now.UnixMilli(), position+1)
}
