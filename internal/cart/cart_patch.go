package cart

import "github.com/shopspring/decimal"

// The functions below compute optimistic views. They never mutate their input
// so the pre-mutation snapshot stays intact for a rollback.

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampAmount(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func (c Cart) find(itemID string) (int, bool) {
	for i, it := range c.Items {
		if it.ID == itemID {
			return i, true
		}
	}
	return -1, false
}

// locateItem looks in the active view first and falls back to the view that
// includes locked items.
func locateItem(itemID string, views ...*Cart) (CartItem, bool) {
	for _, v := range views {
		if v == nil {
			continue
		}
		if i, ok := v.find(itemID); ok {
			return v.Items[i], true
		}
	}
	return CartItem{}, false
}

func (s Summary) shift(deltaQty int, deltaAmount decimal.Decimal) Summary {
	return Summary{
		TotalItems:  clampInt(s.TotalItems + deltaQty),
		TotalAmount: clampAmount(s.TotalAmount.Add(deltaAmount)),
	}
}

// withQuantity returns the cart with itemID set to qty; qty <= 0 removes the line.
// ok is false when the item is not in this view, in which case the cart is
// returned unchanged.
func (c Cart) withQuantity(itemID string, qty int) (Cart, bool) {
	idx, ok := c.find(itemID)
	if !ok {
		return c, false
	}
	cur := c.Items[idx]

	next := c
	next.Items = make([]CartItem, 0, len(c.Items))

	var totalItems int
	var totalAmount decimal.Decimal
	if qty <= 0 {
		for _, it := range c.Items {
			if it.ID != itemID {
				next.Items = append(next.Items, it)
			}
		}
		totalItems = c.TotalItems - cur.Quantity
		totalAmount = c.TotalAmount.Sub(cur.TotalPrice)
	} else {
		updated := cur
		updated.Quantity = qty
		updated.TotalPrice = cur.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))

		next.Items = append(next.Items, c.Items...)
		next.Items[idx] = updated
		totalItems = c.TotalItems - cur.Quantity + qty
		totalAmount = c.TotalAmount.Sub(cur.TotalPrice).Add(updated.TotalPrice)
	}

	next.UniqueItems = len(next.Items)
	next.TotalItems = clampInt(totalItems)
	next.TotalAmount = clampAmount(totalAmount)
	return next, true
}

func (c Cart) emptied() Cart {
	next := c
	next.Items = []CartItem{}
	next.UniqueItems = 0
	next.TotalItems = 0
	next.TotalAmount = decimal.Zero
	return next
}
