package cart

import "github.com/shopspring/decimal"

// Line is one product entry in the cart. Display attributes are copied from
// the catalog when the line is first added and never refreshed afterwards.
type Line struct {
	ProductID int64           `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Amount    int             `json:"amount"`
}

// Cart is an ordered sequence of lines with unique product ids.
//
// A Cart handed out by the Store is never modified again; every mutation
// builds a new slice.
type Cart []Line

func (c Cart) Find(productID int64) (Line, bool) {
	for _, l := range c {
		if l.ProductID == productID {
			return l, true
		}
	}
	return Line{}, false
}

// Amounts maps product id to amount.
func (c Cart) Amounts() map[int64]int {
	out := make(map[int64]int, len(c))
	for _, l := range c {
		out[l.ProductID] = l.Amount
	}
	return out
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

func (c Cart) withLine(l Line) Cart {
	out := make(Cart, 0, len(c)+1)
	out = append(out, c...)
	return append(out, l)
}

// withAmount sets the amount of the matching line. A cart without that line
// is returned as an unchanged copy.
func (c Cart) withAmount(productID int64, amount int) Cart {
	out := make(Cart, len(c))
	for i, l := range c {
		if l.ProductID == productID {
			l.Amount = amount
		}
		out[i] = l
	}
	return out
}

func (c Cart) without(productID int64) Cart {
	out := make(Cart, 0, len(c))
	for _, l := range c {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	return out
}
