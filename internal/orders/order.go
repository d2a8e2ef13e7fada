package orders

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the immutable record produced by a successful checkout.
type Order struct {
	DateCreated   time.Time   `json:"date_created"`
	ID            string      `json:"id"`
	TransactionID string      `json:"transaction_id"`
	Cart          []cart.Line `json:"cart"`
}

// SubTotal mirrors the cart subtotal for the confirmation view.
func (o Order) SubTotal() decimal.Decimal {
	return cart.SubTotal(o.Cart)
}

func (o Order) clone() *Order {
	out := o
	out.Cart = make([]cart.Line, len(o.Cart))
	for i, l := range o.Cart {
		out.Cart[i] = l
		if l.Images != nil {
			out.Cart[i].Images = append([]string(nil), l.Images...)
		}
	}
	return &out
}

// newTransactionID renders the 122 random bits of a v4 UUID as uppercase hex.
func newTransactionID(id uuid.UUID) string {
	return strings.ToUpper(hex.EncodeToString(id[:]))
}
