package cart

import (
	"encoding/json"

	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

// Line is one product entry in the cart. Field names match the persisted
// items JSON.
type Line struct {
	ID                  int             `json:"id"`
	Title               string          `json:"title"`
	SKU                 string          `json:"sku"`
	Price               decimal.Decimal `json:"price"`
	Qty                 int             `json:"qty"`
	Stock               int             `json:"stock"`
	Thumbnail           string          `json:"thumbnail"`
	Brand               string          `json:"brand"`
	Description         string          `json:"description"`
	Images              []string        `json:"images"`
	ReturnPolicy        string          `json:"returnPolicy"`
	WarrantyInformation string          `json:"warrantyInformation"`
}

// MarshalJSON writes price as a JSON number, the shape persisted items have
// always used. Decoding accepts numbers and quoted strings alike.
func (l Line) MarshalJSON() ([]byte, error) {
	type plain Line
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain: plain(l), Price: json.Number(l.Price.String())})
}

// FromProduct copies a catalog product's display attributes. Qty is left at
// zero for AddOrMerge to set.
func FromProduct(p catalog.Product) Line {
	return Line{
		ID:                  p.ID,
		Title:               p.Title,
		SKU:                 p.SKU,
		Price:               p.Price,
		Stock:               p.Stock,
		Thumbnail:           p.Thumbnail,
		Brand:               p.Brand,
		Description:         p.Description,
		Images:              append([]string(nil), p.Images...),
		ReturnPolicy:        p.ReturnPolicy,
		WarrantyInformation: p.WarrantyInformation,
	}
}

// LineTotal is price times quantity, unrounded.
func (l Line) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// ExceedsStock reports a quantity above the advertised stock. The cart does
// not enforce it.
func (l Line) ExceedsStock() bool {
	return l.Qty > l.Stock
}

func (l Line) clone() Line {
	out := l
	if l.Images != nil {
		out.Images = append([]string(nil), l.Images...)
	}
	return out
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = l.clone()
	}
	return out
}

// SubTotal sums line totals and rounds half away from zero to cents.
func SubTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total.Round(2)
}
