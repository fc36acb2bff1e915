// Package cart prices a client-held cart against the catalog. Amounts are
// integer cents.
package cart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bloomery/backend/internal/catalog"
)

const (
	TaxPercent            = 8
	FreeShippingThreshold = 5000
	ShippingFee           = 899
	MaxQuantity           = 99
)

var (
	ErrUnknownBouquet  = errors.New("unknown bouquet")
	ErrQuantityTooHigh = fmt.Errorf("quantity must not exceed %d", MaxQuantity)
)

type Line struct {
	BouquetID string `json:"bouquet_id"`
	Quantity  int    `json:"quantity"`
}

type QuoteLine struct {
	BouquetID string `json:"bouquet_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price_cents"`
	LineTotal int64  `json:"line_total_cents"`
}

type Quote struct {
	Lines         []QuoteLine `json:"lines"`
	TotalQuantity int         `json:"total_quantity"`
	Subtotal      int64       `json:"subtotal_cents"`
	Tax           int64       `json:"tax_cents"`
	Shipping      int64       `json:"shipping_cents"`
	Total         int64       `json:"total_cents"`
	Currency      string      `json:"currency"`
}

// Price computes a quote. Lines with quantity <= 0 are dropped and repeated
// ids are merged in first-seen order. A merged quantity above MaxQuantity is
// rejected. An empty cart costs nothing.
func Price(lines []Line) (Quote, error) {
	quote := Quote{Lines: []QuoteLine{}, Currency: "USD"}
	positions := map[string]int{}

	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		id := strings.TrimSpace(line.BouquetID)
		bouquet, ok := catalog.ByID(id)
		if !ok {
			return Quote{}, fmt.Errorf("%w: %q", ErrUnknownBouquet, id)
		}
		unit, err := ParsePrice(bouquet.Price)
		if err != nil {
			return Quote{}, fmt.Errorf("bouquet %s: %w", id, err)
		}

		pos, seen := positions[id]
		existing := 0
		if seen {
			existing = quote.Lines[pos].Quantity
		}
		if line.Quantity > MaxQuantity-existing {
			return Quote{}, fmt.Errorf("%w: bouquet %s", ErrQuantityTooHigh, id)
		}
		if seen {
			quote.Lines[pos].Quantity += line.Quantity
		} else {
			positions[id] = len(quote.Lines)
			quote.Lines = append(quote.Lines, QuoteLine{
				BouquetID: id,
				Name:      bouquet.Name,
				Image:     bouquet.Image,
				Quantity:  line.Quantity,
				UnitPrice: unit,
			})
		}
	}

	for idx := range quote.Lines {
		item := &quote.Lines[idx]
		item.LineTotal = item.UnitPrice * int64(item.Quantity)
		quote.Subtotal += item.LineTotal
		quote.TotalQuantity += item.Quantity
	}

	if len(quote.Lines) == 0 {
		return quote, nil
	}

	quote.Tax, quote.Shipping = charges(quote.Subtotal)
	quote.Total = quote.Subtotal + quote.Tax + quote.Shipping
	return quote, nil
}

// charges returns tax rounded half up and the shipping fee, which is waived
// above FreeShippingThreshold.
func charges(subtotal int64) (tax, shipping int64) {
	tax = (subtotal*TaxPercent + 50) / 100
	if subtotal <= FreeShippingThreshold {
		shipping = ShippingFee
	}
	return tax, shipping
}

// ParsePrice turns a catalog price such as "$89.99" into cents.
func ParsePrice(value string) (int64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "$")
	whole, frac, hasFrac := strings.Cut(trimmed, ".")
	if whole == "" {
		return 0, fmt.Errorf("invalid price %q", value)
	}
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || dollars < 0 {
		return 0, fmt.Errorf("invalid price %q", value)
	}
	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("invalid price %q", value)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 {
			return 0, fmt.Errorf("invalid price %q", value)
		}
	}
	return dollars*100 + cents, nil
}

// FormatCents renders cents as "$12.34".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
