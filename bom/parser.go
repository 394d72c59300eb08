// Package bom extracts structured product line items from the free-text
// "product list" block operators keep inside a Trello card description.
package bom

import (
	"regexp"
	"strings"

	"github.com/pressroomhq/printops_backend/utils"
	"github.com/shopspring/decimal"
)

const (
	startMarker = "[products]"
	endMarker   = "[/products]"
)

// LineItem is one parsed product row: Qty units of ProductType in Size.
// Size is nil for products listed without one.
type LineItem struct {
	ProductType string          `json:"product_type"`
	Size        *string         `json:"size"`
	Qty         decimal.Decimal `json:"qty"`
}

// qtyLinePattern matches the "quantity, size" row shape. The size part is
// optional; anything that does not match is a product-type header.
var qtyLinePattern = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*(?:,\s*(.*?)\s*)?$`)

// separatorPattern is a run of dashes; it closes the current product group
// without starting a new one.
var separatorPattern = regexp.MustCompile(`^-{3,}$`)

// ParseProductList extracts the delimited product block from card text.
// The markers match case-insensitively and must sit on their own lines.
//
// Returns nil when the block is absent or unterminated: a card without a
// product list simply has nothing to deduct, it is not an error. Inside the
// block, a header line names a product type and subsequent "qty, size" lines
// attach to it. Rows with a non-positive quantity, and quantity rows that
// appear before any header, are dropped individually.
func ParseProductList(text string) []LineItem {
	lines := strings.Split(text, "\n")
	start, end := -1, -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if start < 0 {
			if strings.EqualFold(trimmed, startMarker) {
				start = i
			}
			continue
		}
		if strings.EqualFold(trimmed, endMarker) {
			end = i
			break
		}
	}
	if start < 0 || end < 0 {
		return nil
	}

	items := []LineItem{}
	currentHeader := ""
	for _, line := range lines[start+1 : end] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if separatorPattern.MatchString(line) {
			currentHeader = ""
			continue
		}
		m := qtyLinePattern.FindStringSubmatch(line)
		if m == nil {
			currentHeader = line
			continue
		}
		if currentHeader == "" {
			continue
		}
		qty, err := decimal.NewFromString(m[1])
		if err != nil || !qty.IsPositive() {
			continue
		}
		var size *string
		if s := utils.NormalizeSize(m[2]); s != "" {
			size = &s
		}
		items = append(items, LineItem{
			ProductType: currentHeader,
			Size:        size,
			Qty:         qty,
		})
	}
	return items
}
