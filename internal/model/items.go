package model

import (
	"encoding/json"
	"strconv"

	"gorm.io/datatypes"
)

// ResolveQuantity computes the unit count an order moves through inventory.
// The items payload is client-controlled and has drifted over storefront
// versions: it may be a list of line items, a bare number, a numeric string,
// or garbage. Every order moves at least one unit, so any malformed input
// resolves to 1.
func ResolveQuantity(items datatypes.JSON) int {
	if len(items) == 0 {
		return 1
	}

	var raw any
	if err := json.Unmarshal(items, &raw); err != nil {
		return 1
	}

	switch v := raw.(type) {
	case []any:
		total := 0
		for _, entry := range v {
			total += lineQuantity(entry)
		}
		if total <= 0 {
			return 1
		}
		return total
	default:
		return scalarQuantity(raw)
	}
}

// lineQuantity reads one line item's quantity field, defaulting to 1 when the
// field is absent or non-numeric.
func lineQuantity(entry any) int {
	line, ok := entry.(map[string]any)
	if !ok {
		return 1
	}
	q, ok := line["quantity"]
	if !ok {
		return 1
	}
	if n := numeric(q); n > 0 {
		return n
	}
	return 1
}

// scalarQuantity coerces a bare items value to a count.
func scalarQuantity(v any) int {
	if n := numeric(v); n > 0 {
		return n
	}
	return 1
}

// numeric converts a decoded JSON value to an int, returning 0 when it is not
// a positive number.
func numeric(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return int(f)
	default:
		return 0
	}
}
