package engine

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"observatory/core/aggregate"
)

// Value is a layer value for one region: a number for sequential and marker
// layers, a category label for categorical layers.
type Value struct {
	number      decimal.Decimal
	category    string
	categorical bool
}

// Number builds a numeric value
func Number(d decimal.Decimal) Value { return Value{number: d} }

// Count builds a numeric value from a count
func Count(n int) Value { return Value{number: decimal.NewFromInt(int64(n))} }

// Category builds a categorical value
func Category(s string) Value { return Value{category: s, categorical: true} }

// IsCategory reports whether v is a category label
func (v Value) IsCategory() bool { return v.categorical }

// Decimal returns the numeric value; zero for categories
func (v Value) Decimal() decimal.Decimal { return v.number }

// Label returns the category label; empty for numbers
func (v Value) Label() string { return v.category }

func (v Value) String() string {
	if v.categorical {
		return v.category
	}
	return v.number.String()
}

// MarshalJSON renders numbers as JSON numbers and categories as strings
func (v Value) MarshalJSON() ([]byte, error) {
	if v.categorical {
		return json.Marshal(v.category)
	}
	return []byte(v.number.String()), nil
}

// zeroValue is the value of a region with no data on layer key
func zeroValue(categorical bool) Value {
	if categorical {
		return Category(aggregate.None)
	}
	return Count(0)
}
