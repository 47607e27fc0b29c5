package enums

import "fmt"

// PriceUnit describes what a product price is quoted against.
type PriceUnit string

const (
	PriceUnitPerPiece    PriceUnit = "per_piece"
	PriceUnitPerKilogram PriceUnit = "per_kilogram"
)

var validPriceUnits = []PriceUnit{
	PriceUnitPerPiece,
	PriceUnitPerKilogram,
}

// String implements fmt.Stringer.
func (u PriceUnit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known PriceUnit.
func (u PriceUnit) IsValid() bool {
	for _, candidate := range validPriceUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParsePriceUnit converts raw input into a PriceUnit. Empty input yields the
// per-piece default.
func ParsePriceUnit(value string) (PriceUnit, error) {
	if value == "" {
		return PriceUnitPerPiece, nil
	}
	for _, candidate := range validPriceUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price unit %q", value)
}
