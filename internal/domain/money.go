package domain

import "fmt"

// Money is a currency amount in minor units (kobo). All settlement math is
// integer math; floats only appear at the percentage boundary and are rounded
// half-up back to a minor unit immediately.
type Money int64

func (m Money) Add(other Money) Money { return m + other }

func (m Money) Sub(other Money) Money { return m - other }

// Percent returns rate% of m, rounded half-up to the nearest minor unit.
func (m Money) Percent(rate float64) Money {
	raw := float64(m) * rate / 100.0
	if raw >= 0 {
		return Money(raw + 0.5)
	}
	return Money(raw - 0.5)
}

func (m Money) IsNegative() bool { return m < 0 }

func (m Money) Cmp(other Money) int {
	switch {
	case m < other:
		return -1
	case m > other:
		return 1
	default:
		return 0
	}
}

// String renders the amount in major units, e.g. 150050 -> "1500.50".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
