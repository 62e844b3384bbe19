package models

import "fmt"

// Cents is a monetary amount in integer minor units of the single
// operating currency. All engine arithmetic happens on this type;
// floats never carry money.
type Cents int64

// SubFloor subtracts d and saturates at zero instead of going negative.
func (c Cents) SubFloor(d Cents) Cents {
	if d >= c {
		return 0
	}
	return c - d
}

// ClampMax caps the amount at max.
func (c Cents) ClampMax(max Cents) Cents {
	if c > max {
		return max
	}
	return c
}

func (c Cents) String() string {
	return fmt.Sprintf("%d.%02d", c/100, abs64(int64(c))%100)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// MinCents returns the smaller of two amounts.
func MinCents(a, b Cents) Cents {
	if a < b {
		return a
	}
	return b
}
