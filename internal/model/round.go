package model

import "strconv"

// Round rounds v to places decimals. The exact binary value is rounded and
// halfway cases go to the even digit, so 0.0625 becomes 0.062 and 3.125
// becomes 3.12.
func Round(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}
