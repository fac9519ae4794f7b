package service

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCardValue converts a free-text card value ("$1,200") into a number by
// stripping "$" and "," separators. The policy is deliberately lenient:
// unparsable or negative input counts as zero so that one badly entered card
// never breaks collection aggregation.
func ParseCardValue(value string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(value)
	n, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// FormatTotalValue renders an aggregate amount for display: values of 1000
// and above as "$X.Xk" with one decimal place, smaller values as the plain
// number with no trailing zeros.
func FormatTotalValue(total float64) string {
	if total >= 1000 {
		return fmt.Sprintf("$%.1fk", total/1000)
	}
	return "$" + strconv.FormatFloat(total, 'f', -1, 64)
}
