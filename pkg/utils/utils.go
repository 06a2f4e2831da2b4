package utils

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	addressHead = 12
	addressTail = 8
)

// TruncateAddress keeps the first 12 and last 8 characters of an address.
// Addresses too short to lose anything are returned unchanged.
func TruncateAddress(addr string) string {
	r := []rune(addr)
	if len(r) <= addressHead+addressTail {
		return addr
	}
	return string(r[:addressHead]) + "..." + string(r[len(r)-addressTail:])
}

func AddCommas(s string) string {
	if len(s) == 0 {
		return s
	}
	parts := strings.Split(s, ".")
	integerPart := parts[0]
	sign := ""
	if strings.HasPrefix(integerPart, "-") {
		sign = "-"
		integerPart = integerPart[1:]
	}

	n := len(integerPart)
	if n <= 3 {
		return s
	}

	var result strings.Builder
	result.WriteString(sign)
	remainder := n % 3
	if remainder > 0 {
		result.WriteString(integerPart[:remainder])
		result.WriteString(",")
	}
	for i := remainder; i < n; i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(integerPart[i : i+3])
	}

	if len(parts) > 1 {
		result.WriteString(".")
		result.WriteString(parts[1])
	}
	return result.String()
}

// ToFixed renders f with the given number of decimals using the rounding of
// JavaScript's Number.prototype.toFixed: the exact binary value is rounded
// half away from zero, so ToFixed(1.25, 1) is "1.3" where %.1f gives "1.2".
func ToFixed(f float64, places int32) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return exactDecimal(f).StringFixed(places)
}

// exactDecimal converts f to the decimal it represents exactly.
func exactDecimal(f float64) decimal.Decimal {
	frac, exp := math.Frexp(f)
	mant := new(big.Int).SetInt64(int64(frac * (1 << 53)))
	exp -= 53
	if exp >= 0 {
		return decimal.NewFromBigInt(mant.Lsh(mant, uint(exp)), 0)
	}
	five := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(-exp)), nil)
	return decimal.NewFromBigInt(mant.Mul(mant, five), int32(exp))
}

// FormatLargeNumber abbreviates a USD value: $1.3B, $45.0M, $2.5K, $999.00.
func FormatLargeNumber(n float64) string {
	switch {
	case n >= 1e9:
		return "$" + ToFixed(n/1e9, 1) + "B"
	case n >= 1e6:
		return "$" + ToFixed(n/1e6, 1) + "M"
	case n >= 1e3:
		return "$" + ToFixed(n/1e3, 1) + "K"
	}
	return "$" + ToFixed(n, 2)
}

// FormatAmount abbreviates a token amount. Millions keep two decimals and
// thousands one, and there is no currency symbol or billions tier.
func FormatAmount(n float64) string {
	switch {
	case n >= 1e6:
		return ToFixed(n/1e6, 2) + "M"
	case n >= 1e3:
		return ToFixed(n/1e3, 1) + "K"
	}
	return ToFixed(n, 2)
}

// FormatPrice renders a USD price with two decimals and no grouping.
func FormatPrice(p float64) string {
	return "$" + ToFixed(p, 2)
}

func FormatRank(rank int) string {
	return "#" + strconv.Itoa(rank)
}

func FormatCount(n int) string {
	return AddCommas(strconv.Itoa(n))
}
