// Package amount переводит суммы между отображаемой десятичной записью (ether)
// и целыми базовыми единицами леджера (wei).
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Decimals — число знаков после запятой в отображаемой деноминации.
const Decimals = 18

// ErrInvalidAmount возвращается для нечисловых, отрицательных и некорректных сумм.
var ErrInvalidAmount = errors.New("invalid amount")

var unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

// OrZero заменяет пустую необязательную сумму на "0".
func OrZero(s string) string {
	if strings.TrimSpace(s) == "" {
		return "0"
	}
	return s
}

// ToBaseUnits разбирает десятичную строку ("0.5", "12", ".25") и возвращает сумму в базовых единицах.
func ToBaseUnits(s string) (*big.Int, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	whole, frac, _ := strings.Cut(raw, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if len(frac) > Decimals {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, s, Decimals)
	}

	if whole == "" {
		whole = "0"
	}
	// дополняем дробную часть нулями до 18 знаков и склеиваем в одно целое
	digits := whole + frac + strings.Repeat("0", Decimals-len(frac))
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}

// ToDisplayString форматирует сумму в базовых единицах как "1.0", "0.5", "0.000000000000000001".
func ToDisplayString(v *big.Int) string {
	if v == nil {
		return "0.0"
	}
	sign := ""
	abs := v
	if v.Sign() < 0 {
		sign = "-"
		abs = new(big.Int).Neg(v)
	}
	q, r := new(big.Int).QuoRem(abs, unit, new(big.Int))
	rs := r.String()
	frac := strings.TrimRight(strings.Repeat("0", Decimals-len(rs))+rs, "0")
	if frac == "" {
		frac = "0"
	}
	return sign + q.String() + "." + frac
}

func digitsOnly(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
