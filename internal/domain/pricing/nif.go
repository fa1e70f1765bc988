package pricing

import (
	"errors"
	"strings"
)

var ErrInvalidTaxID = errors.New("invalid tax id")

// NIFのmod-11チェック。任意項目なので空はOK
func ValidateNIF(taxID string) error {
	s := strings.TrimSpace(taxID)
	if s == "" {
		return nil
	}
	s = strings.TrimPrefix(strings.ToUpper(s), "PT")

	if len(s) != 9 {
		return ErrInvalidTaxID
	}
	digits := make([]int, 9)
	for i, r := range s {
		if r < '0' || r > '9' {
			return ErrInvalidTaxID
		}
		digits[i] = int(r - '0')
	}

	sum := 0
	for i := 0; i < 8; i++ {
		sum += digits[i] * (9 - i)
	}
	check := 0
	if rem := sum % 11; rem >= 2 {
		check = 11 - rem
	}
	if digits[8] != check {
		return ErrInvalidTaxID
	}
	return nil
}
