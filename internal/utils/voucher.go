package utils

import "strings"

// NewVoucherCode returns BRAND-XXXXXXXX where BRAND is the upper-cased brand
// and XXXXXXXX is 4 random bytes as upper-case hex.
func NewVoucherCode(brand string) (string, error) {
	suffix, err := randomHex(4)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(brand)) + "-" + strings.ToUpper(suffix), nil
}
