// Package isbn implements the ISBN-10 <-> ISBN-13 checksum transform used to
// pair the two identifiers of an edition.
package isbn

import (
	"errors"
	"strings"
)

var (
	// ErrInvalid is returned for inputs that are not a well-formed ISBN.
	ErrInvalid = errors.New("invalid ISBN")
	// ErrNotConvertible is returned for ISBN-13s outside the 978 prefix,
	// which have no ISBN-10 counterpart.
	ErrNotConvertible = errors.New("ISBN not convertible")
)

// Convert derives the counterpart of an ISBN: 10 digits in gives the 13-digit
// form, 13 digits in gives the 10-digit form. The input checksum is verified
// first; a bad checksum is an error, never silently repaired.
func Convert(s string) (string, error) {
	switch len(s) {
	case 10:
		if !Valid10(s) {
			return "", ErrInvalid
		}
		body := "978" + s[:9]
		return body + checkDigit13(body), nil
	case 13:
		if !Valid13(s) {
			return "", ErrInvalid
		}
		if !strings.HasPrefix(s, "978") {
			return "", ErrNotConvertible
		}
		body := s[3:12]
		return body + checkDigit10(body), nil
	default:
		return "", ErrInvalid
	}
}

// Valid10 reports whether s is a well-formed ISBN-10 (checksum included).
func Valid10(s string) bool {
	if len(s) != 10 {
		return false
	}
	sum := 0
	for i, r := range s {
		v := 0
		switch {
		case r >= '0' && r <= '9':
			v = int(r - '0')
		case (r == 'X' || r == 'x') && i == 9:
			v = 10
		default:
			return false
		}
		sum += (10 - i) * v
	}
	return sum%11 == 0
}

// Valid13 reports whether s is a well-formed ISBN-13 (checksum included).
func Valid13(s string) bool {
	if len(s) != 13 {
		return false
	}
	sum := 0
	for i, r := range s {
		if r < '0' || r > '9' {
			return false
		}
		v := int(r - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return sum%10 == 0
}

// checkDigit10 computes the final digit for a 9-digit ISBN-10 body.
func checkDigit10(body string) string {
	sum := 0
	for i, r := range body {
		sum += (10 - i) * int(r-'0')
	}
	d := (11 - sum%11) % 11
	if d == 10 {
		return "X"
	}
	return string(rune('0' + d))
}

// checkDigit13 computes the final digit for a 12-digit ISBN-13 body.
func checkDigit13(body string) string {
	sum := 0
	for i, r := range body {
		v := int(r - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	d := (10 - sum%10) % 10
	return string(rune('0' + d))
}
