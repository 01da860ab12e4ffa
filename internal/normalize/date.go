package normalize

import (
	"strconv"
	"strings"
	"unicode"
)

var monthAbbrev = map[string]int{
	"Jan": 1,
	"Feb": 2,
	"Mar": 3,
	"Apr": 4,
	"May": 5,
	"Jun": 6,
	"Jul": 7,
	"Aug": 8,
	"Sep": 9,
	"Oct": 10,
	"Nov": 11,
	"Dec": 12,
}

// ParseStatusDate extracts a YYYY/M/D date string from localized status text
// such as "Finished Aug 14, 2020" or "讀完 2020". The last token must be a
// four digit year; missing month or day default to 1. Returns "" when no
// year is present.
func ParseStatusDate(status string) string {
	// Drop CJK filler so "讀完 14 Aug, 2020" tokenizes like its English
	// counterpart.
	var b strings.Builder
	for _, r := range status {
		if unicode.Is(unicode.Han, r) {
			continue
		}
		b.WriteRune(r)
	}

	tokens := strings.FieldsFunc(b.String(), func(r rune) bool {
		return r == ',' || r == '，' || r == ' '
	})
	if len(tokens) == 0 {
		return ""
	}

	last := tokens[len(tokens)-1]
	if len(last) != 4 || !allDigits(last) {
		return ""
	}

	year := last
	month, day := 1, "1"

	if len(tokens) > 1 {
		temp := tokens[len(tokens)-2]
		if allDigits(temp) {
			day = temp
			if len(tokens) > 2 {
				temp = tokens[len(tokens)-3]
			}
		}
		if len(temp) >= 3 {
			if m, ok := monthAbbrev[temp[:3]]; ok {
				month = m
			}
		}
	}

	return year + "/" + strconv.Itoa(month) + "/" + day
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
