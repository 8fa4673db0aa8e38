package titles

import (
	"strconv"
	"strings"
)

// Cardinal words and digits are interchangeable in release titles
// ("Fantastic Four" for "Fantastic 4"). Conversion covers one through
// twelve, which spans every mainstream sequel numbering in practice.
var wordToDigit = map[string]string{
	"one":    "1",
	"two":    "2",
	"three":  "3",
	"four":   "4",
	"five":   "5",
	"six":    "6",
	"seven":  "7",
	"eight":  "8",
	"nine":   "9",
	"ten":    "10",
	"eleven": "11",
	"twelve": "12",
}

var digitToWord = func() map[string]string {
	m := make(map[string]string, len(wordToDigit))
	for word, digit := range wordToDigit {
		m[digit] = word
	}
	return m
}()

// romanNumerals maps the numerals used as sequel markers, I through X.
var romanNumerals = map[string]int{
	"I":    1,
	"II":   2,
	"III":  3,
	"IV":   4,
	"V":    5,
	"VI":   6,
	"VII":  7,
	"VIII": 8,
	"IX":   9,
	"X":    10,
}

var digitToRoman = func() map[string]string {
	m := make(map[string]string, len(romanNumerals))
	for numeral, value := range romanNumerals {
		m[strconv.Itoa(value)] = numeral
	}
	return m
}()

func romanValue(token string) (int, bool) {
	value, ok := romanNumerals[token]
	return value, ok
}

// WordsToDigits replaces cardinal number words with digits in a normalized
// title, token by token.
func WordsToDigits(normalized string) string {
	return mapTokens(normalized, wordToDigit)
}

// DigitsToWords replaces digit tokens with their cardinal words in a
// normalized title.
func DigitsToWords(normalized string) string {
	return mapTokens(normalized, digitToWord)
}

// RomanToDigits replaces Roman numeral tokens (I through X) with digits.
// The input is expected to be a normalized title, so numerals arrive
// lowercased.
func RomanToDigits(normalized string) string {
	fields := strings.Fields(normalized)
	changed := false
	for i, field := range fields {
		if value, ok := romanValue(strings.ToUpper(field)); ok {
			fields[i] = strconv.Itoa(value)
			changed = true
		}
	}
	if !changed {
		return normalized
	}
	return strings.Join(fields, " ")
}

// DigitsToRoman replaces digit tokens 1 through 10 with lowercase Roman
// numerals.
func DigitsToRoman(normalized string) string {
	fields := strings.Fields(normalized)
	changed := false
	for i, field := range fields {
		if numeral, ok := digitToRoman[field]; ok {
			fields[i] = strings.ToLower(numeral)
			changed = true
		}
	}
	if !changed {
		return normalized
	}
	return strings.Join(fields, " ")
}

func mapTokens(s string, table map[string]string) string {
	fields := strings.Fields(s)
	changed := false
	for i, field := range fields {
		if repl, ok := table[field]; ok {
			fields[i] = repl
			changed = true
		}
	}
	if !changed {
		return s
	}
	return strings.Join(fields, " ")
}
