package namegen

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	digitRe = regexp.MustCompile(`\d+`)
	// Tokens worth trying to read as roman numerals: IX, IV, or a run
	// of up to three Is optionally preceded by a V.
	romanCandidateRe = regexp.MustCompile(`(IX|IV|V?I{1,3})`)
	// Stricter form used when actually converting a word: a lone "I"
	// is almost always the pronoun or an initial, not the number one.
	romanConvertRe = regexp.MustCompile(`(IX|IV|V?I{2,3})`)
)

var romanValues = []struct {
	val int
	sym string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// IntToRoman converts a positive integer to its roman-numeral form
// using the standard subtractive pairs. Values below 1 return "".
func IntToRoman(n int) string {
	if n < 1 {
		return ""
	}
	var b strings.Builder
	for _, rv := range romanValues {
		for n >= rv.val {
			b.WriteString(rv.sym)
			n -= rv.val
		}
	}
	return b.String()
}

// wordToRoman converts a word to roman form when it is a plain
// positive integer, otherwise returns it unchanged.
func wordToRoman(word string) string {
	n, err := strconv.Atoi(word)
	if err != nil || n < 1 {
		return word
	}
	return IntToRoman(n)
}

// RomanToInt converts the leading roman numeral of a word back to its
// integer form. Only I, V and X are understood; conversion stops at
// the first other character and the remainder is kept verbatim, so
// malformed or suffixed tokens ("XIII:") degrade to a readable value
// ("13:") instead of failing. Words that do not look like a roman
// numeral are returned unchanged.
func RomanToInt(word string) string {
	if !romanConvertRe.MatchString(word) {
		return word
	}
	values := map[byte]int{'I': 1, 'V': 5, 'X': 10}
	total := 0
	i := 0
	for ; i < len(word); i++ {
		v, ok := values[word[i]]
		if !ok {
			break
		}
		if i > 0 {
			if prev := values[word[i-1]]; v > prev {
				// Subtractive pair: the previous symbol was already
				// added, take it back twice.
				total += v - 2*prev
				continue
			}
		}
		total += v
	}
	return strconv.Itoa(total) + word[i:]
}

// romanVariant converts every roman-looking word of a candidate to its
// integer form.
func romanVariant(candidate string) string {
	words := strings.Fields(candidate)
	for i, w := range words {
		words[i] = RomanToInt(w)
	}
	return strings.Join(words, " ")
}

// numericVariant converts every plain-integer word of a candidate to
// its roman form.
func numericVariant(candidate string) string {
	words := strings.Fields(candidate)
	for i, w := range words {
		words[i] = wordToRoman(w)
	}
	return strings.Join(words, " ")
}
