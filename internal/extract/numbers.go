// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "strings"

// Word-numeral vocabulary for prose ratios like "one share for every two
// hundred and twenty shares".
var unitWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// ParseWordNumber parses a multi-word English numeral ("two hundred and
// twenty", "thirty-five", "seven") into its integer value. It accepts
// hyphens and the connective "and". Returns false when any token is not a
// number word or the phrase is empty.
func ParseWordNumber(phrase string) (int, bool) {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	phrase = strings.ReplaceAll(phrase, "-", " ")
	fields := strings.Fields(phrase)

	total := 0   // completed hundreds/thousands groups
	current := 0 // group under construction
	seen := false

	for _, word := range fields {
		switch {
		case word == "and":
			continue
		case word == "hundred":
			if current == 0 {
				current = 1
			}
			current *= 100
			seen = true
		case word == "thousand":
			if current == 0 {
				current = 1
			}
			total += current * 1000
			current = 0
			seen = true
		default:
			if v, ok := tensWords[word]; ok && current%100 == 0 {
				current += v
				seen = true
				continue
			}
			if v, ok := unitWords[word]; ok {
				current += v
				seen = true
				continue
			}
			return 0, false
		}
	}

	if !seen {
		return 0, false
	}
	return total + current, true
}

// wordNumberToken matches a run of number words, used to locate prose
// numerals inside ratio phrasing.
const wordNumberToken = `(?:(?:one|two|three|four|five|six|seven|eight|nine|ten|` +
	`eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|` +
	`twenty|thirty|forty|fifty|sixty|seventy|eighty|ninety|hundred|thousand|and)[\s-]*)+`
