package tts

import (
	"fmt"
	"regexp"
	"strings"
)

var flightNumberRe = regexp.MustCompile(`(?i)\bflight\s+(\d+)`)

var digitWords = map[rune]string{
	'0': "zero", '1': "one", '2': "two", '3': "three", '4': "four",
	'5': "five", '6': "six", '7': "seven", '8': "eight", '9': "nine",
}

// pronunciationFixes respells place names that synthesis voices commonly
// mangle. Matching is case-insensitive.
var pronunciationFixes = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)Bangkok`), "Bang-kok"},
	{regexp.MustCompile(`(?i)Dubai`), "Doo-bye"},
	{regexp.MustCompile(`(?i)Qatar`), "Ka-tar"},
}

// ExpandFlightNumbers turns "flight 200" into "flight two zero zero" so the
// voice reads the digits individually instead of as a cardinal.
func ExpandFlightNumbers(text string) string {
	return flightNumberRe.ReplaceAllStringFunc(text, func(match string) string {
		sub := flightNumberRe.FindStringSubmatch(match)
		digits := sub[1]
		words := make([]string, 0, len(digits))
		for _, d := range digits {
			words = append(words, digitWords[d])
		}
		return "flight " + strings.Join(words, " ")
	})
}

// FixPronunciation applies the respelling table.
func FixPronunciation(text string) string {
	for _, fix := range pronunciationFixes {
		text = fix.re.ReplaceAllString(text, fix.replacement)
	}
	return text
}

// PrepareSpokenText runs both normalizations in order.
func PrepareSpokenText(text string) string {
	return FixPronunciation(ExpandFlightNumbers(text))
}

// WrapSSML puts the text inside a minimal speak/prosody envelope carrying the
// speaking rate. Text already wrapped passes through unchanged.
func WrapSSML(text string, rate float64) string {
	if strings.HasPrefix(strings.TrimSpace(text), "<speak>") {
		return text
	}
	return fmt.Sprintf(`<speak><prosody rate="%g">%s</prosody></speak>`, rate, text)
}
