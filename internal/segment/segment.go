// Package segment splits announcement text into pieces that fit a synthesis
// provider's request size limit without ever breaking a word.
package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// SizeFunc measures text the way a provider limits it.
type SizeFunc func(string) int

// Bytes measures UTF-8 byte length (Google limits requests by bytes).
func Bytes(s string) int { return len(s) }

// Runes measures character count (ElevenLabs and OpenAI limit by characters).
func Runes(s string) int { return utf8.RuneCountInString(s) }

var (
	paragraphRe = regexp.MustCompile(`\n[ \t]*\n`)
	sentenceRe  = regexp.MustCompile(`[^.!?]+[.!?]+["')\]]*|[^.!?]+$`)
)

// Split breaks text into ordered pieces, each within limit as measured by
// size. Boundaries are preferred in order: blank-line paragraphs, single
// newlines, sentence-ending punctuation, whitespace-delimited words. Pieces
// at each level are greedily packed first-fit until one more unit would
// overflow. A single word longer than the limit is emitted as its own piece
// rather than broken apart.
func Split(text string, limit int, size SizeFunc) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size(text) <= limit {
		return []string{text}
	}

	// Paragraphs, then single lines. Each level is accepted only when every
	// unit fits on its own.
	for _, units := range [][]string{
		splitNonEmpty(paragraphRe.Split(text, -1)),
		splitNonEmpty(strings.Split(text, "\n")),
	} {
		if len(units) > 1 && allFit(units, limit, size) {
			return pack(units, " ", limit, size)
		}
	}

	// Sentences; any over-long sentence recurses into word packing.
	sentences := splitSentences(text)
	if len(sentences) > 1 {
		var units []string
		for _, s := range sentences {
			if size(s) <= limit {
				units = append(units, s)
			} else {
				units = append(units, packWords(s, limit, size)...)
			}
		}
		return pack(units, " ", limit, size)
	}

	return packWords(text, limit, size)
}

func splitNonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func allFit(units []string, limit int, size SizeFunc) bool {
	for _, u := range units {
		if size(u) > limit {
			return false
		}
	}
	return true
}

// splitSentences cuts on terminal punctuation, keeping the terminator with
// its sentence.
func splitSentences(text string) []string {
	flat := strings.Join(strings.Fields(text), " ")
	return splitNonEmpty(sentenceRe.FindAllString(flat, -1))
}

// pack merges adjacent units first-fit: units are appended to the current
// piece until one more would overflow, then a new piece starts.
func pack(units []string, sep string, limit int, size SizeFunc) []string {
	var pieces []string
	current := ""
	for _, u := range units {
		if current == "" {
			current = u
			continue
		}
		joined := current + sep + u
		if size(joined) <= limit {
			current = joined
		} else {
			pieces = append(pieces, current)
			current = u
		}
	}
	if current != "" {
		pieces = append(pieces, current)
	}
	return pieces
}

func packWords(text string, limit int, size SizeFunc) []string {
	return pack(strings.Fields(text), " ", limit, size)
}
