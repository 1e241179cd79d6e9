package segment

import (
	"strings"
	"testing"
)

// rejoin normalizes a text the way Split does, for round-trip comparison.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestSplit_WithinLimitUnsplit(t *testing.T) {
	text := "Welcome aboard flight two zero zero."
	pieces := Split(text, 800, Bytes)
	if len(pieces) != 1 || pieces[0] != text {
		t.Fatalf("expected single unsplit piece, got %v", pieces)
	}
}

func TestSplit_Empty(t *testing.T) {
	if pieces := Split("   \n\n  ", 100, Bytes); pieces != nil {
		t.Fatalf("expected nil for blank input, got %v", pieces)
	}
}

func TestSplit_ParagraphBoundaries(t *testing.T) {
	text := "Good evening ladies and gentlemen.\n\nPlease fasten your seatbelts.\n\nThank you for flying with us."
	pieces := Split(text, 40, Bytes)

	if len(pieces) < 2 {
		t.Fatalf("expected paragraph split, got %v", pieces)
	}
	for _, p := range pieces {
		if Bytes(p) > 40 {
			t.Errorf("piece exceeds limit: %q (%d bytes)", p, Bytes(p))
		}
	}
}

func TestSplit_SentenceBoundaries(t *testing.T) {
	text := "Welcome aboard. Please stow your luggage. Fasten your seatbelt. Enjoy the flight."
	pieces := Split(text, 45, Bytes)

	if len(pieces) < 2 {
		t.Fatalf("expected sentence split, got %v", pieces)
	}
	for _, p := range pieces {
		if !strings.HasSuffix(p, ".") {
			t.Errorf("sentence piece lost its terminator: %q", p)
		}
	}
}

func TestSplit_Properties(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		size  SizeFunc
	}{
		{
			name:  "multi paragraph announcement",
			text:  "Good evening, ladies and gentlemen. Welcome aboard flight two zero zero to Bangkok.\n\nPlease make sure your seatbelt is fastened and your seat back is upright.\nOur flight time today is five hours and thirty minutes.\n\nThank you for choosing us.",
			limit: 80,
			size:  Bytes,
		},
		{
			name:  "unbroken prose",
			text:  strings.Repeat("the quick brown fox jumps over the lazy dog ", 20),
			limit: 100,
			size:  Bytes,
		},
		{
			name:  "rune limited",
			text:  strings.Repeat("passenger announcement please remain seated ", 15),
			limit: 60,
			size:  Runes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pieces := Split(tt.text, tt.limit, tt.size)
			if len(pieces) == 0 {
				t.Fatal("no pieces returned")
			}

			// (a) concatenation returns the normalized input
			joined := normalize(strings.Join(pieces, " "))
			if joined != normalize(tt.text) {
				t.Errorf("round trip mismatch:\n got  %q\n want %q", joined, normalize(tt.text))
			}

			// (b) every piece within limit
			for _, p := range pieces {
				if tt.size(p) > tt.limit {
					t.Errorf("piece exceeds limit %d: %q", tt.limit, p)
				}
			}

			// (c) no piece begins or ends mid-word: every piece boundary
			// must align with a word from the original text.
			words := strings.Fields(tt.text)
			wordSet := make(map[string]bool, len(words))
			for _, w := range words {
				wordSet[w] = true
			}
			for _, p := range pieces {
				fields := strings.Fields(p)
				if len(fields) == 0 {
					t.Errorf("empty piece")
					continue
				}
				if !wordSet[fields[0]] || !wordSet[fields[len(fields)-1]] {
					t.Errorf("piece boundary splits a word: %q", p)
				}
			}
		})
	}
}

func TestSplit_LongAnnouncementAtProviderLimit(t *testing.T) {
	// A 2,000-character plain-text announcement against an 800-byte limit
	// must produce at least 3 segments, each within the limit.
	sentence := "Ladies and gentlemen please remain seated with your seatbelt fastened until the captain turns off the seatbelt sign. "
	text := strings.Repeat(sentence, 2000/len(sentence)+1)[:2000]

	pieces := Split(text, 800, Bytes)
	if len(pieces) < 3 {
		t.Fatalf("expected at least 3 segments, got %d", len(pieces))
	}
	for i, p := range pieces {
		if Bytes(p) > 800 {
			t.Errorf("segment %d exceeds 800 bytes: %d", i, Bytes(p))
		}
	}
}

func TestSplit_NeverBreaksOversizedWord(t *testing.T) {
	word := strings.Repeat("x", 50)
	pieces := Split("short "+word+" tail", 20, Bytes)

	found := false
	for _, p := range pieces {
		if p == word {
			found = true
		}
	}
	if !found {
		t.Fatalf("oversized word was broken apart: %v", pieces)
	}
}
