package tts

import "testing"

func TestEffectiveLanguage(t *testing.T) {
	cases := []struct {
		name      string
		requested string
		voiceID   string
		force     bool
		want      string
	}{
		{"english never forced", "en", "pt-BR-Neural2-A", true, "en"},
		{"regional english never forced", "en-GB", "pt-BR-Neural2-A", true, "en-GB"},
		{"mapped voice wins when forcing", "en-US", "th-TH-Chirp3-HD-Laomedeia", true, "th-TH"},
		{"extracted from voice id", "fr-FR", "de-DE-Custom-Voice", true, "de-DE"},
		{"no forcing keeps request", "pt-BR", "th-TH-Standard-A", false, "pt-BR"},
		{"unparseable id keeps request", "pt-BR", "rachel", true, "pt-BR"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := EffectiveLanguage(c.requested, c.voiceID, c.force); got != c.want {
				t.Errorf("EffectiveLanguage(%q, %q, %v) = %q, want %q", c.requested, c.voiceID, c.force, got, c.want)
			}
		})
	}
}
