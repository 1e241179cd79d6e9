package tts

import "strings"

// englishBypass lists language codes for which the native voice already
// speaks the text well; forcing the voice's home language here would give
// English a foreign accent.
var englishBypass = map[string]bool{
	"en":    true,
	"en-US": true,
	"en-GB": true,
	"en-AU": true,
}

// voiceLanguages maps known voice ids to the language they are built for.
// Voices absent from the table fall back to extraction from the id itself.
var voiceLanguages = map[string]string{
	"th-TH-Chirp3-HD-Laomedeia": "th-TH",
	"th-TH-Standard-A":          "th-TH",
	"th-TH-Neural2-C":           "th-TH",

	"cmn-CN-Chirp3-HD-Leda": "cmn-CN",
	"zh-CN-Standard-A":      "zh-CN",
	"zh-CN-Neural2-A":       "zh-CN",
	"zh-TW-Standard-A":      "zh-TW",

	"ar-XA-Chirp3-HD-Achird": "ar-XA",
	"ar-XA-Standard-A":       "ar-XA",
	"ar-XA-Neural2-A":        "ar-XA",

	"pt-BR-Standard-A":          "pt-BR",
	"pt-BR-Neural2-A":           "pt-BR",
	"pt-BR-Chirp3-HD-Sigma":     "pt-BR",
	"pt-BR-Chirp3-HD-Laomedeia": "pt-BR",

	"fr-FR-Standard-A":      "fr-FR",
	"fr-FR-Neural2-A":       "fr-FR",
	"fr-FR-Chirp3-HD-Alpha": "fr-FR",

	"ko-KR-Standard-A":      "ko-KR",
	"ko-KR-Neural2-A":       "ko-KR",
	"ko-KR-Chirp3-HD-Aoede": "ko-KR",

	"tr-TR-Chirp3-HD-Achernar": "tr-TR",

	"en-US-Chirp3-HD-Luna":   "en-US",
	"en-GB-Chirp3-HD-Gacrux": "en-GB",
	"en-AU-Chirp-HD-O":       "en-AU",
}

// EffectiveLanguage decides which language code to send with a synthesis
// request. With forcing on, the voice's home language wins so the request
// never pairs a voice with a language it cannot speak. English requests are
// never forced; a native English voice beats an accented one.
func EffectiveLanguage(requested, voiceID string, force bool) string {
	if englishBypass[requested] {
		return requested
	}
	if !force {
		return requested
	}
	if lang, ok := voiceLanguages[voiceID]; ok {
		return lang
	}
	if lang := extractLanguage(voiceID); lang != "" {
		return lang
	}
	return requested
}

// extractLanguage pulls "ll-CC" from the front of a voice id such as
// "pt-BR-Neural2-A". Returns "" when the id has no such prefix.
func extractLanguage(voiceID string) string {
	parts := strings.Split(voiceID, "-")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	return parts[0] + "-" + parts[1]
}
