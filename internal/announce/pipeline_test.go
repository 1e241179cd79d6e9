package announce

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cabincast/internal/audio"
	"cabincast/internal/cache"
	"cabincast/internal/config"
	"cabincast/internal/effects"
	"cabincast/internal/segment"
	"cabincast/internal/tts"
)

// fakeEngine produces short silent wavs and records every request. Voices
// listed in failVoices always fail.
type fakeEngine struct {
	name       string
	calls      int
	texts      []string
	failVoices map[string]bool
}

func (f *fakeEngine) Name() string                { return f.name }
func (f *fakeEngine) Available() bool             { return true }
func (f *fakeEngine) ValidateVoiceID(string) bool { return true }
func (f *fakeEngine) SupportsMarkup() bool        { return false }

func (f *fakeEngine) Limit() tts.SizeLimit {
	return tts.SizeLimit{Max: 4000, Size: segment.Runes}
}

func (f *fakeEngine) Synthesize(_ context.Context, req tts.Request) ([]byte, error) {
	f.calls++
	f.texts = append(f.texts, req.Text)
	if f.failVoices[req.VoiceID] {
		return nil, errors.New("scripted voice failure")
	}
	clip := audio.Silence(40*time.Millisecond, audio.Format(24000, 1))
	return clip.WAVBytes()
}

func testProfiles() config.AirlineProfiles {
	return config.AirlineProfiles{
		"THA": {
			Language:      "th",
			PriorityOrder: []string{"native", "english"},
			Voices: map[string]config.VoiceConfig{
				"native":  {Engine: "google", GoogleID: "th-TH-Standard-A", Gender: "female"},
				"english": {Engine: "google", GoogleID: "en-US-Chirp3-HD-Luna", Gender: "female"},
			},
		},
	}
}

func testPipeline(t *testing.T, eng *fakeEngine, effectsOn bool) *Pipeline {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Directory = t.TempDir()
	cfg.Cache.Directory = t.TempDir()
	cfg.Effects.Enabled = effectsOn

	orch := tts.NewOrchestrator([]tts.Engine{eng}, cfg.Engines, cfg.Fallback, cfg.Audio, nil)
	store := cache.New(cfg.Cache, nil)
	chain := effects.NewChain(cfg.Effects, nil)
	return NewPipeline(cfg, testProfiles(), orch, store, chain, nil)
}

func boardingTexts() map[string]string {
	return map[string]string{
		"en": "Good evening, ladies and gentlemen. Welcome aboard flight 200 to Bangkok.\n\nPlease review the safety card in the seat pocket in front of you.",
		"th": "สวัสดีค่ะ ยินดีต้อนรับสู่เที่ยวบิน 200\n\nกรุณาศึกษาข้อมูลความปลอดภัย",
	}
}

func TestGenerate_BoardingEndToEnd(t *testing.T) {
	eng := &fakeEngine{name: "google"}
	p := testPipeline(t, eng, true)

	res, err := p.Generate(context.Background(), Request{
		Context: "boarding",
		ICAO:    "THA",
		Texts:   boardingTexts(),
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !res.Success {
		t.Fatal("result not successful")
	}
	if len(res.VoiceTypes) != 2 || res.VoiceTypes[0] != "native" || res.VoiceTypes[1] != "english" {
		t.Fatalf("voice types %v, want [native english]", res.VoiceTypes)
	}
	if len(res.EffectsApplied) == 0 {
		t.Fatal("no effects applied")
	}
	if res.Duration <= 0 {
		t.Fatal("zero duration")
	}
	if _, err := os.Stat(res.FinalPath); err != nil {
		t.Fatalf("final wav missing: %v", err)
	}

	// Dynamic + static per voice type.
	if eng.calls != 4 {
		t.Fatalf("engine called %d times, want 4", eng.calls)
	}

	// Intermediates must be gone.
	entries, err := os.ReadDir(filepath.Join(p.cfg.Output.Directory, ".temp"))
	if err == nil && len(entries) != 0 {
		t.Fatalf("temp intermediates left behind: %v", entries)
	}
}

func TestGenerate_StaticPartCachedAcrossRuns(t *testing.T) {
	eng := &fakeEngine{name: "google"}
	p := testPipeline(t, eng, false)

	req := Request{Context: "boarding", ICAO: "THA", Texts: boardingTexts()}

	if _, err := p.Generate(context.Background(), req); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	firstRunCalls := eng.calls

	// The english static clip lands under the engine/language/voice/context path.
	want := filepath.Join(p.cfg.Cache.Directory, "google", "en", "en-US-Chirp3-HD-Luna", "boarding_static.wav")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("static clip not cached at %s: %v", want, err)
	}

	if _, err := p.Generate(context.Background(), req); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	// Second run synthesizes only the dynamic parts.
	secondRunCalls := eng.calls - firstRunCalls
	if secondRunCalls != 2 {
		t.Fatalf("second run made %d engine calls, want 2 (dynamic only)", secondRunCalls)
	}
}

func TestGenerate_VoiceFailureIsolated(t *testing.T) {
	eng := &fakeEngine{name: "google", failVoices: map[string]bool{"th-TH-Standard-A": true}}
	p := testPipeline(t, eng, false)

	res, err := p.Generate(context.Background(), Request{
		Context: "boarding",
		ICAO:    "THA",
		Texts:   boardingTexts(),
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(res.VoiceTypes) != 1 || res.VoiceTypes[0] != "english" {
		t.Fatalf("voice types %v, want [english]", res.VoiceTypes)
	}
}

func TestGenerate_AllVoicesFailingIsFatal(t *testing.T) {
	eng := &fakeEngine{name: "google", failVoices: map[string]bool{
		"th-TH-Standard-A":     true,
		"en-US-Chirp3-HD-Luna": true,
	}}
	p := testPipeline(t, eng, false)

	_, err := p.Generate(context.Background(), Request{
		Context: "boarding",
		ICAO:    "THA",
		Texts:   boardingTexts(),
	})
	if err == nil {
		t.Fatal("expected error when every voice type fails")
	}
}

func TestGenerate_UnknownAirline(t *testing.T) {
	p := testPipeline(t, &fakeEngine{name: "google"}, false)
	_, err := p.Generate(context.Background(), Request{Context: "boarding", ICAO: "ZZZ", Texts: boardingTexts()})
	if err == nil {
		t.Fatal("expected error for unknown airline")
	}
}

func TestSplitParts(t *testing.T) {
	cases := []struct {
		in            string
		dynamic, want string
	}{
		{"Dynamic only text.", "Dynamic only text.", ""},
		{"Dynamic part.\n\nStatic part.", "Dynamic part.", "Static part."},
		{"Dynamic.\n  \nStatic one.\n\nStatic two.", "Dynamic.", "Static one.\n\nStatic two."},
	}
	for _, c := range cases {
		dyn, static := splitParts(c.in)
		if dyn != c.dynamic || static != c.want {
			t.Errorf("splitParts(%q) = (%q, %q), want (%q, %q)", c.in, dyn, static, c.dynamic, c.want)
		}
	}
}

func TestResolveText(t *testing.T) {
	profile := testProfiles()["THA"]
	texts := map[string]string{"en": "english text", "th": "thai text", "pt": "portuguese text"}

	lang, text := resolveText("english", profile, Request{Texts: texts})
	if lang != "en" || text != "english text" {
		t.Errorf("english: (%q, %q)", lang, text)
	}
	lang, text = resolveText("native", profile, Request{Texts: texts})
	if lang != "th" || text != "thai text" {
		t.Errorf("native: (%q, %q)", lang, text)
	}
	lang, text = resolveText("destination", profile, Request{Texts: texts, DestinationLanguage: "pt"})
	if lang != "pt" || text != "portuguese text" {
		t.Errorf("destination: (%q, %q)", lang, text)
	}
	// Destination without a matching text falls back to English.
	lang, text = resolveText("destination", profile, Request{Texts: texts, DestinationLanguage: "ja"})
	if lang != "en" || text != "english text" {
		t.Errorf("destination fallback: (%q, %q)", lang, text)
	}
}
