// Package main provides the entry point for the cabincast CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"cabincast/internal/announce"
	"cabincast/internal/audio"
	"cabincast/internal/cache"
	"cabincast/internal/config"
	"cabincast/internal/effects"
	"cabincast/internal/tts"
	"cabincast/internal/tts/engines"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile   string
	profilesFile string
	textsFile    string
	icao         string
	flightNumber string
	destination  string
	airlineName  string
	outputDir    string
	play         bool
	debug        bool

	rootCmd = &cobra.Command{
		Use:   "cabincast",
		Short: "Generate cabin announcements with synthesized voices and radio effects",
		Long: "cabincast turns announcement texts into finished cabin audio:\n" +
			"multi-voice speech synthesis with provider fallback, static-audio\n" +
			"caching, assembly with natural pauses and an aviation radio effect chain.",
		SilenceErrors: false,
		SilenceUsage:  true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if debug {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	boardingCmd = &cobra.Command{
		Use:   "boarding",
		Short: "Generate a boarding announcement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnnouncement(cmd.Context(), "boarding")
		},
	}

	arrivalCmd = &cobra.Command{
		Use:   "arrival",
		Short: "Generate an arrival announcement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnnouncement(cmd.Context(), "arrival")
		},
	}
)

func init() {
	for _, cmd := range []*cobra.Command{boardingCmd, arrivalCmd} {
		cmd.Flags().StringVar(&textsFile, "texts", "", "JSON file mapping language codes to announcement text (required)")
		cmd.Flags().StringVar(&icao, "icao", "", "airline ICAO code selecting the voice profile (required)")
		cmd.Flags().StringVar(&flightNumber, "flight", "", "flight number, used in the output filename")
		cmd.Flags().StringVar(&destination, "destination", "", "destination language code for the destination voice type")
		cmd.Flags().StringVar(&airlineName, "airline", "", "airline display name for logging")
		cmd.Flags().StringVar(&profilesFile, "profiles", "airline_profiles.json", "airline voice profile file")
		cmd.Flags().StringVar(&outputDir, "output", "", "output directory (overrides config)")
		cmd.Flags().BoolVar(&play, "play", false, "play the finished announcement")
		_ = cmd.MarkFlagRequired("texts")
		_ = cmd.MarkFlagRequired("icao")
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "pipeline configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(boardingCmd, arrivalCmd, configCmd)

	rootCmd.Version = Version
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[:7] + ")\n")
	}
}

func runAnnouncement(ctx context.Context, announceContext string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Debug("No .env file loaded", "error", err)
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.Output.Directory = outputDir
	}
	if flightNumber != "" {
		cfg.Output.Filename = fmt.Sprintf("%s_%s_%s.wav", announceContext, icao, flightNumber)
	}

	profiles, err := config.LoadAirlineProfiles(profilesFile)
	if err != nil {
		return err
	}
	texts, err := loadTexts(textsFile)
	if err != nil {
		return err
	}

	if airlineName != "" {
		log.Info("Generating announcement", "airline", airlineName, "icao", icao, "context", announceContext)
	} else {
		log.Info("Generating announcement", "icao", icao, "context", announceContext)
	}

	google, err := engines.NewGoogle(ctx, cfg.Engines.Google, cfg.Engines, creds, cfg.Audio.SampleRate, nil)
	if err != nil {
		return err
	}
	defer google.Close()
	elevenlabs := engines.NewElevenLabs(cfg.Engines.ElevenLabs, cfg.Engines, creds, cfg.Audio.SampleRate, nil)
	openai := engines.NewOpenAI(cfg.Engines.OpenAI, cfg.Engines, creds, nil)

	orch := tts.NewOrchestrator(
		[]tts.Engine{google, elevenlabs, openai},
		cfg.Engines, cfg.Fallback, cfg.Audio, nil)
	store := cache.New(cfg.Cache, nil)
	chain := effects.NewChain(cfg.Effects, nil)
	pipeline := announce.NewPipeline(cfg, profiles, orch, store, chain, nil)

	result, err := pipeline.Generate(ctx, announce.Request{
		Context:             announceContext,
		ICAO:                icao,
		Texts:               texts,
		DestinationLanguage: destination,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Announcement written to %s (%s, peak %.1f dBFS)\n",
		result.FinalPath, result.Duration.Round(time.Millisecond), result.PeakDB)

	if play {
		return playFile(result.FinalPath, cfg.Audio)
	}
	return nil
}

// loadTexts reads the language → text JSON file.
func loadTexts(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read texts %s: %w", path, err)
	}
	var texts map[string]string
	if err := json.Unmarshal(data, &texts); err != nil {
		return nil, fmt.Errorf("failed to parse texts %s: %w", path, err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts file %s is empty", path)
	}
	return texts, nil
}

// playFile plays the finished announcement through the default speaker.
func playFile(path string, audioCfg config.AudioConfig) error {
	format := audio.Format(audioCfg.SampleRate, audioCfg.Channels)
	clip, err := audio.LoadWAV(path, format)
	if err != nil {
		return err
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	defer speaker.Close()

	log.Info("Playing announcement", "path", filepath.Base(path), "duration", clip.Duration().Round(time.Millisecond))
	done := make(chan struct{})
	speaker.Play(beep.Seq(clip.Streamer(), beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
