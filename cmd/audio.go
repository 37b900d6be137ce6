// cmd/audio.go
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ColonelBlimp/cwtranslate/internal/audio"
	"github.com/ColonelBlimp/cwtranslate/internal/codec"
	"github.com/ColonelBlimp/cwtranslate/internal/cw"
)

var audioCmd = &cobra.Command{
	Use:   "audio <file.wav>",
	Short: "Decode a CW recording",
	Long: `Decodes a tone-keyed Morse recording from an integer PCM WAV file and
prints the Morse string. The whole file is processed in one pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runAudio,
}

func init() {
	audioCmd.Flags().BoolP("text", "t", false, "also print the decoded text")
	audioCmd.Flags().BoolP("verbose", "v", false, "print timing unit, speed and tone")
	audioCmd.Flags().Float64P("center", "c", 550, "band-pass centre in Hz (0 detects the tone)")
	audioCmd.Flags().StringP("policy", "p", "minimum", "unit estimate: minimum, percentile or median_interval")
	rootCmd.AddCommand(audioCmd)
}

func runAudio(cmd *cobra.Command, args []string) error {
	mode, err := settings.DownmixMode()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	w, err := audio.ReadWAV(f, mode)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	logger.Debug("wav loaded",
		zap.String("file", args[0]),
		zap.Int("sample_rate", w.SampleRate),
		zap.Duration("duration", w.Duration()))

	res, err := decodeWaveform(w)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return printResult(cmd, res)
}

// decodeWaveform runs w through a decoder built from the current settings
func decodeWaveform(w audio.Waveform) (*cw.Result, error) {
	cfg, err := settings.DecoderConfig()
	if err != nil {
		return nil, err
	}
	dec, err := cw.NewDecoder(cfg, cw.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	return dec.Decode(w)
}

func printResult(cmd *cobra.Command, res *cw.Result) error {
	out := cmd.OutOrStdout()
	showText, _ := cmd.Flags().GetBool("text")
	verbose, _ := cmd.Flags().GetBool("verbose")

	fmt.Fprintln(out, res.Morse)
	if showText {
		fmt.Fprintln(out, codec.Decode(res.Morse))
	}
	if verbose {
		fmt.Fprintf(out, "unit: %.1f samples (%v)  speed: %.1f WPM  tone: %.0f Hz\n",
			res.Unit, res.UnitDuration.Round(100*time.Microsecond), res.WPM, res.ToneFrequency)
	}
	return nil
}
