// cmd/synth.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ColonelBlimp/cwtranslate/internal/audio"
	"github.com/ColonelBlimp/cwtranslate/internal/synth"
)

var synthCmd = &cobra.Command{
	Use:   "synth <out.wav> [text...]",
	Short: "Key text as CW audio into a WAV file",
	Long: `Encodes text as Morse and keys it as a tone into a 16-bit mono WAV file.
Speed, Farnsworth spacing and tone come from the configuration and flags.
Reads stdin when no text is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSynth,
}

var playCmd = &cobra.Command{
	Use:   "play [text...]",
	Short: "Key text as CW audio on an output device",
	RunE:  runPlay,
}

func init() {
	for _, c := range []*cobra.Command{synthCmd, playCmd} {
		c.Flags().Int("farnsworth", 0, "overall speed with stretched gaps (0 = off)")
	}
	rootCmd.AddCommand(synthCmd, playCmd)
}

// keyText turns text into a keyed waveform with the configured keyer
func keyText(text string) (audio.Waveform, error) {
	k, err := synth.NewKeyer(settings.KeyerConfig())
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("create keyer: %w", err)
	}
	w, err := k.KeyText(text)
	if err != nil {
		return audio.Waveform{}, err
	}
	logger.Debug("text keyed",
		zap.Int("unit_samples", k.UnitSamples()),
		zap.Duration("duration", w.Duration()))
	return w, nil
}

func runSynth(cmd *cobra.Command, args []string) error {
	path := args[0]
	text, err := inputText(args[1:], cmd.InOrStdin())
	if err != nil {
		return err
	}

	w, err := keyText(text)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := audio.WriteWAV(f, w); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%v at %d Hz)\n", path, w.Duration(), w.SampleRate)
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	text, err := inputText(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	w, err := keyText(text)
	if err != nil {
		return err
	}

	dev, err := openDevice()
	if err != nil {
		return err
	}
	defer closeDevice(dev)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := dev.Play(ctx, w); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}
