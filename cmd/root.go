// cmd/root.go
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ColonelBlimp/cwtranslate/internal/config"
	"github.com/ColonelBlimp/cwtranslate/internal/logging"
)

var (
	settings *config.Settings
	logger   = zap.NewNop()
)

// flagKeys maps flag names to the config keys they override
var flagKeys = map[string]string{
	"device":     "device_index",
	"frequency":  "tone_frequency",
	"wpm":        "wpm",
	"debug":      "debug",
	"center":     "center_frequency",
	"policy":     "unit_policy",
	"farnsworth": "farnsworth_wpm",
}

var rootCmd = &cobra.Command{
	Use:   "cwtranslate",
	Short: "Translate between text, Morse code and CW audio",
	Long: `Decodes tone-keyed Morse (CW) recordings into text, encodes text as
Morse strings or keyed audio, and reads Morse from images through OCR.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags (override config file)
	rootCmd.PersistentFlags().IntP("device", "d", -1, "audio device index (-1 for default)")
	rootCmd.PersistentFlags().Float64P("frequency", "f", 600, "keyed tone frequency in Hz")
	rootCmd.PersistentFlags().IntP("wpm", "w", 15, "keying speed in words per minute")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "enable debug output")
}

// setup loads configuration, applies flag overrides and installs the logger.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.Init(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := bindFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	s, err := config.Get()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	l, err := logging.NewTo(cmd.ErrOrStderr(), s.LogLevel, s.Debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	zap.ReplaceGlobals(l)

	settings = s
	logger = l
	logger.Debug("configuration loaded", zap.String("file", viper.ConfigFileUsed()))
	return nil
}

// bindFlags binds every known flag present on the running command
func bindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// inputText joins args, or reads all of in when there are none
func inputText(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
