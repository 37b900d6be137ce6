// cmd/device.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ColonelBlimp/cwtranslate/internal/audio"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Record from a capture device and decode the clip",
	Long: `Records a fixed-length clip from the capture device and decodes it in
one pass once recording ends. Ctrl-C stops recording early.`,
	RunE: runListen,
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio devices",
	RunE:  runDevices,
}

func init() {
	listenCmd.Flags().IntP("seconds", "s", 10, "recording length in seconds")
	listenCmd.Flags().BoolP("text", "t", false, "also print the decoded text")
	listenCmd.Flags().BoolP("verbose", "v", false, "print timing unit, speed and tone")
	listenCmd.Flags().Float64P("center", "c", 550, "band-pass centre in Hz (0 detects the tone)")
	listenCmd.Flags().StringP("policy", "p", "minimum", "unit estimate: minimum, percentile or median_interval")
	rootCmd.AddCommand(listenCmd, devicesCmd)
}

func openDevice() (*audio.Device, error) {
	dev := audio.NewDevice(settings.DeviceConfig())
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	return dev, nil
}

func closeDevice(dev *audio.Device) {
	if err := dev.Close(); err != nil {
		logger.Warn("close audio device", zap.Error(err))
	}
}

func runListen(cmd *cobra.Command, _ []string) error {
	seconds, _ := cmd.Flags().GetInt("seconds")
	if seconds <= 0 {
		return fmt.Errorf("seconds must be positive, got %d", seconds)
	}

	dev, err := openDevice()
	if err != nil {
		return err
	}
	defer closeDevice(dev)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "recording %d s...\n", seconds)
	w, err := dev.Record(ctx, time.Duration(seconds)*time.Second)
	switch {
	case errors.Is(err, context.Canceled):
		return errors.New("recording interrupted")
	case err != nil:
		return fmt.Errorf("record: %w", err)
	}

	res, err := decodeWaveform(w)
	if err != nil {
		return err
	}
	return printResult(cmd, res)
}

func runDevices(cmd *cobra.Command, _ []string) error {
	dev, err := openDevice()
	if err != nil {
		return err
	}
	defer closeDevice(dev)

	out := cmd.OutOrStdout()
	for _, kind := range []struct {
		name string
		kind audio.DeviceKind
	}{{"Playback", audio.Playback}, {"Capture", audio.Capture}} {
		infos, err := dev.ListDevices(kind.kind)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s devices:\n", kind.name)
		for _, info := range infos {
			marker := " "
			if info.Default {
				marker = "*"
			}
			fmt.Fprintf(out, " %s %d: %s\n", marker, info.Index, info.Name)
		}
	}
	return nil
}
