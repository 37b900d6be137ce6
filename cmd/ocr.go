// cmd/ocr.go
package cmd

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ColonelBlimp/cwtranslate/internal/codec"
	"github.com/ColonelBlimp/cwtranslate/internal/ocr"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <image>",
	Short: "Read text or Morse from an image",
	Long: `Sends an image to the configured OCR service and prints the recognised
text. With --morse the text is treated as Morse code and decoded; with
--encode it is encoded as Morse.`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

// newOCREngine builds the engine used by the ocr command
var newOCREngine = func(cfg ocr.SpaceConfig) ocr.Engine {
	return ocr.NewSpaceClient(cfg, nil)
}

func init() {
	ocrCmd.Flags().BoolP("morse", "m", false, "decode the recognised Morse code")
	ocrCmd.Flags().BoolP("encode", "e", false, "encode the recognised text as Morse")
	ocrCmd.MarkFlagsMutuallyExclusive("morse", "encode")
	rootCmd.AddCommand(ocrCmd)
}

func runOCR(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	img := ocr.Image{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Data:        data,
	}
	text, err := newOCREngine(settings.OCRConfig()).Extract(cmd.Context(), img)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	logger.Debug("ocr text", zap.String("image", img.Name), zap.Int("chars", len(text)))

	asMorse, _ := cmd.Flags().GetBool("morse")
	encode, _ := cmd.Flags().GetBool("encode")
	switch {
	case asMorse:
		text = codec.Decode(strings.Join(strings.Fields(text), " "))
	case encode:
		text = codec.Encode(text)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
