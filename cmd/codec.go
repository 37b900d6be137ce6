// cmd/codec.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwtranslate/internal/codec"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [text...]",
	Short: "Encode text as Morse code",
	Long: `Encodes text as Morse code. Letters are separated by a space and words
by " / ". Characters without a Morse code are skipped. Reads stdin when no
text is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := inputText(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), codec.Encode(text))
		return err
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode [morse...]",
	Short: "Decode Morse code to text",
	Long: `Decodes Morse code written with '.', '-', a space between letters and
" / " between words. Unknown codes are dropped. Reads stdin when no code is
given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		morse, err := inputText(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), codec.Decode(morse))
		return err
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd, decodeCmd)
}
