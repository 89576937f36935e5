package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/bbkr/squishyid/pkg/config"
	"github.com/spf13/cobra"
)

// keygenCmd represents the keygen command
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a random key",
	Long: `Generate a random permutation of a character set, usable as a key.

Examples:
  squishy keygen
  squishy keygen --charset emoji
  squishy keygen --chars "äąćęł"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		charset, _ := cmd.Flags().GetString("charset")
		chars, _ := cmd.Flags().GetString("chars")
		return runKeygen(cmd.OutOrStdout(), charset, chars)
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().String("charset", config.CharsetAlnum,
		"Character set to shuffle ("+strings.Join(config.Charsets(), ", ")+")")
	keygenCmd.Flags().String("chars", "", "Custom characters to shuffle, overrides --charset")
}

func runKeygen(out io.Writer, charset, chars string) error {
	var key string
	var err error
	if chars != "" {
		key, err = config.ShuffleKey(chars)
	} else {
		key, err = config.GenerateKey(charset)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, key)
	return nil
}
