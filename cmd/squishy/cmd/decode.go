package cmd

import (
	"fmt"
	"io"

	"github.com/bbkr/squishyid/pkg/codec"
	"github.com/spf13/cobra"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode [encoded...]",
	Short: "Decode squished IDs back into numbers",
	Long: `Decode strings made of key characters back into numbers.
One number is printed per line. Without arguments, values are read from
standard input, one per line.

Example:
  squishy decode 1FN7Ab`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCodec(cmd)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			args, err = readLines(cmd.InOrStdin())
			if err != nil {
				return err
			}
		}
		return runDecode(cmd.OutOrStdout(), c, args)
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

// runDecode stops at the first value that fails to decode and returns the
// codec error as is.
func runDecode(out io.Writer, c *codec.SquishyID, args []string) error {
	for _, arg := range args {
		n, err := c.Decode(arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)
	}
	return nil
}
