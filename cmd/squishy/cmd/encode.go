package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bbkr/squishyid/pkg/codec"
	"github.com/spf13/cobra"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode [number...]",
	Short: "Encode numbers into squished IDs",
	Long: `Encode unsigned 64-bit integers using the characters of the key.
One encoded value is printed per line. Without arguments, numbers are read
from standard input, one per line.

Example:
  squishy encode 48888851145
  seq 1 10 | squishy encode`,
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
		return runEncode(cmd.OutOrStdout(), c, args)
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(out io.Writer, c *codec.SquishyID, args []string) error {
	for _, arg := range args {
		n, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: must be an unsigned 64-bit integer", arg)
		}
		fmt.Fprintln(out, c.Encode(n))
	}
	return nil
}

// readLines returns the non-blank lines of r, trimmed
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}
