package cmd

import (
	"bytes"
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
)

var oneCmd = &cobra.Command{
	Use:   "one message",
	Short: "Shows the diff of a single message round-trip",
	Args:  cobra.ExactArgs(1),
	RunE:  RunOne,
}

func init() {
	rootCmd.AddCommand(oneCmd)
}

func RunOne(cmd *cobra.Command, args []string) error {
	path := args[0]
	orig, out, err := roundTrip(path)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "path = %s\n", path)

	if bytes.Equal(orig, out) {
		fmt.Fprintln(w, "identical")
		return nil
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(orig), string(out))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	patches := dmp.PatchMake(string(orig), diffs)
	fmt.Fprint(w, dmp.PatchToText(patches))

	return nil
}
