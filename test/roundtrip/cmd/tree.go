package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zostay/pantomime/message"
	"github.com/zostay/pantomime/message/walk"
)

var treeCmd = &cobra.Command{
	Use:   "tree message",
	Short: "Shows the part tree of a message",
	Args:  cobra.ExactArgs(1),
	RunE:  RunTree,
}

var attachmentsOnly bool

func init() {
	treeCmd.Flags().BoolVar(&attachmentsOnly, "attachments", false, "list only attachments by filename")
	rootCmd.AddCommand(treeCmd)
}

func RunTree(cmd *cobra.Command, args []string) error {
	src, m, err := load(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = src.Free() }()

	w := cmd.OutOrStdout()
	if !attachmentsOnly {
		return m.DumpTree(w)
	}

	return walk.AndProcessSingle(
		func(part *message.Part, parents []*message.Part) error {
			if !part.IsAttachment() {
				return nil
			}

			fn, _ := part.Header().GetFilename()
			fmt.Fprintf(w, "%s%s %s %s\n",
				strings.Repeat("  ", len(parents)),
				part.Path(), part.ContentType(), fn)
			return nil
		}, m.Part)
}
