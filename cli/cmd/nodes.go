package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes [name]",
	Short: "List node descriptions, or describe one node",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		if len(args) == 0 {
			return printJSON(cmd.OutOrStdout(), s.app.Container.Nodes())
		}

		node, ok := s.app.Container.Node(args[0])
		if !ok {
			return fmt.Errorf("unknown node: %s", args[0])
		}
		return printJSON(cmd.OutOrStdout(), node.Description())
	},
}
