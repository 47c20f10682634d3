package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/BDNK1/sflowg-marketplace/runtime"
	"github.com/spf13/cobra"
)

var (
	runParams         string
	runParamsFile     string
	runItems          string
	runContinueOnFail bool
)

var runCmd = &cobra.Command{
	Use:   "run <node>",
	Short: "Execute a node with JSON parameters and input items",
	Example: `  sflowg-marketplace run aiMarketplaceLots \
    --params '{"operation":"get","lotId":"={{ json.id }}"}' \
    --items '[{"json":{"id":"lot_1"}},{"json":{"id":"lot_2"}}]'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := runtime.ExecutionRequest{
			Node:           args[0],
			ContinueOnFail: runContinueOnFail,
		}

		params, err := readParams(runParams, runParamsFile)
		if err != nil {
			return err
		}
		req.Parameters = params

		if runItems != "" {
			if err := json.Unmarshal([]byte(runItems), &req.Items); err != nil {
				return fmt.Errorf("invalid --items: %w", err)
			}
		}

		ctx := cmd.Context()
		s, err := openSession(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		out, err := s.app.Run(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runParams, "params", "p", "", "node parameters as a JSON object")
	runCmd.Flags().StringVar(&runParamsFile, "params-file", "", "read node parameters from a JSON file")
	runCmd.Flags().StringVarP(&runItems, "items", "i", "", `input items as a JSON array of {"json": {...}}`)
	runCmd.Flags().BoolVar(&runContinueOnFail, "continue-on-fail", false, "turn item failures into error items")
	runCmd.MarkFlagsMutuallyExclusive("params", "params-file")
}

func readParams(inline, file string) (map[string]any, error) {
	data := []byte(inline)
	if file != "" {
		var err error
		if data, err = os.ReadFile(file); err != nil {
			return nil, err
		}
	}
	if len(data) == 0 {
		return map[string]any{}, nil
	}

	params := map[string]any{}
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	return params, nil
}
