package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BDNK1/sflowg-marketplace/cli/internal/config"
	"github.com/BDNK1/sflowg-marketplace/plugins/marketplace"
	"github.com/BDNK1/sflowg-marketplace/runtime"
	"github.com/spf13/cobra"
)

var (
	callParams      []string
	callEnvironment string
	callBaseURL     string
	callFormat      string
	callSave        bool
)

var callCmd = &cobra.Command{
	Use:   "call <resource> <operation>",
	Short: "Call one marketplace operation",
	Long: `Call one marketplace operation through the combined aiMarketplace node.

Parameters are given as --param key=value. Values that parse as JSON (numbers,
booleans, arrays, objects) are passed typed, anything else as a string.`,
	Example: `  sflowg-marketplace call lots create --param title="Logo design" \
    --param description="Need a logo" --param category=design --param budget=250
  sflowg-marketplace call auth login --param email=me@example.com --param password=... --save`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resource, operation := args[0], args[1]
		if callSave && (resource != string(marketplace.ResourceAuth) || operation != string(marketplace.ActionLogin)) {
			return fmt.Errorf("--save is only supported for auth login")
		}

		params, err := parseKeyValues(callParams)
		if err != nil {
			return err
		}
		params["resource"] = resource
		params["operation"] = operation
		if callEnvironment != "" {
			params["environment"] = callEnvironment
		}
		if callBaseURL != "" {
			params["overrideBaseUrl"] = callBaseURL
		}
		if callFormat != "" {
			params["additionalFields"] = map[string]any{"responseFormat": callFormat}
		}

		ctx := cmd.Context()
		s, err := openSession(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		out, err := s.app.Run(ctx, runtime.ExecutionRequest{Node: "aiMarketplace", Parameters: params})
		if err != nil {
			return err
		}
		result := out[0][0].JSON

		if callSave {
			if err := saveLogin(s, result); err != nil {
				return err
			}
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	callCmd.Flags().StringArrayVar(&callParams, "param", nil, "operation parameter as key=value (repeatable)")
	callCmd.Flags().StringVar(&callEnvironment, "env", "", "environment: dev or prod")
	callCmd.Flags().StringVar(&callBaseURL, "base-url", "", "override the API base URL")
	callCmd.Flags().StringVar(&callFormat, "format", "", "response format: json or raw")
	callCmd.Flags().BoolVar(&callSave, "save", false, "store the login tokens in the config file")
}

// parseKeyValues turns key=value pairs into a parameter map.
func parseKeyValues(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", pair)
		}

		var typed any
		if err := json.Unmarshal([]byte(value), &typed); err == nil {
			params[key] = typed
		} else {
			params[key] = value
		}
	}
	return params, nil
}

func saveLogin(s *session, result map[string]any) error {
	tokens, err := marketplace.DecodeLoginTokens(result)
	if err != nil {
		return err
	}
	credentials := tokens.Credentials()

	path := s.cfg.Path
	if path == "" {
		path = config.DefaultFileName
	}

	record := map[string]any{"idToken": credentials.IDToken}
	if credentials.AccessToken != "" {
		record["accessToken"] = credentials.AccessToken
	}
	if credentials.RefreshToken != "" {
		record["refreshToken"] = credentials.RefreshToken
	}
	if err := config.SaveCredential(path, marketplace.CredentialTypeName, record); err != nil {
		return err
	}

	s.logger.Info("Saved marketplace credentials", "path", path, "expires_in", tokens.ExpiresIn)
	return nil
}
