package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// EnvVarSpec is a parsed config value that may reference an environment
// variable.
type EnvVarSpec struct {
	// VarName is the environment variable name (e.g., "MARKETPLACE_ID_TOKEN")
	VarName string

	HasDefault   bool
	DefaultValue string

	// IsLiteral is set for plain values that reference no variable
	IsLiteral    bool
	LiteralValue string
}

// LookupFunc returns the value of an environment variable. os.LookupEnv is
// the default.
type LookupFunc func(name string) (string, bool)

// envVarPattern matches ${VAR} and ${VAR:default} spanning the whole value
var envVarPattern = regexp.MustCompile(`^\$\{([A-Z_][A-Z0-9_]*)(:[^}]*)?\}$`)

// ParseEnvVar parses a config value that may contain environment variable syntax
//
// Supported formats:
//   - ${VAR}         - Required environment variable
//   - ${VAR:default} - Optional environment variable with default
//   - literal        - Plain literal value (no env var)
//
// Examples:
//
//	ParseEnvVar("${MARKETPLACE_ID_TOKEN}") -> required env var
//	ParseEnvVar("${MARKETPLACE_ENV:dev}")  -> env var with default "dev"
//	ParseEnvVar("https://api.example.com") -> literal value
func ParseEnvVar(value string) (*EnvVarSpec, error) {
	matches := envVarPattern.FindStringSubmatch(value)
	if matches == nil {
		return &EnvVarSpec{IsLiteral: true, LiteralValue: value}, nil
	}

	varName := matches[1]
	if !isValidEnvVarName(varName) {
		return nil, fmt.Errorf("invalid environment variable name: %s", varName)
	}

	defaultPart := matches[2] // ":default" or empty
	return &EnvVarSpec{
		VarName:      varName,
		HasDefault:   defaultPart != "",
		DefaultValue: strings.TrimPrefix(defaultPart, ":"),
	}, nil
}

// Resolve returns the final value. A required variable that is
// not set is an error.
func (s *EnvVarSpec) Resolve(lookup LookupFunc) (string, error) {
	if s.IsLiteral {
		return s.LiteralValue, nil
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if value, ok := lookup(s.VarName); ok {
		return value, nil
	}
	if s.HasDefault {
		return s.DefaultValue, nil
	}
	return "", fmt.Errorf("environment variable %s is not set", s.VarName)
}

// ResolveValues substitutes environment references in every string of a
// decoded YAML document. Maps and lists are walked recursively and other
// scalars are returned unchanged.
func ResolveValues(value any, lookup LookupFunc) (any, error) {
	switch v := value.(type) {
	case string:
		spec, err := ParseEnvVar(v)
		if err != nil {
			return nil, err
		}
		return spec.Resolve(lookup)

	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			resolved, err := ResolveValues(item, lookup)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = resolved
		}
		return out, nil

	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			resolved, err := ResolveValues(item, lookup)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = resolved
		}
		return out, nil
	}
	return value, nil
}

// isValidEnvVarName checks if a string is a valid environment variable name
// Valid names: Start with A-Z or underscore, contain only A-Z, 0-9, underscore
func isValidEnvVarName(name string) bool {
	if name == "" {
		return false
	}

	first := name[0]
	if !((first >= 'A' && first <= 'Z') || first == '_') {
		return false
	}

	for i := 1; i < len(name); i++ {
		c := name[i]
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}

	return true
}
