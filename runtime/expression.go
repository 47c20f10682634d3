package runtime

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
)

// Parameter values starting with this prefix are expressions.
const expressionPrefix = "="

var templatePattern = regexp.MustCompile(`(?s)\{\{(.+?)\}\}`)

// Custom expression functions available in all parameters
var exprFunctions = []expr.Option{
	expr.Function("base64_encode", func(params ...any) (any, error) {
		s, _ := params[0].(string)
		return base64.StdEncoding.EncodeToString([]byte(s)), nil
	}),
	expr.Function("base64_decode", func(params ...any) (any, error) {
		s, _ := params[0].(string)
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}),
}

// Eval evaluates a single expr-lang expression against env.
func Eval(expression string, env map[string]any) (any, error) {
	scope := make(map[string]any, len(env)+1)
	for k, v := range env {
		scope[k] = v
	}
	// Add null as alias for nil (JSON/YAML compatibility)
	scope["null"] = nil

	// defined() checks if a dotted path exists (distinguishes missing from null)
	definedFn := expr.Function(
		"defined",
		func(params ...any) (any, error) {
			path, ok := params[0].(string)
			if !ok {
				return false, fmt.Errorf("defined() expects string path argument, got %T", params[0])
			}
			_, exists := lookupPath(scope, path)
			return exists, nil
		},
		new(func(string) bool),
	)

	// NOTE: expr.Env MUST come before AllowUndefinedVariables for it to work
	opts := []expr.Option{
		expr.Env(scope),
		expr.AllowUndefinedVariables(), // Missing variables return nil instead of compile error
		definedFn,
	}
	opts = append(opts, exprFunctions...)

	program, err := expr.Compile(expression, opts...)
	if err != nil {
		return nil, err
	}
	return expr.Run(program, scope)
}

// ResolveValue evaluates expression parameters inside value. Strings of the
// form "={{ expr }}" keep the type of the result; other "=" strings are
// templates and always produce a string. Maps and slices are resolved
// recursively, everything else is returned as is.
func ResolveValue(value any, env map[string]any) (any, error) {
	switch v := value.(type) {
	case string:
		return resolveString(v, env)

	case map[string]any:
		result := make(map[string]any, len(v))
		for k, val := range v {
			resolved, err := ResolveValue(val, env)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve '%s': %w", k, err)
			}
			result[k] = resolved
		}
		return result, nil

	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			resolved, err := ResolveValue(val, env)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve [%d]: %w", i, err)
			}
			result[i] = resolved
		}
		return result, nil

	default:
		return value, nil
	}
}

func resolveString(s string, env map[string]any) (any, error) {
	if !strings.HasPrefix(s, expressionPrefix) {
		return s, nil
	}
	body := strings.TrimPrefix(s, expressionPrefix)

	// A single {{ }} spanning the whole value keeps its type
	if m := templatePattern.FindStringSubmatchIndex(body); m != nil && m[0] == 0 && m[1] == len(body) {
		return Eval(strings.TrimSpace(body[m[2]:m[3]]), env)
	}

	var evalErr error
	out := templatePattern.ReplaceAllStringFunc(body, func(match string) string {
		if evalErr != nil {
			return ""
		}
		inner := strings.TrimSpace(match[2 : len(match)-2])
		result, err := Eval(inner, env)
		if err != nil {
			evalErr = fmt.Errorf("expression %q: %w", inner, err)
			return ""
		}
		return stringify(result)
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return out, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(data)
	}
	return fmt.Sprintf("%v", v)
}

// lookupPath walks a dotted path through nested maps.
func lookupPath(scope map[string]any, path string) (any, bool) {
	var current any = scope
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
