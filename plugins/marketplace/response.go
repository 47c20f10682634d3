package marketplace

import (
	"fmt"

	"github.com/Jeffail/gabs/v2"
)

// Format selects how a response body is returned.
type Format string

const (
	FormatJSON Format = "json"
	FormatRaw  Format = "raw"
)

// ParseFormat accepts "json", "raw" or empty (json).
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatRaw:
		return FormatRaw, nil
	}
	return "", newValidationError("Response Format", "Response Format must be one of: json, raw")
}

// PostProcess applies the operation-specific adjustments to a decoded JSON
// payload: login responses gain a sessionToken alias and lot lists are cut to
// the requested limit. Raw payloads and payloads of an unexpected shape are
// returned unchanged.
func PostProcess(op Operation, p Params, format Format, payload any) (any, error) {
	if format == FormatRaw {
		return payload, nil
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return payload, nil
	}

	switch op {
	case Operation{ResourceAuth, ActionLogin}:
		return aliasSessionToken(obj)
	case Operation{ResourceLots, ActionList}:
		return truncateLots(obj, int(p.Limit))
	}
	return obj, nil
}

// aliasSessionToken copies a truthy accessToken to sessionToken.
func aliasSessionToken(obj map[string]any) (map[string]any, error) {
	container := gabs.Wrap(obj)
	token := container.Path("accessToken").Data()
	if !truthy(token) {
		return obj, nil
	}
	if _, err := container.Set(token, "sessionToken"); err != nil {
		return nil, fmt.Errorf("failed to set sessionToken: %w", err)
	}
	return obj, nil
}

// truncateLots keeps the first limit entries of obj["lots"]. A limit of zero
// or less leaves the payload untouched.
func truncateLots(obj map[string]any, limit int) (map[string]any, error) {
	if limit <= 0 {
		return obj, nil
	}
	container := gabs.Wrap(obj)
	lots, ok := container.Path("lots").Data().([]any)
	if !ok || len(lots) <= limit {
		return obj, nil
	}
	if _, err := container.Set(lots[:limit], "lots"); err != nil {
		return nil, fmt.Errorf("failed to truncate lots: %w", err)
	}
	return obj, nil
}

// truthy follows JSON truthiness: false, 0, "" and null are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	}
	return true
}

// Response is the item-level shape handed back to the host: objects pass
// through, anything else is wrapped as {"data": value}.
type Response map[string]any

// NewResponse wraps payload for output.
func NewResponse(payload any) Response {
	if obj, ok := payload.(map[string]any); ok {
		return Response(obj)
	}
	return Response{"data": payload}
}
