package runtime

import (
	"testing"
)

func TestEval_Base64(t *testing.T) {
	env := map[string]any{
		"json": map[string]any{
			"lotId":    "lot_42",
			"email":    "me@example.com",
			"password": "secret",
			"token":    "id-token",
		},
	}

	tests := []struct {
		name     string
		expr     string
		expected string
	}{
		{name: "item field", expr: `base64_encode(json.lotId)`, expected: "bG90XzQy"},
		{name: "empty", expr: `base64_encode("")`, expected: ""},
		{name: "basic auth pair", expr: `base64_encode(json.email + ":" + json.password)`, expected: "bWVAZXhhbXBsZS5jb206c2VjcmV0"},
		{name: "header value", expr: `base64_encode("Bearer " + json.token)`, expected: "QmVhcmVyIGlkLXRva2Vu"},
		{name: "decode", expr: `base64_decode("bG90XzQy")`, expected: "lot_42"},
		{name: "round trip", expr: `base64_decode(base64_encode(json.email))`, expected: "me@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Eval(tt.expr, env)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("got %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestEval_Base64DecodeInvalid(t *testing.T) {
	if _, err := Eval(`base64_decode("not base64!")`, map[string]any{}); err == nil {
		t.Error("expected an error for invalid base64 input")
	}
}

func TestEval_MissingValues(t *testing.T) {
	env := map[string]any{
		"json": map[string]any{
			"currency": "EUR",
			"timeline": nil,
		},
		"itemIndex": 0,
	}

	tests := []struct {
		name     string
		expr     string
		expected any
	}{
		{"item field", "json.currency", "EUR"},
		{"null item field", "json.timeline", nil},
		{"missing variable returns nil", "offer", nil},
		{"null alias", "null", nil},
		{"field or default", `json.currency ?? "USD"`, "EUR"},
		{"null field falls back", `json.timeline ?? "2 weeks"`, "2 weeks"},
		{"missing field falls back", `json.category ?? "design"`, "design"},
		{"chained fallback", `json.category ?? json.timeline ?? "none"`, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Eval(tt.expr, env)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestOptionalChaining(t *testing.T) {
	ctx := map[string]any{
		"json": map[string]any{
			"lotId": "lot-1",
			"owner": map[string]any{
				"email": "owner@example.com",
			},
		},
	}

	tests := []struct {
		name     string
		expr     string
		expected any
	}{
		{"existing nested", "json.lotId", "lot-1"},
		{"missing with ?.", "missing?.nested", nil},
		{"missing deep with ?.", "missing?.a?.b?.c", nil},
		{"existing deep with ?.", "json?.owner?.email", "owner@example.com"},
		{"missing nested field with ?.", "json?.owner?.missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Eval(tt.expr, ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDefinedFunction(t *testing.T) {
	ctx := map[string]any{
		"exists": "hello",
		"is_nil": nil,
		"json": map[string]any{
			"offer": map[string]any{"id": "offer-9"},
		},
	}

	tests := []struct {
		name     string
		expr     string
		expected bool
	}{
		{"existing value is defined", `defined("exists")`, true},
		{"nil value is defined", `defined("is_nil")`, true},
		{"missing is not defined", `defined("missing")`, false},
		{"nested path with dots", `defined("json.offer.id")`, true},
		{"missing nested path", `defined("json.offer.missing")`, false},
		{"path through scalar", `defined("exists.length")`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Eval(tt.expr, ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestResolveValue(t *testing.T) {
	env := map[string]any{
		"json": map[string]any{
			"lotId":  "lot-42",
			"budget": float64(1200),
			"tags":   []any{"a", "b"},
		},
		"itemIndex": 3,
	}

	tests := []struct {
		name     string
		value    any
		expected any
	}{
		{"literal string", "lot-1", "lot-1"},
		{"literal number", 15, 15},
		{"whole expression keeps type", "={{ json.budget }}", float64(1200)},
		{"whole expression with spaces", "={{json.lotId}}", "lot-42"},
		{"template", "=lot {{ json.lotId }} #{{ itemIndex }}", "lot lot-42 #3"},
		{"template with array", "=tags: {{ json.tags }}", `tags: ["a","b"]`},
		{"template with missing value", "=x{{ missing }}y", "xy"},
		{"expression arithmetic", "={{ json.budget * 2 }}", float64(2400)},
		{"equals without braces", "=plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ResolveValue(tt.value, env)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("got %#v, want %#v", result, tt.expected)
			}
		})
	}
}

func TestResolveValue_Nested(t *testing.T) {
	env := map[string]any{"json": map[string]any{"name": "X-Trace", "value": "abc"}}

	raw := map[string]any{
		"additionalHeaders": map[string]any{
			"headers": []any{
				map[string]any{"name": "={{ json.name }}", "value": "={{ json.value }}"},
			},
		},
	}

	result, err := ResolveValue(raw, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	headers := result.(map[string]any)["additionalHeaders"].(map[string]any)["headers"].([]any)
	row := headers[0].(map[string]any)
	if row["name"] != "X-Trace" || row["value"] != "abc" {
		t.Errorf("unexpected header row: %v", row)
	}
}

func TestResolveValue_InvalidExpression(t *testing.T) {
	if _, err := ResolveValue("={{ json. }}", map[string]any{}); err == nil {
		t.Error("expected error for invalid expression")
	}
}
