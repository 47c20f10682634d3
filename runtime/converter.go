package runtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// MapToStruct converts resolved node parameters into a typed struct.
// It uses json tags for field mapping and supports time.Duration and time.Time conversions.
func MapToStruct(m map[string]any, target any) error {
	return decodeMap(m, target, "json")
}

// DecodeParameters fills target from its `default` tags and then decodes
// params over it.
func DecodeParameters(params map[string]any, target any) error {
	if err := ApplyDefaults(target); err != nil {
		return err
	}
	return MapToStruct(params, target)
}

// mapToStructFromYAML merges config file values into a config struct using
// its yaml tags. Fields absent from m keep their current (default) values.
func mapToStructFromYAML(m map[string]any, target any) error {
	return decodeMap(m, target, "yaml")
}

func decodeMap(m map[string]any, target any, tagName string) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: tagName,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		WeaklyTypedInput: true, // Allow type coercion (e.g., "25" -> int)
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(m); err != nil {
		return fmt.Errorf("failed to decode map to struct: %w", err)
	}

	return nil
}

// ToMap converts a node result into an item JSON object. Maps pass through,
// structs go through a JSON round-trip (respecting json tags) and any other
// value is wrapped as {"data": value}.
func ToMap(v any) (map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return t, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	if obj, ok := result.(map[string]any); ok {
		return obj, nil
	}
	return map[string]any{"data": result}, nil
}
