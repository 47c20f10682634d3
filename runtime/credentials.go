package runtime

import (
	"context"
	"sort"
)

// CredentialStore looks up stored credentials by credential type name. A
// missing credential is not an error: it returns nil, nil and the node
// decides whether it can run without one.
type CredentialStore interface {
	Credential(ctx context.Context, typeName string) (map[string]any, error)
}

// StaticCredentials is an in-memory store, usually filled from the config file.
type StaticCredentials map[string]map[string]any

func (s StaticCredentials) Credential(_ context.Context, typeName string) (map[string]any, error) {
	record, ok := s[typeName]
	if !ok {
		return nil, nil
	}
	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out, nil
}

// Types returns the stored credential type names, sorted.
func (s StaticCredentials) Types() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
