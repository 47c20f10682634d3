package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BDNK1/sflowg-marketplace/cli/internal/security"
	"github.com/BDNK1/sflowg-marketplace/runtime"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is read when no --config flag is given. A missing default
// file is not an error.
const DefaultFileName = "marketplace.yaml"

// Config represents the marketplace.yaml structure
type Config struct {
	// Marketplace is passed to the plugin's config pipeline as is.
	Marketplace map[string]any `yaml:"marketplace"`
	// Credentials maps a credential type name to its fields.
	Credentials runtime.StaticCredentials `yaml:"credentials"`
	Server      ServerConfig              `yaml:"server"`
	Telemetry   runtime.TelemetryConfig   `yaml:"telemetry"`
	Log         LogConfig                 `yaml:"log"`

	// Path is the file the config was read from, empty when defaults are used.
	Path string `yaml:"-"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `yaml:"addr" default:":8080" validate:"hostname_port"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"text" validate:"oneof=text json"`
}

// Load reads path, substitutes ${VAR} references and prepares every typed
// section. An empty path means DefaultFileName in the working directory.
func Load(path string, lookup LookupFunc) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	raw, err := readDocument(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		raw = map[string]any{}
		path = ""
	case err != nil:
		return nil, err
	}

	resolved, err := ResolveValues(raw, lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	doc, _ := resolved.(map[string]any)

	cfg := &Config{
		Marketplace: section(doc, "marketplace"),
		Path:        path,
	}

	if err := runtime.InitializeConfig(&cfg.Server, section(doc, "server")); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if err := runtime.InitializeConfig(&cfg.Log, section(doc, "log")); err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	if err := runtime.InitializeConfig(&cfg.Telemetry, section(doc, "telemetry")); err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	credentials, err := decodeCredentials(section(doc, "credentials"))
	if err != nil {
		return nil, err
	}
	cfg.Credentials = credentials

	return cfg, nil
}

// SaveCredential stores record under credentials.<typeName> in the file at
// path, creating the file when needed. Other sections are kept unresolved so
// ${VAR} references survive. The file must be inside the working directory.
func SaveCredential(path, typeName string, record map[string]any) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := security.ValidatePathWithinBoundary(wd, path); err != nil {
		return fmt.Errorf("refusing to write credentials: %w", err)
	}

	doc, err := readDocument(path)
	if errors.Is(err, fs.ErrNotExist) {
		doc = map[string]any{}
	} else if err != nil {
		return err
	}

	credentials := section(doc, "credentials")
	if credentials == nil {
		credentials = map[string]any{}
	}
	credentials[typeName] = record
	doc["credentials"] = credentials

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o600)
}

func readDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	return doc, nil
}

// section returns doc[name] when it is a mapping.
func section(doc map[string]any, name string) map[string]any {
	m, _ := doc[name].(map[string]any)
	return m
}

func decodeCredentials(raw map[string]any) (runtime.StaticCredentials, error) {
	out := runtime.StaticCredentials{}
	for typeName, fields := range raw {
		record, ok := fields.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("credentials.%s must be a mapping, got %T", typeName, fields)
		}
		out[typeName] = record
	}
	return out, nil
}
