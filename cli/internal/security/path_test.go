package security

import (
	"path/filepath"
	"testing"
)

func TestValidatePathWithinBoundary(t *testing.T) {
	boundary := "/home/test/project"

	tests := []struct {
		target      string
		shouldError bool
	}{
		{target: "/home/test/project", shouldError: false},
		{target: "/home/test/project/marketplace.yaml", shouldError: false},
		{target: "/home/test/project/config/dev.yaml", shouldError: false},
		{target: "/home/test/project/..marketplace.yaml", shouldError: false},
		{target: "/home/test/project/../../../etc/passwd", shouldError: true},
		{target: "/home/test/project/../other-project/marketplace.yaml", shouldError: true},
		{target: "/home/test", shouldError: true},
		{target: "/etc/passwd", shouldError: true},
	}

	for _, tt := range tests {
		err := ValidatePathWithinBoundary(boundary, tt.target)
		if tt.shouldError && err == nil {
			t.Errorf("expected %q to be rejected", tt.target)
		}
		if !tt.shouldError && err != nil {
			t.Errorf("expected %q to be allowed, got: %v", tt.target, err)
		}
	}
}

func TestValidatePathWithinBoundary_RelativePaths(t *testing.T) {
	absBoundary, _ := filepath.Abs(".")

	tests := []struct {
		name        string
		targetPath  string
		shouldError bool
	}{
		{name: "default config", targetPath: "marketplace.yaml"},
		{name: "subdirectory", targetPath: "./config/marketplace.yaml"},
		{name: "parent directory escape", targetPath: "../marketplace.yaml", shouldError: true},
		{name: "double parent escape", targetPath: "../../etc", shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinBoundary(absBoundary, tt.targetPath)
			if tt.shouldError && err == nil {
				t.Errorf("Expected error for %q but got none", tt.targetPath)
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Expected no error for %q but got: %v", tt.targetPath, err)
			}
		})
	}
}
