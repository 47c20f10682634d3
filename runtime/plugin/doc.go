// Package plugin provides the minimal interface for node plugin development.
//
// This package contains ONLY the types and interfaces that plugin developers
// need to interact with. Plugin authors should import this package and never
// import the parent "runtime" package directly.
//
// # Plugin Structure
//
// A plugin is a struct with an optional Config and one or more nodes:
//
//	type Config struct {
//	    Timeout time.Duration `yaml:"timeout" default:"30s" validate:"gte=1s"`
//	}
//
//	type MyPlugin struct {
//	    Config Config
//	}
//
//	func (p *MyPlugin) Nodes() []plugin.Node {
//	    return []plugin.Node{&greetNode{}}
//	}
//
// The framework handles all config processing (defaults, merging, validation).
// Plugin developers never call validation or default functions, they just
// write tags.
//
// # Nodes
//
// A node describes itself and executes one input item at a time:
//
//	func (n *greetNode) ExecuteItem(exec *plugin.Execution, item int) (any, error) {
//	    params, err := exec.NodeParameters(item)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return plugin.Output{"message": "Hello, " + params["name"].(string)}, nil
//	}
//
// The executor loops over the items, applies continue-on-fail and wraps
// errors in a NodeOperationError. Errors implementing ErrorCode() string
// keep their code; errors implementing Temporary() bool are classified as
// transient.
//
// # Lifecycle Management
//
// Plugins can implement Initializer and Shutdowner. Initialize runs once after
// the config has been validated; Shutdown runs in reverse registration order.
package plugin
