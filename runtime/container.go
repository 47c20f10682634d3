package runtime

import (
	"fmt"
	"sort"
)

// Container holds plugin instances and the nodes they contribute.
type Container struct {
	nodes       map[string]Node
	plugins     map[string]any // Plugin instances (name -> plugin)
	pluginOrder []string
}

func NewContainer() *Container {
	return &Container{
		nodes:   make(map[string]Node),
		plugins: make(map[string]any),
	}
}

// RegisterPlugin stores a plugin instance and registers its nodes when it
// implements NodeProvider.
func (c *Container) RegisterPlugin(pluginName string, plugin any) error {
	if plugin == nil {
		return fmt.Errorf("plugin cannot be nil")
	}
	if _, exists := c.plugins[pluginName]; exists {
		return fmt.Errorf("plugin %q already registered", pluginName)
	}

	c.plugins[pluginName] = plugin
	c.pluginOrder = append(c.pluginOrder, pluginName)

	if provider, ok := plugin.(NodeProvider); ok {
		for _, node := range provider.Nodes() {
			if err := c.RegisterNode(node); err != nil {
				return fmt.Errorf("plugin %q: %w", pluginName, err)
			}
		}
	}

	return nil
}

// RegisterNode adds a single node. Node names are unique.
func (c *Container) RegisterNode(node Node) error {
	name := node.Description().Name
	if name == "" {
		return fmt.Errorf("node has no name")
	}
	if _, exists := c.nodes[name]; exists {
		return fmt.Errorf("node %q already registered", name)
	}
	c.nodes[name] = node
	return nil
}

// GetPlugin returns a plugin instance by name
func (c *Container) GetPlugin(name string) any {
	return c.plugins[name]
}

// Node returns the node registered under name.
func (c *Container) Node(name string) (Node, bool) {
	node, ok := c.nodes[name]
	return node, ok
}

// Nodes returns all node descriptions sorted by name.
func (c *Container) Nodes() []NodeDescription {
	descriptions := make([]NodeDescription, 0, len(c.nodes))
	for _, node := range c.nodes {
		descriptions = append(descriptions, node.Description())
	}
	sort.Slice(descriptions, func(i, j int) bool {
		return descriptions[i].Name < descriptions[j].Name
	})
	return descriptions
}

// Initialize calls Initialize on every plugin implementing Initializer, in
// registration order. The first failure stops startup.
func (c *Container) Initialize() error {
	for _, name := range c.pluginOrder {
		initializer, ok := c.plugins[name].(Initializer)
		if !ok {
			continue
		}
		if err := initializer.Initialize(); err != nil {
			return fmt.Errorf("plugin %q initialization failed: %w", name, err)
		}
	}
	return nil
}

// Shutdown calls Shutdown on every plugin implementing Shutdowner.
// Plugins are shut down in reverse order of registration
func (c *Container) Shutdown() error {
	var errors []error
	for i := len(c.pluginOrder) - 1; i >= 0; i-- {
		name := c.pluginOrder[i]
		shutdowner, ok := c.plugins[name].(Shutdowner)
		if !ok {
			continue
		}
		if err := shutdowner.Shutdown(); err != nil {
			errors = append(errors, fmt.Errorf("plugin %q shutdown failed: %w", name, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("shutdown errors: %v", errors)
	}

	return nil
}
