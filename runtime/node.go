package runtime

// Item is one unit of workflow data flowing into or out of a node.
type Item struct {
	JSON       map[string]any `json:"json"`
	PairedItem *PairedItem    `json:"pairedItem,omitempty"`
}

// PairedItem links an output item to the input item it came from.
type PairedItem struct {
	Item int `json:"item"`
}

// Node is an executable node. The executor calls ExecuteItem once per input
// item, in order, and turns the result into an output item.
type Node interface {
	Description() NodeDescription
	ExecuteItem(exec *Execution, item int) (any, error)
}

// NodeProvider is implemented by plugins that contribute nodes. The
// container registers every node it returns.
type NodeProvider interface {
	Nodes() []Node
}

// NodeDescription is the declarative part of a node: identity, the
// credentials it uses and its parameters.
type NodeDescription struct {
	Name        string           `json:"name"`
	DisplayName string           `json:"displayName"`
	Description string           `json:"description"`
	Group       string           `json:"group"`
	Version     int              `json:"version"`
	Credentials []NodeCredential `json:"credentials,omitempty"`
	Properties  []NodeProperty   `json:"properties"`
}

// NodeCredential names a credential type a node can use.
type NodeCredential struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// Property types
const (
	PropertyString     = "string"
	PropertyNumber     = "number"
	PropertyBoolean    = "boolean"
	PropertyOptions    = "options"
	PropertyMultiOpts  = "multiOptions"
	PropertyCollection = "collection"
	PropertyFixedList  = "fixedCollection"
)

// NodeProperty describes one node parameter.
type NodeProperty struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	Type        string   `json:"type"`
	Default     any      `json:"default,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Options     []string `json:"options,omitempty"`
	Description string   `json:"description,omitempty"`
}
