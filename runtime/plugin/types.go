package plugin

import (
	"github.com/BDNK1/sflowg-marketplace/runtime"
	"github.com/go-playground/validator/v10"
)

// Execution is the runtime context passed to every node. It implements
// context.Context and gives access to parameters, items and credentials.
type Execution = runtime.Execution

// Node is implemented by every executable node.
type Node = runtime.Node

// NodeDescription is the declarative part of a node.
type NodeDescription = runtime.NodeDescription

// NodeProperty describes one node parameter.
type NodeProperty = runtime.NodeProperty

// NodeCredential names a credential type a node can use.
type NodeCredential = runtime.NodeCredential

// Item is one unit of workflow data.
type Item = runtime.Item

// Output is the map form of a node result.
type Output = map[string]any

// Property types
const (
	PropertyString     = runtime.PropertyString
	PropertyNumber     = runtime.PropertyNumber
	PropertyBoolean    = runtime.PropertyBoolean
	PropertyOptions    = runtime.PropertyOptions
	PropertyMultiOpts  = runtime.PropertyMultiOpts
	PropertyCollection = runtime.PropertyCollection
	PropertyFixedList  = runtime.PropertyFixedList
)

// Error codes understood by the executor and the HTTP entrypoint.
const (
	ErrorCodeValidation             = runtime.ErrorCodeValidation
	ErrorCodeAuthenticationRequired = runtime.ErrorCodeAuthenticationRequired
	ErrorCodeUnsupportedOperation   = runtime.ErrorCodeUnsupportedOperation
	ErrorCodeTransport              = runtime.ErrorCodeTransport
)

// DecodeParameters applies `default` tags to target and decodes resolved
// node parameters over it using json tags.
func DecodeParameters(params map[string]any, target any) error {
	return runtime.DecodeParameters(params, target)
}

// RegisterValidator adds a custom `validate` tag for plugin Config structs.
func RegisterValidator(tag string, fn validator.Func) error {
	return runtime.RegisterCustomValidator(tag, fn)
}
