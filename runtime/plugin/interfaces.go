package plugin

import (
	"github.com/BDNK1/sflowg-marketplace/runtime"
)

// Initializer is a type alias to runtime.Initializer.
// Plugins implementing this interface will have Initialize() called at container startup.
//
// # Implementation Example
//
//	func (p *APIPlugin) Initialize() error {
//	    p.client = newClient(p.Config.Timeout)
//	    return nil
//	}
//
// If Initialize() returns an error, the application will fail to start.
type Initializer = runtime.Initializer

// Shutdowner is a type alias to runtime.Shutdowner.
// Plugins implementing this interface will have Shutdown() called during graceful shutdown.
// Shutdown is called in reverse order of registration.
type Shutdowner = runtime.Shutdowner

// NodeProvider is implemented by plugins that contribute nodes.
type NodeProvider = runtime.NodeProvider

// CredentialStore resolves credentials by type name.
type CredentialStore = runtime.CredentialStore
