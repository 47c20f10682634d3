package marketplace

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/BDNK1/sflowg-marketplace/runtime/plugin"
)

// nodeDefinition is one row of the node catalogue. A row fixes the resource
// and/or the action; whatever it leaves open is read from the node
// parameters.
type nodeDefinition struct {
	name        string
	displayName string
	description string
	resource    Resource // empty: chosen by the "resource" parameter
	action      Action   // empty: chosen by the "operation" parameter
	actions     []Action // operations offered by a per-resource node
	// transitionMethod overrides the method of lot/offer state changes.
	transitionMethod string
}

// fixed reports whether the row names exactly one operation.
func (d nodeDefinition) fixed() bool {
	return d.resource != "" && d.action != ""
}

func (d nodeDefinition) builder() Builder {
	return Builder{TransitionMethod: d.transitionMethod}
}

var catalogue = []nodeDefinition{
	{
		name:        "aiMarketplace",
		displayName: "AI Marketplace",
		description: "Consume the AI Marketplace API",
	},

	// Per-resource nodes send state changes as PATCH.
	{
		name: "aiMarketplaceAuth", displayName: "AI Marketplace Auth",
		description: "Log in or sign up to the AI Marketplace",
		resource:    ResourceAuth, actions: []Action{ActionLogin, ActionSignup},
	},
	{
		name: "aiMarketplaceLots", displayName: "AI Marketplace Lots",
		description: "Manage AI Marketplace lots",
		resource:    ResourceLots, actions: []Action{ActionList, ActionCreate, ActionGet, ActionClose, ActionReopen},
		transitionMethod: http.MethodPatch,
	},
	{
		name: "aiMarketplaceOffers", displayName: "AI Marketplace Offers",
		description: "Manage AI Marketplace offers",
		resource:    ResourceOffers, actions: []Action{ActionCreate, ActionGet, ActionAccept, ActionReject, ActionComplete, ActionCancel},
		transitionMethod: http.MethodPatch,
	},
	{
		name: "aiMarketplaceStats", displayName: "AI Marketplace Stats",
		description: "Read AI Marketplace statistics",
		resource:    ResourceStats, actions: []Action{ActionUsers, ActionLotsStats, ActionOffersStats, ActionFeedbackStats},
	},
	{
		name: "aiMarketplaceEvents", displayName: "AI Marketplace Events",
		description: "Manage AI Marketplace event subscriptions",
		resource:    ResourceEvents, actions: []Action{ActionSubscribe, ActionUnsubscribe, ActionListSubscriptions},
	},
	{
		name: "aiMarketplaceFeedback", displayName: "AI Marketplace Feedback",
		description: "Leave feedback on a completed offer",
		resource:    ResourceFeedback, actions: []Action{ActionCreate},
	},

	// Single-operation nodes.
	{
		name: "aiMarketplaceLotsCreate", displayName: "AI Marketplace: Create Lot",
		description: "Create a new lot",
		resource:    ResourceLots, action: ActionCreate,
	},
	{
		name: "aiMarketplaceLotsReopen", displayName: "AI Marketplace: Reopen Lot",
		description: "Reopen a closed lot",
		resource:    ResourceLots, action: ActionReopen,
	},
	{
		name: "aiMarketplaceFeedbackCreate", displayName: "AI Marketplace: Create Feedback",
		description: "Leave feedback on a completed offer",
		resource:    ResourceFeedback, action: ActionCreate,
	},
	{
		name: "aiMarketplaceStatsLots", displayName: "AI Marketplace: Lot Stats",
		description: "Read lot statistics",
		resource:    ResourceStats, action: ActionLotsStats,
	},
	{
		name: "aiMarketplaceStatsFeedback", displayName: "AI Marketplace: Feedback Stats",
		description: "Read feedback statistics",
		resource:    ResourceStats, action: ActionFeedbackStats,
	},
	{
		name: "aiMarketplaceEventsSubscribe", displayName: "AI Marketplace: Subscribe",
		description: "Subscribe a callback URL to marketplace events",
		resource:    ResourceEvents, action: ActionSubscribe,
	},
	{
		name: "aiMarketplaceEventsUnsubscribe", displayName: "AI Marketplace: Unsubscribe",
		description: "Delete an event subscription",
		resource:    ResourceEvents, action: ActionUnsubscribe,
	},
	{
		name: "aiMarketplaceEventsListSubscriptions", displayName: "AI Marketplace: List Subscriptions",
		description: "List event subscriptions",
		resource:    ResourceEvents, action: ActionListSubscriptions,
	},
	{
		name: "aiMarketplaceAdminInitCategories", displayName: "AI Marketplace: Init Categories",
		description: "Seed the default lot categories",
		resource:    ResourceAdmin, action: ActionInitCategories,
	},
	{
		name: "aiMarketplaceHealthCheck", displayName: "AI Marketplace: Health Check",
		description: "Check the API health",
		resource:    ResourceHealth, action: ActionCheck,
	},
}

// headerCollection is the {headers: [{name, value}]} shape of the header
// parameters.
type headerCollection struct {
	Headers []NameValue `json:"headers"`
}

// additionalFields are the per-call options. Pointer fields are nil when the
// caller did not set them, so the plugin config supplies the value.
type additionalFields struct {
	Timeout         *float64         `json:"timeout"` // seconds
	RetryOn5xx      *bool            `json:"retryOn5xx"`
	MaxRetries      *int             `json:"maxRetries"`
	ResponseFormat  string           `json:"responseFormat"`
	SecurityHeaders headerCollection `json:"securityHeaders"`
	RetryPolicy     string           `json:"retryPolicy"`
	DLQEnabled      *bool            `json:"dlqEnabled"`
}

// nodeParameters is the routing part of the node parameters. Operation
// fields decode separately into Params.
type nodeParameters struct {
	Resource          string           `json:"resource"`
	Operation         string           `json:"operation"`
	Environment       string           `json:"environment"`
	OverrideBaseURL   string           `json:"overrideBaseUrl"`
	AdditionalFields  additionalFields `json:"additionalFields"`
	AdditionalHeaders headerCollection `json:"additionalHeaders"`
}

const maxRetriesLimit = 10

type marketplaceNode struct {
	plugin *Plugin
	def    nodeDefinition
}

func (n *marketplaceNode) Description() plugin.NodeDescription {
	return describe(n.def)
}

// ExecuteItem resolves the parameters of one item, sends the request and
// returns the post-processed payload.
func (n *marketplaceNode) ExecuteItem(exec *plugin.Execution, item int) (any, error) {
	raw, err := exec.NodeParameters(item)
	if err != nil {
		return nil, err
	}

	var np nodeParameters
	if err := plugin.DecodeParameters(raw, &np); err != nil {
		return nil, newValidationError("parameters", "Invalid node parameters: %v", err)
	}
	var params Params
	if err := plugin.DecodeParameters(raw, &params); err != nil {
		return nil, newValidationError("parameters", "Invalid node parameters: %v", err)
	}
	np.AdditionalFields.mergeInto(&params)

	op, err := n.operation(np)
	if err != nil {
		return nil, err
	}

	call, err := n.call(exec, op, params, np)
	if err != nil {
		return nil, err
	}

	client, err := n.plugin.Client()
	if err != nil {
		return nil, err
	}

	exec.Logger.DebugContext(exec, "Executing marketplace operation",
		"node", n.def.name,
		"item", item,
		"operation", op.String(),
		"base_url", call.BaseURL)

	payload, err := client.Execute(exec, call)
	if err != nil {
		return nil, err
	}
	return NewResponse(payload), nil
}

// operation picks the operation from the row and the parameters and checks
// that the node offers it.
func (n *marketplaceNode) operation(np nodeParameters) (Operation, error) {
	resource := string(n.def.resource)
	if resource == "" {
		resource = np.Resource
	}
	action := string(n.def.action)
	if action == "" {
		action = np.Operation
	}
	if resource == "" {
		return Operation{}, newValidationError("resource", "Resource is required")
	}
	if action == "" {
		return Operation{}, newValidationError("operation", "Operation is required")
	}

	op, err := ParseOperation(resource, action)
	if err != nil {
		return Operation{}, err
	}
	if len(n.def.actions) > 0 && !containsAction(n.def.actions, op.Action) {
		return Operation{}, &UnsupportedOperationError{Resource: op.Resource, Action: op.Action}
	}
	return op, nil
}

// call assembles the transport settings of one request from the node
// parameters, the plugin config and the stored credentials.
func (n *marketplaceNode) call(exec *plugin.Execution, op Operation, params Params, np nodeParameters) (Call, error) {
	cfg := n.plugin.Config

	env := np.Environment
	if env == "" {
		env = cfg.Environment
	}
	override := np.OverrideBaseURL
	if override == "" {
		override = cfg.BaseURL
	}
	baseURL, err := ResolveBaseURL(Environment(env), override)
	if err != nil {
		return Call{}, err
	}

	format, err := ParseFormat(np.AdditionalFields.ResponseFormat)
	if err != nil {
		return Call{}, err
	}

	timeout := cfg.Timeout
	if t := np.AdditionalFields.Timeout; t != nil {
		if *t <= 0 || math.IsNaN(*t) || math.IsInf(*t, 0) {
			return Call{}, newValidationError("Timeout", "Timeout must be a positive number of seconds")
		}
		timeout = time.Duration(*t * float64(time.Second))
	}

	if m := np.AdditionalFields.MaxRetries; m != nil && (*m < 0 || *m > maxRetriesLimit) {
		return Call{}, newValidationError("Max Retries", "Max Retries must be between 0 and %d", maxRetriesLimit)
	}

	rawCredentials, err := exec.Credential(CredentialTypeName)
	if err != nil {
		return Call{}, fmt.Errorf("failed to load %s credentials: %w", CredentialTypeName, err)
	}
	credentials, err := CredentialsFromMap(rawCredentials)
	if err != nil {
		return Call{}, err
	}

	return Call{
		Operation:   op,
		Params:      params,
		Builder:     n.def.builder(),
		BaseURL:     baseURL,
		Credentials: credentials,
		Retry:       n.plugin.retryPolicy(np.AdditionalFields.MaxRetries, np.AdditionalFields.RetryOn5xx),
		Timeout:     timeout,
		Format:      format,
		Headers:     np.AdditionalHeaders.Headers,
	}, nil
}

// mergeInto copies the subscription options that live under
// additionalFields onto params.
func (f additionalFields) mergeInto(p *Params) {
	if len(f.SecurityHeaders.Headers) > 0 {
		p.SecurityHeaders = f.SecurityHeaders.Headers
	}
	if f.RetryPolicy != "" {
		p.RetryPolicy = f.RetryPolicy
	}
	if f.DLQEnabled != nil {
		p.DLQEnabled = *f.DLQEnabled
	}
}

func containsAction(actions []Action, a Action) bool {
	for _, candidate := range actions {
		if candidate == a {
			return true
		}
	}
	return false
}
