package marketplace

import (
	"sort"

	"github.com/BDNK1/sflowg-marketplace/runtime/plugin"
)

// operationFields lists the parameters each operation reads.
var operationFields = map[Operation][]string{
	{ResourceAuth, ActionLogin}:  {"email", "password"},
	{ResourceAuth, ActionSignup}: {"email", "password", "displayName"},

	{ResourceStats, ActionUsers}:         {"timeSpan"},
	{ResourceStats, ActionLotsStats}:     {"timeSpan", "groupBy"},
	{ResourceStats, ActionOffersStats}:   {"timeSpan"},
	{ResourceStats, ActionFeedbackStats}: {"timeSpan"},

	{ResourceLots, ActionList}:   {"limit"},
	{ResourceLots, ActionCreate}: {"title", "description", "category", "budget", "currency", "timeline"},
	{ResourceLots, ActionGet}:    {"lotId"},
	{ResourceLots, ActionClose}:  {"lotId"},
	{ResourceLots, ActionReopen}: {"lotId"},

	{ResourceOffers, ActionCreate}:   {"lotId", "amount", "message", "timeline"},
	{ResourceOffers, ActionGet}:      {"offerId"},
	{ResourceOffers, ActionAccept}:   {"offerId"},
	{ResourceOffers, ActionReject}:   {"offerId"},
	{ResourceOffers, ActionComplete}: {"offerId"},
	{ResourceOffers, ActionCancel}:   {"offerId"},

	{ResourceFeedback, ActionCreate}: {"offerId", "rating", "comment"},

	{ResourceEvents, ActionSubscribe}:   {"eventTypes", "callbackUrl", "deliveryMethod"},
	{ResourceEvents, ActionUnsubscribe}: {"subscriptionId"},
}

var fieldProperties = map[string]plugin.NodeProperty{
	"email":       {Name: "email", DisplayName: "Email", Type: plugin.PropertyString, Required: true},
	"password":    {Name: "password", DisplayName: "Password", Type: plugin.PropertyString, Required: true},
	"displayName": {Name: "displayName", DisplayName: "Display Name", Type: plugin.PropertyString},
	"timeSpan": {
		Name: "timeSpan", DisplayName: "Time Span", Type: plugin.PropertyOptions,
		Default: "all time", Options: timeSpans,
	},
	"groupBy": {
		Name: "groupBy", DisplayName: "Group By", Type: plugin.PropertyOptions,
		Options: []string{"status", "category", "date"},
	},
	"limit":       {Name: "limit", DisplayName: "Limit", Type: plugin.PropertyNumber, Description: "Max number of lots to return"},
	"title":       {Name: "title", DisplayName: "Title", Type: plugin.PropertyString, Required: true},
	"description": {Name: "description", DisplayName: "Description", Type: plugin.PropertyString, Required: true},
	"category":    {Name: "category", DisplayName: "Category", Type: plugin.PropertyString, Required: true},
	"budget":      {Name: "budget", DisplayName: "Budget", Type: plugin.PropertyNumber, Required: true},
	"currency":    {Name: "currency", DisplayName: "Currency", Type: plugin.PropertyString, Default: "USD"},
	"timeline":    {Name: "timeline", DisplayName: "Timeline", Type: plugin.PropertyString},
	"lotId":       {Name: "lotId", DisplayName: "Lot ID", Type: plugin.PropertyString, Required: true},
	"amount":      {Name: "amount", DisplayName: "Amount", Type: plugin.PropertyNumber, Required: true},
	"message":     {Name: "message", DisplayName: "Message", Type: plugin.PropertyString},
	"offerId":     {Name: "offerId", DisplayName: "Offer ID", Type: plugin.PropertyString, Required: true},
	"rating":      {Name: "rating", DisplayName: "Rating", Type: plugin.PropertyNumber, Required: true, Description: "1 to 5"},
	"comment":     {Name: "comment", DisplayName: "Comment", Type: plugin.PropertyString},
	"eventTypes": {
		Name: "eventTypes", DisplayName: "Event Types", Type: plugin.PropertyMultiOpts,
		Required: true, Options: eventTypes,
	},
	"callbackUrl": {Name: "callbackUrl", DisplayName: "Callback URL", Type: plugin.PropertyString, Required: true, Description: "Must be HTTPS"},
	"deliveryMethod": {
		Name: "deliveryMethod", DisplayName: "Delivery Method", Type: plugin.PropertyOptions,
		Default: "webhook", Options: []string{"webhook", "websocket"},
	},
	"subscriptionId": {Name: "subscriptionId", DisplayName: "Subscription ID", Type: plugin.PropertyString, Required: true},
}

// commonProperties follow the operation fields on every node.
var commonProperties = []plugin.NodeProperty{
	{
		Name: "environment", DisplayName: "Environment", Type: plugin.PropertyOptions,
		Options: []string{string(EnvironmentDev), string(EnvironmentProd)},
	},
	{Name: "overrideBaseUrl", DisplayName: "Override Base URL", Type: plugin.PropertyString},
	{
		Name: "additionalFields", DisplayName: "Additional Fields", Type: plugin.PropertyCollection,
		Description: "timeout (s), retryOn5xx, maxRetries, responseFormat (json|raw), securityHeaders, retryPolicy (standard|fast|none), dlqEnabled",
	},
	{Name: "additionalHeaders", DisplayName: "Additional Headers", Type: plugin.PropertyFixedList},
}

func describe(def nodeDefinition) plugin.NodeDescription {
	var ops []Operation
	switch {
	case def.fixed():
		ops = []Operation{{def.resource, def.action}}
	case def.resource != "":
		for _, a := range def.actions {
			ops = append(ops, Operation{def.resource, a})
		}
	default:
		ops = Operations()
	}

	var props []plugin.NodeProperty
	if def.resource == "" {
		props = append(props, plugin.NodeProperty{
			Name: "resource", DisplayName: "Resource", Type: plugin.PropertyOptions,
			Required: true, Options: resourceNames(ops),
		})
	}
	if !def.fixed() {
		props = append(props, plugin.NodeProperty{
			Name: "operation", DisplayName: "Operation", Type: plugin.PropertyOptions,
			Required: true, Options: actionNames(ops),
		})
	}

	seen := map[string]bool{}
	for _, op := range ops {
		for _, field := range operationFields[op] {
			if seen[field] {
				continue
			}
			seen[field] = true
			props = append(props, fieldProperties[field])
		}
	}
	props = append(props, commonProperties...)

	needsAuth := false
	for _, op := range ops {
		needsAuth = needsAuth || RequiresAuth(op)
	}

	return plugin.NodeDescription{
		Name:        def.name,
		DisplayName: def.displayName,
		Description: def.description,
		Group:       "transform",
		Version:     1,
		Credentials: []plugin.NodeCredential{{Name: CredentialTypeName, Required: needsAuth && def.fixed()}},
		Properties:  props,
	}
}

func resourceNames(ops []Operation) []string {
	seen := map[string]bool{}
	var names []string
	for _, op := range ops {
		if !seen[string(op.Resource)] {
			seen[string(op.Resource)] = true
			names = append(names, string(op.Resource))
		}
	}
	sort.Strings(names)
	return names
}

// actionNames keeps the row order for per-resource nodes. The combined node
// lists every distinct action once.
func actionNames(ops []Operation) []string {
	seen := map[string]bool{}
	var names []string
	for _, op := range ops {
		if !seen[string(op.Action)] {
			seen[string(op.Action)] = true
			names = append(names, string(op.Action))
		}
	}
	return names
}
