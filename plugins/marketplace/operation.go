package marketplace

import (
	"net/http"
	"sort"
	"strings"
)

// Resource is the first half of an operation, e.g. "lots".
type Resource string

// Action is the second half of an operation, e.g. "create".
type Action string

const (
	ResourceAuth       Resource = "auth"
	ResourceHealth     Resource = "health"
	ResourceStats      Resource = "stats"
	ResourceLots       Resource = "lots"
	ResourceOffers     Resource = "offers"
	ResourceFeedback   Resource = "feedback"
	ResourceEvents     Resource = "events"
	ResourceCategories Resource = "categories"
	ResourceAdmin      Resource = "admin"
)

const (
	ActionLogin             Action = "login"
	ActionSignup            Action = "signup"
	ActionCheck             Action = "check"
	ActionUsers             Action = "users"
	ActionLotsStats         Action = "lots"
	ActionOffersStats       Action = "offers"
	ActionFeedbackStats     Action = "feedback"
	ActionList              Action = "list"
	ActionCreate            Action = "create"
	ActionGet               Action = "get"
	ActionClose             Action = "close"
	ActionReopen            Action = "reopen"
	ActionAccept            Action = "accept"
	ActionReject            Action = "reject"
	ActionComplete          Action = "complete"
	ActionCancel            Action = "cancel"
	ActionSubscribe         Action = "subscribe"
	ActionUnsubscribe       Action = "unsubscribe"
	ActionListSubscriptions Action = "listSubscriptions"
	ActionInitCategories    Action = "initCategories"
)

// actionAliases maps the option values used by the combined node onto the
// canonical action names.
var actionAliases = map[Resource]map[Action]Action{
	ResourceStats: {
		"lotsStats":     ActionLotsStats,
		"offersStats":   ActionOffersStats,
		"feedbackStats": ActionFeedbackStats,
	},
}

// Operation identifies one REST call shape.
type Operation struct {
	Resource Resource
	Action   Action
}

func (o Operation) String() string {
	return string(o.Resource) + "." + string(o.Action)
}

// ParseOperation normalizes a resource/action pair and checks it against the
// route table.
func ParseOperation(resource, action string) (Operation, error) {
	op := Operation{
		Resource: Resource(strings.TrimSpace(resource)),
		Action:   Action(strings.TrimSpace(action)),
	}
	if aliases, ok := actionAliases[op.Resource]; ok {
		if canonical, ok := aliases[op.Action]; ok {
			op.Action = canonical
		}
	}
	if _, ok := routes[op]; !ok {
		return Operation{}, &UnsupportedOperationError{Resource: op.Resource, Action: op.Action}
	}
	return op, nil
}

// idParam names the Params field interpolated into a route's path.
type idParam int

const (
	idNone idParam = iota
	idLot
	idOffer
	idSubscription
)

type route struct {
	method       string
	path         string // "{id}" is replaced by the validated identifier
	id           idParam
	requiresAuth bool
	// transition routes change lot/offer state; their method depends on the
	// node generation (see Builder.TransitionMethod).
	transition bool
}

// routes is the single source of truth for the wire contract.
var routes = map[Operation]route{
	{ResourceAuth, ActionLogin}:  {method: http.MethodPost, path: "/auth-v2/login"},
	{ResourceAuth, ActionSignup}: {method: http.MethodPost, path: "/auth-v2/signup"},

	{ResourceHealth, ActionCheck}: {method: http.MethodGet, path: "/health-v2"},

	{ResourceStats, ActionUsers}:         {method: http.MethodGet, path: "/stats-v2/users"},
	{ResourceStats, ActionLotsStats}:     {method: http.MethodGet, path: "/stats-v2/lots"},
	{ResourceStats, ActionOffersStats}:   {method: http.MethodGet, path: "/stats-v2/offers"},
	{ResourceStats, ActionFeedbackStats}: {method: http.MethodGet, path: "/stats-v2/feedback"},

	{ResourceLots, ActionList}:   {method: http.MethodGet, path: "/lots-v2"},
	{ResourceLots, ActionCreate}: {method: http.MethodPost, path: "/lots-v2", requiresAuth: true},
	{ResourceLots, ActionGet}:    {method: http.MethodGet, path: "/lots-v2/{id}", id: idLot},
	{ResourceLots, ActionClose}:  {method: http.MethodPost, path: "/lots-v2/{id}/close", id: idLot, requiresAuth: true, transition: true},
	{ResourceLots, ActionReopen}: {method: http.MethodPost, path: "/lots-v2/{id}/reopen", id: idLot, requiresAuth: true, transition: true},

	{ResourceOffers, ActionCreate}:   {method: http.MethodPost, path: "/offers-v2", requiresAuth: true},
	{ResourceOffers, ActionGet}:      {method: http.MethodGet, path: "/offers-v2/{id}", id: idOffer, requiresAuth: true},
	{ResourceOffers, ActionAccept}:   {method: http.MethodPost, path: "/offers-v2/{id}/accept", id: idOffer, requiresAuth: true, transition: true},
	{ResourceOffers, ActionReject}:   {method: http.MethodPost, path: "/offers-v2/{id}/reject", id: idOffer, requiresAuth: true, transition: true},
	{ResourceOffers, ActionComplete}: {method: http.MethodPost, path: "/offers-v2/{id}/complete", id: idOffer, requiresAuth: true, transition: true},
	{ResourceOffers, ActionCancel}:   {method: http.MethodPost, path: "/offers-v2/{id}/cancel", id: idOffer, requiresAuth: true, transition: true},

	{ResourceFeedback, ActionCreate}: {method: http.MethodPost, path: "/feedback-v2", requiresAuth: true},

	// The events service is versioned separately and has no -v2 suffix.
	{ResourceEvents, ActionSubscribe}:         {method: http.MethodPost, path: "/events/subscribe", requiresAuth: true},
	{ResourceEvents, ActionUnsubscribe}:       {method: http.MethodDelete, path: "/events/subscriptions/{id}", id: idSubscription, requiresAuth: true},
	{ResourceEvents, ActionListSubscriptions}: {method: http.MethodGet, path: "/events/subscriptions", requiresAuth: true},

	{ResourceCategories, ActionList}: {method: http.MethodGet, path: "/categories-v2"},

	{ResourceAdmin, ActionInitCategories}: {method: http.MethodPost, path: "/admin-v2/init-categories", requiresAuth: true},
}

// Operations returns every supported operation, sorted by resource then action.
func Operations() []Operation {
	ops := make([]Operation, 0, len(routes))
	for op := range routes {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Resource != ops[j].Resource {
			return ops[i].Resource < ops[j].Resource
		}
		return ops[i].Action < ops[j].Action
	})
	return ops
}

// RequiresAuth reports whether op sends the bearer token.
func RequiresAuth(op Operation) bool {
	return routes[op].requiresAuth
}
