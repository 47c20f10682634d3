package marketplace

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperation(t *testing.T) {
	tests := []struct {
		resource, action string
		want             Operation
		wantErr          bool
	}{
		{resource: "lots", action: "create", want: Operation{ResourceLots, ActionCreate}},
		{resource: " lots ", action: " list ", want: Operation{ResourceLots, ActionList}},
		{resource: "stats", action: "lotsStats", want: Operation{ResourceStats, ActionLotsStats}},
		{resource: "stats", action: "feedbackStats", want: Operation{ResourceStats, ActionFeedbackStats}},
		{resource: "stats", action: "offers", want: Operation{ResourceStats, ActionOffersStats}},
		{resource: "categories", action: "list", want: Operation{ResourceCategories, ActionList}},
		{resource: "lots", action: "delete", wantErr: true},
		{resource: "widgets", action: "list", wantErr: true},
		{resource: "", action: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.resource+"/"+tt.action, func(t *testing.T) {
			op, err := ParseOperation(tt.resource, tt.action)
			if tt.wantErr {
				require.Error(t, err)
				var unsupported *UnsupportedOperationError
				assert.ErrorAs(t, err, &unsupported)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, op)
		})
	}
}

func TestOperations_CoverRouteTable(t *testing.T) {
	ops := Operations()
	assert.Len(t, ops, len(routes))
	for i := 1; i < len(ops); i++ {
		prev, cur := ops[i-1], ops[i]
		assert.True(t, prev.Resource < cur.Resource || (prev.Resource == cur.Resource && prev.Action < cur.Action),
			"operations not sorted at %d: %s before %s", i, prev, cur)
	}
}

func TestBuild_RouteTable(t *testing.T) {
	full := Params{
		Email: "a@b.co", Password: "pw",
		LotID: "lot1", OfferID: "off1", SubscriptionID: "sub1",
		Title: "t", Description: "d", Category: "c", Budget: 10,
		Amount: 5, Rating: 4,
		EventTypes:  []string{"onLotCreated"},
		CallbackURL: "https://hooks.example.com/x",
	}

	tests := []struct {
		op     Operation
		method string
		path   string
		auth   bool
	}{
		{Operation{ResourceAuth, ActionLogin}, http.MethodPost, "/auth-v2/login", false},
		{Operation{ResourceAuth, ActionSignup}, http.MethodPost, "/auth-v2/signup", false},
		{Operation{ResourceHealth, ActionCheck}, http.MethodGet, "/health-v2", false},
		{Operation{ResourceStats, ActionUsers}, http.MethodGet, "/stats-v2/users", false},
		{Operation{ResourceStats, ActionLotsStats}, http.MethodGet, "/stats-v2/lots", false},
		{Operation{ResourceStats, ActionOffersStats}, http.MethodGet, "/stats-v2/offers", false},
		{Operation{ResourceStats, ActionFeedbackStats}, http.MethodGet, "/stats-v2/feedback", false},
		{Operation{ResourceLots, ActionList}, http.MethodGet, "/lots-v2", false},
		{Operation{ResourceLots, ActionCreate}, http.MethodPost, "/lots-v2", true},
		{Operation{ResourceLots, ActionGet}, http.MethodGet, "/lots-v2/lot1", false},
		{Operation{ResourceLots, ActionClose}, http.MethodPost, "/lots-v2/lot1/close", true},
		{Operation{ResourceLots, ActionReopen}, http.MethodPost, "/lots-v2/lot1/reopen", true},
		{Operation{ResourceOffers, ActionCreate}, http.MethodPost, "/offers-v2", true},
		{Operation{ResourceOffers, ActionGet}, http.MethodGet, "/offers-v2/off1", true},
		{Operation{ResourceOffers, ActionAccept}, http.MethodPost, "/offers-v2/off1/accept", true},
		{Operation{ResourceOffers, ActionReject}, http.MethodPost, "/offers-v2/off1/reject", true},
		{Operation{ResourceOffers, ActionComplete}, http.MethodPost, "/offers-v2/off1/complete", true},
		{Operation{ResourceOffers, ActionCancel}, http.MethodPost, "/offers-v2/off1/cancel", true},
		{Operation{ResourceFeedback, ActionCreate}, http.MethodPost, "/feedback-v2", true},
		{Operation{ResourceEvents, ActionSubscribe}, http.MethodPost, "/events/subscribe", true},
		{Operation{ResourceEvents, ActionUnsubscribe}, http.MethodDelete, "/events/subscriptions/sub1", true},
		{Operation{ResourceEvents, ActionListSubscriptions}, http.MethodGet, "/events/subscriptions", true},
		{Operation{ResourceCategories, ActionList}, http.MethodGet, "/categories-v2", false},
		{Operation{ResourceAdmin, ActionInitCategories}, http.MethodPost, "/admin-v2/init-categories", true},
	}

	require.Len(t, tests, len(routes), "every route must be covered")

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			spec, err := Build(tt.op, full)
			require.NoError(t, err)
			assert.Equal(t, tt.method, spec.Method)
			assert.Equal(t, tt.path, spec.Path)
			assert.Equal(t, tt.auth, spec.RequiresAuth)
			assert.Equal(t, tt.auth, RequiresAuth(tt.op))
		})
	}
}

func TestBuild_TransitionMethod(t *testing.T) {
	patch := Builder{TransitionMethod: "patch"}

	spec, err := patch.Build(Operation{ResourceOffers, ActionAccept}, Params{OfferID: "o1"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, spec.Method)

	// Non-transition routes keep their own method.
	spec, err = patch.Build(Operation{ResourceLots, ActionCreate}, Params{Title: "t", Description: "d", Category: "c", Budget: 1})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, spec.Method)

	spec, err = patch.Build(Operation{ResourceEvents, ActionUnsubscribe}, Params{SubscriptionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, spec.Method)
}

func TestBuild_Deterministic(t *testing.T) {
	p := Params{Title: " T ", Description: "D", Category: "C", Budget: 100, Currency: "EUR"}
	first, err := Build(Operation{ResourceLots, ActionCreate}, p)
	require.NoError(t, err)
	second, err := Build(Operation{ResourceLots, ActionCreate}, p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuild_PathEscapesIdentifier(t *testing.T) {
	tests := []struct {
		id   string
		path string
	}{
		{"lot 1", "/lots-v2/lot%201"},
		{"a:b", "/lots-v2/a%3Ab"},
		{"a(b)", "/lots-v2/a(b)"},
		{"a+b", "/lots-v2/a%2Bb"},
		{"a@b", "/lots-v2/a%40b"},
		{"a$b=c", "/lots-v2/a%24b%3Dc"},
		{"a!~*'b", "/lots-v2/a!~*'b"},
		{"lot-é", "/lots-v2/lot-%C3%A9"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			spec, err := Build(Operation{ResourceLots, ActionGet}, Params{LotID: tt.id})
			require.NoError(t, err)
			assert.Equal(t, tt.path, spec.Path)
		})
	}
}

func TestEncodeComponent(t *testing.T) {
	assert.Equal(t, "all%20time", encodeComponent("all time"))
	assert.Equal(t, "AZaz09-_.!~*'()", encodeComponent("AZaz09-_.!~*'()"))
	assert.Equal(t, "%3A%2F%3F%23%5B%5D%40%26%3D%2B%24%2C%3B%25", encodeComponent(":/?#[]@&=+$,;%"))
}

func TestBuild_RejectsBadIdentifierBeforeBody(t *testing.T) {
	_, err := Build(Operation{ResourceOffers, ActionAccept}, Params{OfferID: "../x"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "Offer ID")
}

func TestBuild_UnknownOperation(t *testing.T) {
	_, err := Build(Operation{ResourceLots, "delete"}, Params{})
	var unsupported *UnsupportedOperationError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "Unknown operation: lots/delete", err.Error())
}

func TestBuild_Auth(t *testing.T) {
	spec, err := Build(Operation{ResourceAuth, ActionLogin}, Params{Email: "a@b.co", Password: "secret", DisplayName: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, loginBody{Email: "a@b.co", Password: "secret"}, spec.Body)

	spec, err = Build(Operation{ResourceAuth, ActionSignup}, Params{Email: "a@b.co", Password: "secret", DisplayName: "  Ann  "})
	require.NoError(t, err)
	assert.Equal(t, signupBody{Email: "a@b.co", Password: "secret", DisplayName: "Ann"}, spec.Body)

	_, err = Build(Operation{ResourceAuth, ActionLogin}, Params{Email: "not-an-email", Password: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email")

	_, err = Build(Operation{ResourceAuth, ActionLogin}, Params{Email: "a@b.co"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Password is required")
}

func TestBuild_StatsQuery(t *testing.T) {
	spec, err := Build(Operation{ResourceStats, ActionLotsStats}, Params{TimeSpan: "7 days", GroupBy: "category"})
	require.NoError(t, err)
	assert.Equal(t, []QueryParam{{"timeSpan", "7 days"}, {"groupBy", "category"}}, spec.Query)
	assert.Equal(t, "/stats-v2/lots?timeSpan=7%20days&groupBy=category", spec.Endpoint())

	// groupBy only applies to lot statistics.
	spec, err = Build(Operation{ResourceStats, ActionOffersStats}, Params{TimeSpan: "today", GroupBy: "category"})
	require.NoError(t, err)
	assert.Equal(t, "/stats-v2/offers?timeSpan=today", spec.Endpoint())

	spec, err = Build(Operation{ResourceStats, ActionUsers}, Params{})
	require.NoError(t, err)
	assert.Equal(t, "/stats-v2/users", spec.Endpoint())

	_, err = Build(Operation{ResourceStats, ActionUsers}, Params{TimeSpan: "forever"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Time Span must be one of")

	_, err = Build(Operation{ResourceStats, ActionLotsStats}, Params{GroupBy: "owner"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Group By")
}

func TestBuild_LotsList(t *testing.T) {
	spec, err := Build(Operation{ResourceLots, ActionList}, Params{Limit: 5})
	require.NoError(t, err)
	assert.Nil(t, spec.Body)
	assert.Empty(t, spec.Query)

	_, err = Build(Operation{ResourceLots, ActionList}, Params{Limit: maxLimit + 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Limit must not exceed")

	_, err = Build(Operation{ResourceLots, ActionList}, Params{Limit: -1})
	require.Error(t, err)
}

func TestBuild_LotsCreate(t *testing.T) {
	valid := Params{Title: "  Logo design ", Description: "Need a logo", Category: "design", Budget: 250, Currency: "USD", Timeline: "2 weeks"}

	spec, err := Build(Operation{ResourceLots, ActionCreate}, valid)
	require.NoError(t, err)
	assert.Equal(t, lotCreateBody{
		Title: "Logo design", Description: "Need a logo", Category: "design",
		Budget: 250, Currency: "USD", Timeline: "2 weeks",
	}, spec.Body)

	tests := []struct {
		name    string
		mutate  func(p *Params)
		wantErr string
	}{
		{name: "missing title", mutate: func(p *Params) { p.Title = "   " }, wantErr: "Title is required"},
		{name: "long title", mutate: func(p *Params) { p.Title = strings.Repeat("a", maxTitleLength+1) }, wantErr: "Title exceeds maximum length of 200"},
		{name: "missing description", mutate: func(p *Params) { p.Description = "" }, wantErr: "Description is required"},
		{name: "missing category", mutate: func(p *Params) { p.Category = "" }, wantErr: "Category is required"},
		{name: "long category", mutate: func(p *Params) { p.Category = strings.Repeat("c", maxCategoryLength+1) }, wantErr: "Category exceeds maximum length of 100"},
		{name: "negative budget", mutate: func(p *Params) { p.Budget = -1 }, wantErr: "Budget must be at least 0"},
		{name: "huge budget", mutate: func(p *Params) { p.Budget = maxMoney + 1 }, wantErr: "Budget must not exceed"},
		{name: "control in timeline", mutate: func(p *Params) { p.Timeline = "a\x01" }, wantErr: "Timeline contains invalid control characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			_, err := Build(Operation{ResourceLots, ActionCreate}, p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestBuild_OfferAndFeedback(t *testing.T) {
	spec, err := Build(Operation{ResourceOffers, ActionCreate}, Params{LotID: "lot1", Amount: 99.5, Message: " hi ", Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, offerCreateBody{LotID: "lot1", Amount: 99.5, Currency: "USD", Message: "hi"}, spec.Body)

	_, err = Build(Operation{ResourceOffers, ActionCreate}, Params{Amount: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Lot ID is required")

	spec, err = Build(Operation{ResourceFeedback, ActionCreate}, Params{OfferID: "off1", Rating: 5, Comment: "great"})
	require.NoError(t, err)
	assert.Equal(t, feedbackCreateBody{OfferID: "off1", Rating: 5, Comment: "great"}, spec.Body)

	_, err = Build(Operation{ResourceFeedback, ActionCreate}, Params{OfferID: "off1", Rating: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rating must be at least 1")

	_, err = Build(Operation{ResourceFeedback, ActionCreate}, Params{OfferID: "off1", Rating: 3, Comment: strings.Repeat("c", maxCommentLength+1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Comment exceeds maximum length of 512")
}

func TestBuild_Subscribe(t *testing.T) {
	p := Params{
		EventTypes:  []string{"onLotCreated", "onFeedbackLeft"},
		CallbackURL: "https://hooks.example.com/marketplace",
		SecurityHeaders: []NameValue{
			{Name: "X-Secret", Value: "s3cr3t"},
			{Name: "", Value: "skipped"},
			{Name: "X-Empty", Value: ""},
		},
		DLQEnabled: true,
	}

	spec, err := Build(Operation{ResourceEvents, ActionSubscribe}, p)
	require.NoError(t, err)
	assert.Equal(t, subscribeRequestBody{
		EventTypes:      []string{"onLotCreated", "onFeedbackLeft"},
		CallbackURL:     "https://hooks.example.com/marketplace",
		DeliveryMethod:  "webhook",
		SecurityHeaders: map[string]string{"X-Secret": "s3cr3t"},
		RetryPolicy:     "standard",
		DLQEnabled:      true,
	}, spec.Body)

	tests := []struct {
		name    string
		mutate  func(p *Params)
		wantErr string
	}{
		{name: "no event types", mutate: func(p *Params) { p.EventTypes = nil }, wantErr: "at least one event type"},
		{name: "unknown event type", mutate: func(p *Params) { p.EventTypes = []string{"onLotDeleted"} }, wantErr: "unknown event type"},
		{name: "http callback", mutate: func(p *Params) { p.CallbackURL = "http://hooks.example.com" }, wantErr: "must use HTTPS"},
		{name: "bad delivery", mutate: func(p *Params) { p.DeliveryMethod = "email" }, wantErr: "Delivery Method"},
		{name: "bad retry policy", mutate: func(p *Params) { p.RetryPolicy = "aggressive" }, wantErr: "Retry Policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := p
			tt.mutate(&q)
			_, err := Build(Operation{ResourceEvents, ActionSubscribe}, q)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequestSpec_Endpoint(t *testing.T) {
	spec := RequestSpec{Path: "/x", Query: []QueryParam{{"a", "b c"}, {"d", "e&f=g"}}}
	assert.Equal(t, "/x?a=b%20c&d=e%26f%3Dg", spec.Endpoint())
	assert.Equal(t, "/x", RequestSpec{Path: "/x"}.Endpoint())
}
