package marketplace

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Field limits enforced by the builder.
const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
	maxCategoryLength    = 100
	maxTimelineLength    = 500
	maxMessageLength     = 1000
	maxCommentLength     = 512
	maxDisplayNameLength = 100

	maxMoney = 999999999
	maxLimit = 10000
)

// QueryParam is one key/value pair of an ordered query string.
type QueryParam struct {
	Key   string
	Value string
}

// RequestSpec is the fully resolved description of one HTTP call.
type RequestSpec struct {
	Method       string
	Path         string
	Query        []QueryParam
	Body         any
	RequiresAuth bool
}

// Endpoint renders the path and query in their fixed order.
func (s RequestSpec) Endpoint() string {
	if len(s.Query) == 0 {
		return s.Path
	}
	parts := make([]string, 0, len(s.Query))
	for _, q := range s.Query {
		parts = append(parts, q.Key+"="+encodeComponent(q.Value))
	}
	return s.Path + "?" + strings.Join(parts, "&")
}

// Builder maps operations to request specs. TransitionMethod is the method
// used by lot and offer state transitions: POST for the combined and
// single-operation nodes, PATCH for the per-resource nodes. Empty means POST.
type Builder struct {
	TransitionMethod string
}

// Build is Builder{}.Build.
func Build(op Operation, p Params) (RequestSpec, error) {
	return Builder{}.Build(op, p)
}

// Build validates p for op and returns the request to send. It has no side
// effects; the same inputs always produce the same spec.
func (b Builder) Build(op Operation, p Params) (RequestSpec, error) {
	r, ok := routes[op]
	if !ok {
		return RequestSpec{}, &UnsupportedOperationError{Resource: op.Resource, Action: op.Action}
	}

	spec := RequestSpec{
		Method:       r.method,
		Path:         r.path,
		RequiresAuth: r.requiresAuth,
	}
	if r.transition && b.TransitionMethod != "" {
		spec.Method = strings.ToUpper(b.TransitionMethod)
	}

	if r.id != idNone {
		id, field := p.identifier(r.id)
		if err := ValidateIdentifier(id, field); err != nil {
			return RequestSpec{}, err
		}
		spec.Path = strings.Replace(r.path, "{id}", encodeComponent(id), 1)
	}

	var err error
	switch op.Resource {
	case ResourceAuth:
		spec.Body, err = authBody(op.Action, p)
	case ResourceStats:
		spec.Query, err = statsQuery(op.Action, p)
	case ResourceLots:
		spec.Body, err = lotsBody(op.Action, p)
	case ResourceOffers:
		if op.Action == ActionCreate {
			spec.Body, err = offerBody(p)
		}
	case ResourceFeedback:
		spec.Body, err = feedbackBody(p)
	case ResourceEvents:
		if op.Action == ActionSubscribe {
			spec.Body, err = subscribeBody(p)
		}
	}
	if err != nil {
		return RequestSpec{}, err
	}

	return spec, nil
}

func (p Params) identifier(id idParam) (value, field string) {
	switch id {
	case idLot:
		return p.LotID, "Lot ID"
	case idOffer:
		return p.OfferID, "Offer ID"
	case idSubscription:
		return p.SubscriptionID, "Subscription ID"
	}
	return "", ""
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupBody struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func authBody(action Action, p Params) (any, error) {
	if err := validate.Var(p.Email, "required,email"); err != nil {
		return nil, newValidationError("Email", "Email must be a valid email address")
	}
	if p.Password == "" {
		return nil, newValidationError("Password", "Password is required")
	}

	if action == ActionLogin {
		return loginBody{Email: p.Email, Password: p.Password}, nil
	}

	displayName, err := SanitizeText(p.DisplayName, "Display Name", maxDisplayNameLength)
	if err != nil {
		return nil, err
	}
	return signupBody{Email: p.Email, Password: p.Password, DisplayName: displayName}, nil
}

func statsQuery(action Action, p Params) ([]QueryParam, error) {
	var query []QueryParam

	if p.TimeSpan != "" {
		if !contains(timeSpans, p.TimeSpan) {
			return nil, newValidationError("Time Span", "Time Span must be one of: %s", strings.Join(timeSpans, ", "))
		}
		query = append(query, QueryParam{Key: "timeSpan", Value: p.TimeSpan})
	}

	if action == ActionLotsStats && p.GroupBy != "" {
		if err := validate.Var(p.GroupBy, "oneof=status category date"); err != nil {
			return nil, newValidationError("Group By", "Group By must be one of: status, category, date")
		}
		query = append(query, QueryParam{Key: "groupBy", Value: p.GroupBy})
	}

	return query, nil
}

type lotCreateBody struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Budget      float64 `json:"budget"`
	Currency    string  `json:"currency,omitempty"`
	Timeline    string  `json:"timeline"`
}

func lotsBody(action Action, p Params) (any, error) {
	switch action {
	case ActionList:
		if p.Limit != 0 {
			if err := ValidateNumberRange(p.Limit, "Limit", 0, maxLimit); err != nil {
				return nil, err
			}
		}
		return nil, nil
	case ActionCreate:
	default:
		return nil, nil
	}

	title, err := requiredText(p.Title, "Title", maxTitleLength)
	if err != nil {
		return nil, err
	}
	description, err := requiredText(p.Description, "Description", maxDescriptionLength)
	if err != nil {
		return nil, err
	}
	category, err := requiredText(p.Category, "Category", maxCategoryLength)
	if err != nil {
		return nil, err
	}
	if err := ValidateNumberRange(p.Budget, "Budget", 0, maxMoney); err != nil {
		return nil, err
	}
	timeline, err := SanitizeText(p.Timeline, "Timeline", maxTimelineLength)
	if err != nil {
		return nil, err
	}

	return lotCreateBody{
		Title:       title,
		Description: description,
		Category:    category,
		Budget:      p.Budget,
		Currency:    p.Currency,
		Timeline:    timeline,
	}, nil
}

type offerCreateBody struct {
	LotID    string  `json:"lotId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
	Message  string  `json:"message"`
	Timeline string  `json:"timeline"`
}

func offerBody(p Params) (any, error) {
	if err := ValidateIdentifier(p.LotID, "Lot ID"); err != nil {
		return nil, err
	}
	if err := ValidateNumberRange(p.Amount, "Amount", 0, maxMoney); err != nil {
		return nil, err
	}
	message, err := SanitizeText(p.Message, "Message", maxMessageLength)
	if err != nil {
		return nil, err
	}
	timeline, err := SanitizeText(p.Timeline, "Timeline", maxTimelineLength)
	if err != nil {
		return nil, err
	}

	return offerCreateBody{
		LotID:    p.LotID,
		Amount:   p.Amount,
		Currency: p.Currency,
		Message:  message,
		Timeline: timeline,
	}, nil
}

type feedbackCreateBody struct {
	OfferID string  `json:"offerId"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

func feedbackBody(p Params) (any, error) {
	if err := ValidateIdentifier(p.OfferID, "Offer ID"); err != nil {
		return nil, err
	}
	if err := ValidateNumberRange(p.Rating, "Rating", 1, 5); err != nil {
		return nil, err
	}
	comment, err := SanitizeText(p.Comment, "Comment", maxCommentLength)
	if err != nil {
		return nil, err
	}

	return feedbackCreateBody{OfferID: p.OfferID, Rating: p.Rating, Comment: comment}, nil
}

type subscribeRequestBody struct {
	EventTypes      []string          `json:"eventTypes"`
	CallbackURL     string            `json:"callbackUrl"`
	DeliveryMethod  string            `json:"deliveryMethod"`
	SecurityHeaders map[string]string `json:"securityHeaders"`
	RetryPolicy     string            `json:"retryPolicy"`
	DLQEnabled      bool              `json:"dlqEnabled"`
}

func subscribeBody(p Params) (any, error) {
	if len(p.EventTypes) == 0 {
		return nil, newValidationError("Event Types", "Event Types must contain at least one event type")
	}
	for _, et := range p.EventTypes {
		if !contains(eventTypes, et) {
			return nil, newValidationError("Event Types", "Event Types contains unknown event type %q", et)
		}
	}
	if err := ValidateHTTPSURL(p.CallbackURL, "Callback URL"); err != nil {
		return nil, err
	}

	deliveryMethod := orDefault(p.DeliveryMethod, "webhook")
	if err := validate.Var(deliveryMethod, "oneof=webhook websocket"); err != nil {
		return nil, newValidationError("Delivery Method", "Delivery Method must be one of: webhook, websocket")
	}
	retryPolicy := orDefault(p.RetryPolicy, "standard")
	if err := validate.Var(retryPolicy, "oneof=standard fast none"); err != nil {
		return nil, newValidationError("Retry Policy", "Retry Policy must be one of: standard, fast, none")
	}

	return subscribeRequestBody{
		EventTypes:      p.EventTypes,
		CallbackURL:     p.CallbackURL,
		DeliveryMethod:  deliveryMethod,
		SecurityHeaders: nameValueObject(p.SecurityHeaders),
		RetryPolicy:     retryPolicy,
		DLQEnabled:      p.DLQEnabled,
	}, nil
}

func requiredText(text, field string, maxLen int) (string, error) {
	out, err := SanitizeText(text, field, maxLen)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", newValidationError(field, "%s is required", field)
	}
	return out, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// encodeComponent escapes like JavaScript's encodeURIComponent: every byte
// outside A-Z a-z 0-9 and - _ . ! ~ * ' ( ) becomes %XX.
func encodeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// methodHasBody reports whether the HTTP method carries a request body.
func methodHasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
