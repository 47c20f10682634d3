package marketplace

// Params carries every user-supplied value an operation may read. Field tags
// follow the node parameter names so a resolved parameter map decodes
// straight into it; `default` tags mirror the node form defaults.
type Params struct {
	// auth
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`

	// stats
	TimeSpan string `json:"timeSpan" default:"all time"`
	GroupBy  string `json:"groupBy"`

	// lots
	LotID       string  `json:"lotId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Budget      float64 `json:"budget"`
	Currency    string  `json:"currency" default:"USD"`
	Timeline    string  `json:"timeline"`
	Limit       float64 `json:"limit"`

	// offers
	OfferID string  `json:"offerId"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`

	// feedback
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`

	// events
	EventTypes      []string    `json:"eventTypes"`
	CallbackURL     string      `json:"callbackUrl"`
	DeliveryMethod  string      `json:"deliveryMethod" default:"webhook"`
	SubscriptionID  string      `json:"subscriptionId"`
	SecurityHeaders []NameValue `json:"securityHeaders"`
	RetryPolicy     string      `json:"retryPolicy" default:"standard"`
	DLQEnabled      bool        `json:"dlqEnabled"`
}

// NameValue is one row of a header-style collection parameter.
type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Time spans accepted by the statistics endpoints.
var timeSpans = []string{"today", "7 days", "30 days", "all time"}

// Event types accepted by the subscribe endpoint.
var eventTypes = []string{"onLotCreated", "onLotClosed", "onOfferCreated", "onOfferStatusChanged", "onFeedbackLeft"}

// nameValueObject folds a name/value list into an object, skipping rows with
// an empty name or value.
func nameValueObject(rows []NameValue) map[string]string {
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.Name == "" || row.Value == "" {
			continue
		}
		out[row.Name] = row.Value
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
