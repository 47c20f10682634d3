package marketplace

import "strings"

// Environment selects one of the hosted deployments.
type Environment string

const (
	EnvironmentDev  Environment = "dev"
	EnvironmentProd Environment = "prod"
)

var baseURLs = map[Environment]string{
	EnvironmentDev:  "https://4lhcdoghbl.execute-api.eu-central-1.amazonaws.com/dev",
	EnvironmentProd: "https://d51z3o93bhujm.cloudfront.net",
}

// ResolveBaseURL returns override when set, otherwise the URL of env. Empty
// env means dev, matching the node form default. A trailing slash is removed.
func ResolveBaseURL(env Environment, override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		return strings.TrimRight(override, "/"), nil
	}
	if env == "" {
		env = EnvironmentDev
	}
	base, ok := baseURLs[env]
	if !ok {
		return "", newValidationError("Environment", "Environment must be one of: dev, prod (got %q)", string(env))
	}
	return base, nil
}
