package handler

// Context keys shared between middleware and handlers.
const (
	// ContextAPIKey holds the *model.APIKey resolved by the API-key
	// middleware.
	ContextAPIKey = "api_key"
	// ContextUser holds the *model.AuthContext resolved from the
	// session cookie, when one resolves.
	ContextUser = "current_user"
)
