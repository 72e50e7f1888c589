package api

// Account service endpoints
const (
	// Service name
	AccountsService = "accounts.Accounts"

	// Public endpoints
	AccountsRegister = "/accounts.Accounts/Register"
	AccountsLogin    = "/accounts.Accounts/Login"

	// Endpoints requiring a session token
	AccountsGetProfile    = "/accounts.Accounts/GetProfile"
	AccountsUpdateProfile = "/accounts.Accounts/UpdateProfile"
)

// PublicEndpoints defines endpoints that don't require authentication
var PublicEndpoints = map[string]bool{
	AccountsRegister: true,
	AccountsLogin:    true,
}

// REST routes served to the single-page application.
const (
	RoutePrefix   = "/api/v1/users"
	RouteRegister = "/register"
	RouteLogin    = "/login"
	RouteProfile  = "/profile"
	RouteMetrics  = "/metrics"
	RouteHealth   = "/healthz"
)
