package model

// LogoutScope selects which refresh tokens a successful logout revokes.
type LogoutScope string

const (
	// LogoutScopeAll revokes every refresh token of the user.
	LogoutScopeAll LogoutScope = "all"
	// LogoutScopeSingle revokes only the presented refresh token.
	LogoutScopeSingle LogoutScope = "single"
)

// RegisterParams are the inputs of a registration.
type RegisterParams struct {
	Email       string
	Password    string
	DisplayName string
}

// LoginParams are the inputs of a login.
type LoginParams struct {
	Email    string
	Password string
}
