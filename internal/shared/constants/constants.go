// Package constants defines shared constant values used across layers.
package constants

// Runtime environments
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Pagination defaults
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Gin context keys set by the auth middleware
const (
	ContextKeyAccountID   = "account_id"
	ContextKeyAccountSID  = "account_sid"
	ContextKeyAccountRole = "account_role"
)

// Account roles issued by the external auth provider
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Database table names
const (
	TableAccounts     = "accounts"
	TableProducts     = "products"
	TableEntitlements = "entitlements"
)
