package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	accountUsecases "github.com/quillstore/quill/internal/application/account/usecases"
	"github.com/quillstore/quill/internal/infrastructure/auth"
	"github.com/quillstore/quill/internal/shared/constants"
	"github.com/quillstore/quill/internal/shared/logger"
	"github.com/quillstore/quill/internal/shared/utils"
)

type AuthMiddleware struct {
	sessions      *auth.SessionService
	ensureAccount *accountUsecases.EnsureAccountUseCase
	logger        logger.Interface
}

func NewAuthMiddleware(
	sessions *auth.SessionService,
	ensureAccount *accountUsecases.EnsureAccountUseCase,
	logger logger.Interface,
) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:      sessions,
		ensureAccount: ensureAccount,
		logger:        logger,
	}
}

// RequireAuth verifies the bearer token and resolves the account,
// provisioning it on first sight. The account's database ID, SID and
// role are placed on the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		claims, err := m.sessions.Verify(token)
		if err != nil {
			m.logger.Warnw("failed to verify session token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		acct, err := m.ensureAccount.Execute(c.Request.Context(), accountUsecases.EnsureAccountCommand{
			SID:         claims.AccountSID(),
			Email:       claims.Email,
			DisplayName: claims.DisplayName,
		})
		if err != nil {
			m.logger.Errorw("failed to resolve session account",
				"error", err,
				"account_sid", claims.AccountSID(),
			)
			utils.ErrorResponse(c, http.StatusUnauthorized, "unknown account")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyAccountID, acct.ID())
		c.Set(constants.ContextKeyAccountSID, acct.SID())
		// Role comes from our row, not the token: a stale token must
		// not grant revoked admin access.
		c.Set(constants.ContextKeyAccountRole, acct.Role())

		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(constants.ContextKeyAccountRole)
		if !exists || role != constants.RoleAdmin {
			utils.ErrorResponse(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
