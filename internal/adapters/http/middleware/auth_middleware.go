package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"townhall-docflow/internal/adapters/persistence/repositories"
	"townhall-docflow/internal/config"
	"townhall-docflow/internal/core/domain"
	"townhall-docflow/internal/pkg/jwt"
	"townhall-docflow/internal/pkg/response"
)

// principalKey is the Locals slot the resolved principal lives in
const principalKey = "principal"

// AuthMiddleware creates authentication middleware. The token only proves
// identity; role, department and active state are re-read per request so a
// deactivation or role change takes effect before the token expires. On
// success the resolved principal is stored in Locals for handlers to pick up.
func AuthMiddleware(cfg *config.Config, userRepo repositories.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Load the live user record
		user, err := userRepo.GetByID(c.Context(), claims.UserID)
		if err != nil {
			return response.Unauthorized(c, "Invalid access token")
		}
		if !user.IsActive {
			return response.Forbidden(c, "User account is inactive")
		}

		// 6. Set principal in context
		c.Locals(principalKey, user.Principal())

		return c.Next()
	}
}

// GetPrincipal extracts the authenticated principal from the request context
func GetPrincipal(c *fiber.Ctx) (domain.Principal, bool) {
	p, ok := c.Locals(principalKey).(domain.Principal)
	return p, ok
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := GetPrincipal(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if p.Role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the admin role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// HeadOrAdmin middleware allows department heads and admins
func HeadOrAdmin() fiber.Handler {
	return RoleMiddleware(domain.RoleDepartmentHead, domain.RoleAdmin)
}
