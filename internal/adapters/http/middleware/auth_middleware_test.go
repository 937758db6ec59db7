package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"townhall-docflow/internal/adapters/persistence/models"
	"townhall-docflow/internal/config"
	"townhall-docflow/internal/core/domain"
	"townhall-docflow/internal/pkg/jwt"
)

type stubUserRepo struct {
	users map[uint]*models.User
}

func (r *stubUserRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (r *stubUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) Update(ctx context.Context, user *models.User) error { return nil }

func (r *stubUserRepo) Deactivate(ctx context.Context, id uint) error { return nil }

func (r *stubUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (r *stubUserRepo) ListActiveByDepartment(ctx context.Context, departmentID uint) ([]*models.User, error) {
	return nil, nil
}

func (r *stubUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

const testSecret = "unit-test-secret"

func newAuthTestApp(repo *stubUserRepo) *fiber.App {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret, AccessTokenMins: 15}}

	app := fiber.New()
	app.Get("/whoami", AuthMiddleware(cfg, repo), func(c *fiber.Ctx) error {
		p, ok := GetPrincipal(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(p)
	})
	return app
}

func mintToken(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(user.ID, user.Email, user.FullName, user.Role, user.DepartmentID, testSecret, 15)
	require.NoError(t, err)
	return token
}

func TestAuthMiddlewareAcceptsActiveUser(t *testing.T) {
	user := &models.User{ID: 1, Email: "clerk@townhall.gov", FullName: "Clerk", Role: string(domain.RoleEmployee), DepartmentID: 1, IsActive: true}
	repo := &stubUserRepo{users: map[uint]*models.User{1: user}}
	app := newAuthTestApp(repo)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, user))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareRejectsDeactivatedUser(t *testing.T) {
	user := &models.User{ID: 1, Email: "clerk@townhall.gov", FullName: "Clerk", Role: string(domain.RoleEmployee), DepartmentID: 1, IsActive: true}
	repo := &stubUserRepo{users: map[uint]*models.User{1: user}}
	app := newAuthTestApp(repo)

	token := mintToken(t, user)

	// Deactivation takes effect on the next request even though the token
	// is still valid.
	user.IsActive = false
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAuthMiddlewareUsesLiveRoleAndDepartment(t *testing.T) {
	user := &models.User{ID: 1, Email: "clerk@townhall.gov", FullName: "Clerk", Role: string(domain.RoleEmployee), DepartmentID: 1, IsActive: true}
	repo := &stubUserRepo{users: map[uint]*models.User{1: user}}

	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret, AccessTokenMins: 15}}
	app := fiber.New()
	var seen domain.Principal
	app.Get("/whoami", AuthMiddleware(cfg, repo), func(c *fiber.Ctx) error {
		seen, _ = GetPrincipal(c)
		return c.SendStatus(fiber.StatusOK)
	})

	token := mintToken(t, user)

	// The stale role baked into the token loses to the stored record.
	user.Role = string(domain.RoleDepartmentHead)
	user.DepartmentID = 2
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.RoleDepartmentHead, seen.Role)
	assert.Equal(t, uint(2), seen.DepartmentID)
}

func TestAuthMiddlewareRejectsUnknownUser(t *testing.T) {
	user := &models.User{ID: 9, Email: "ghost@townhall.gov", FullName: "Ghost", Role: string(domain.RoleEmployee), DepartmentID: 1, IsActive: true}
	repo := &stubUserRepo{users: map[uint]*models.User{}}
	app := newAuthTestApp(repo)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, user))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareRequiresToken(t *testing.T) {
	repo := &stubUserRepo{users: map[uint]*models.User{}}
	app := newAuthTestApp(repo)

	req := httptest.NewRequest("GET", "/whoami", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
