package handlers

import (
	"errors"
	"net/http"
	"strings"

	"campuseats/internal/common"
	"campuseats/internal/models"
	"campuseats/internal/repositories"
	"campuseats/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles signup, login and the federated callback
type AuthHandlers struct {
	authService      services.AuthService
	federatedService services.FederatedAuthService
	roleService      services.RoleService
	profileRepo      repositories.ProfileRepository
}

func NewAuthHandlers(authService services.AuthService, federatedService services.FederatedAuthService, roleService services.RoleService, profileRepo repositories.ProfileRepository) *AuthHandlers {
	return &AuthHandlers{
		authService:      authService,
		federatedService: federatedService,
		roleService:      roleService,
		profileRepo:      profileRepo,
	}
}

// Signup handles POST /auth/signup
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if len(req.Password) < 8 {
		return common.SendValidationError(c, "password", "password must be at least 8 characters")
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = models.RoleStudent
	}
	if !models.ValidRole(role) {
		return common.SendValidationError(c, "role", "role must be student or vendor")
	}

	resp, err := h.authService.Signup(c.Request().Context(), strings.ToLower(strings.TrimSpace(req.Email)), strings.TrimSpace(req.Name), req.Password, role)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return common.SendConflictError(c, "Email already registered")
		}
		c.Logger().Errorf("signup failed: %v", err)
		return common.SendServerError(c, "Failed to create account")
	}

	return c.JSON(http.StatusCreated, resp)
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	resp, err := h.authService.Login(c.Request().Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return common.SendUnauthorizedError(c)
		}
		c.Logger().Errorf("login failed: %v", err)
		return common.SendServerError(c, "Failed to log in")
	}

	return c.JSON(http.StatusOK, resp)
}

// FederatedCallback handles POST /auth/callback. The identity provider
// redirects here with a signed ID token; a profile and default role are
// provisioned on first sign-in.
func (h *AuthHandlers) FederatedCallback(c echo.Context) error {
	if h.federatedService == nil {
		return common.SendNotFoundError(c, "Federated sign-in")
	}

	var req struct {
		IDToken string `json:"id_token"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.IDToken == "" {
		// Some providers deliver the token as a query parameter.
		req.IDToken = c.QueryParam("id_token")
	}
	if req.IDToken == "" {
		return common.SendValidationError(c, "id_token", "id_token is required")
	}

	resp, err := h.federatedService.HandleCallback(c.Request().Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidIDToken) {
			return common.SendUnauthorizedError(c)
		}
		c.Logger().Errorf("federated callback failed: %v", err)
		return common.SendServerError(c, "Failed to complete sign-in")
	}

	return c.JSON(http.StatusOK, resp)
}

// Me handles GET /auth/me
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	profile, err := h.profileRepo.GetByID(ctx, userID)
	if err != nil {
		c.Logger().Errorf("profile lookup failed: %v", err)
		return common.SendServerError(c, "Failed to load profile")
	}
	if profile == nil {
		return common.SendNotFoundError(c, "Profile")
	}

	role, err := h.roleService.Resolve(ctx, userID)
	if err != nil {
		c.Logger().Errorf("role resolve failed: %v", err)
		return common.SendServerError(c, "Failed to resolve role")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"profile": profile,
		"role":    role,
	})
}

// SetNotifications handles PUT /auth/me/notifications
func (h *AuthHandlers) SetNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.profileRepo.SetNotificationsEnabled(ctx, userID, req.Enabled); err != nil {
		c.Logger().Errorf("notification preference update failed: %v", err)
		return common.SendServerError(c, "Failed to update preference")
	}

	return c.JSON(http.StatusOK, map[string]bool{"enabled": req.Enabled})
}

// Logout handles POST /auth/logout
func (h *AuthHandlers) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		return common.SendUnauthorizedError(c)
	}

	if err := h.authService.RevokeToken(c.Request().Context(), tokenString); err != nil {
		c.Logger().Errorf("token revocation failed: %v", err)
		return common.SendServerError(c, "Failed to log out")
	}

	return c.NoContent(http.StatusNoContent)
}
