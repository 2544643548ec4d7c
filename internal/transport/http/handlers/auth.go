package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arklim/project-planner/internal/core/domain"
	"github.com/arklim/project-planner/internal/infra/logger"
	"github.com/arklim/project-planner/internal/usecase"
)

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	registration *usecase.RegistrationService
	auth         *usecase.AuthService
	logger       *zap.Logger
}

// NewAuthHandler builds an auth handler instance.
func NewAuthHandler(registration *usecase.RegistrationService, auth *usecase.AuthService, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{registration: registration, auth: auth, logger: log}
}

// Register godoc
// @Summary Register a new member credential
// @Description Creates a credential with the Member role. Returns every validation violation at once.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegistrationRequest true "Registration payload"
// @Success 201 {object} RegistrationResponse
// @Failure 400 {object} ValidationErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	h.register(c, domain.RoleMember)
}

// RegisterAdmin godoc
// @Summary Register a new organization admin credential
// @Description Creates a credential with the OrgAdmin role. Returns every validation violation at once.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegistrationRequest true "Registration payload"
// @Success 201 {object} RegistrationResponse
// @Failure 400 {object} ValidationErrorResponse
// @Router /api/v1/auth/register-admin [post]
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	h.register(c, domain.RoleOrgAdmin)
}

func (h *AuthHandler) register(c *gin.Context, role string) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	credential, err := h.registration.RegisterCredential(c.Request.Context(), req.Email, req.Password, role)
	if err != nil {
		var validationErr *usecase.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, NewValidationErrorResponse(c, validationErr.Violations))
			return
		}

		if errors.Is(err, usecase.ErrStoreUnavailable) {
			h.logger.Error("registration rejected, credential store unavailable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "service temporarily unavailable"))
			return
		}

		h.logger.Error("registration failed",
			zap.String("email", logger.MaskEmail(req.Email)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "registration failed"))
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{
		Credential: newCredentialSummary(credential),
		Message:    "registration successful",
	})
}

// Login godoc
// @Summary Authenticate and obtain an access token
// @Description Validates the email/password pair and returns a signed bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	token, _, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		if errors.Is(err, usecase.ErrStoreUnavailable) {
			h.logger.Error("login rejected, credential store unavailable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "service temporarily unavailable"))
			return
		}

		// Lockout deliberately shares the generic body so responses do not
		// reveal whether the account exists or is locked.
		if errors.Is(err, usecase.ErrInvalidCredentials) || errors.Is(err, usecase.ErrAccountLocked) {
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid credentials"))
			return
		}

		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "login failed"))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.auth.TokenTTL().Seconds()),
	})
}
