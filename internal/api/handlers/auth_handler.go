package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vibhu2208/Aadhar-Homes/internal/api/middleware"
	"github.com/vibhu2208/Aadhar-Homes/internal/auth"
	"github.com/vibhu2208/Aadhar-Homes/internal/config"
	"github.com/vibhu2208/Aadhar-Homes/internal/models"
	"github.com/vibhu2208/Aadhar-Homes/internal/services"
	"github.com/vibhu2208/Aadhar-Homes/internal/utils"
)

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	accountService services.IAccountService
	cfg            *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accountService services.IAccountService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{accountService: accountService, cfg: cfg}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func toAccountResponse(account *models.Account) accountResponse {
	return accountResponse{
		ID:    account.ID.String(),
		Name:  account.Name,
		Email: account.Email,
		Role:  account.Role,
	}
}

// Register handles POST /api/auth/register. The first-ever registration
// creates the admin account without authentication; after that only an
// authenticated admin may register accounts.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	role := c.GetString(middleware.ContextKeyRole)
	authenticated := c.GetString(middleware.ContextKeyAccountID) != ""
	if authenticated && role != "admin" {
		respondError(c, http.StatusForbidden, services.ErrNotAdmin.Error())
		return
	}

	account, err := h.accountService.Register(c.Request.Context(), services.RegisterParams{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Role:          models.Role(req.Role),
		CallerIsAdmin: role == "admin",
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRegistrationRestricted):
			respondError(c, http.StatusUnauthorized, err.Error())
		case services.IsValidationError(err), services.IsDuplicateFieldError(err):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	token, err := auth.GenerateJWT(h.cfg.JwtSecret, account.ID.String(), string(account.Role), h.cfg.JwtTTL)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"token":   token,
		"data":    toAccountResponse(account),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	account, err := h.accountService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, err.Error())
			return
		}
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	token, err := auth.GenerateJWT(h.cfg.JwtSecret, account.ID.String(), string(account.Role), h.cfg.JwtTTL)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"data":    toAccountResponse(account),
	})
}

// Me handles GET /api/auth/me. Requires authentication.
func (h *AuthHandler) Me(c *gin.Context) {
	accountID, err := utils.ParseSixID(c.GetString(middleware.ContextKeyAccountID))
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid session")
		return
	}

	account, err := h.accountService.FindByID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": toAccountResponse(account)})
}

// Logout handles POST /api/auth/logout. Sessions are stateless JWTs, so the
// server has nothing to revoke; clients drop the token.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}
