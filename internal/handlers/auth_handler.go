package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/services"
)

// TokenIssuer issues access tokens for authenticated users.
type TokenIssuer interface {
	Generate(user *models.User) (string, error)
	TTL() time.Duration
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService services.UserServicer
	tokens      TokenIssuer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{userService: userService, tokens: tokens}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,max=64"`
	Password        string `json:"password" binding:"required,max=128"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse represents the user data in the response
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// AuthResponse represents the authentication response with token
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
	User      UserResponse `json:"user"`
}

func newUserResponse(user *models.User) UserResponse {
	return UserResponse{ID: user.ID, Username: user.Username, LastLoginAt: user.LastLoginAt}
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user with username and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} AuthResponse "User registered and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Username taken"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.CreateUser(req.Username, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and get a token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     423 {object} ErrorResponse "Account locked"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.AttemptLogin(req.Username, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's profile information
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := h.tokens.Generate(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(status, AuthResponse{
		Token:     token,
		ExpiresIn: int64(h.tokens.TTL().Seconds()),
		User:      newUserResponse(user),
	})
}
