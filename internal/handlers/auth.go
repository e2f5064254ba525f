package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/promanage/taskboard/internal/database"
	"github.com/promanage/taskboard/internal/models"
	"github.com/promanage/taskboard/internal/request"
	"github.com/promanage/taskboard/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles registration, login, and the user directory
type AuthHandler struct {
	userRepo database.UserStore
	secret   []byte
	issuer   string
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userRepo database.UserStore, secret []byte, issuer string, tokenTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		secret:   secret,
		issuer:   issuer,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// RegisterPublicRoutes registers the unauthenticated auth routes.
// The router should already have the /auth prefix.
func (h *AuthHandler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
}

// RegisterProtectedRoutes registers the auth routes that require a
// valid session. The middleware is applied per-route so the public
// login and register routes on the same router stay reachable.
func (h *AuthHandler) RegisterProtectedRoutes(r *mux.Router, authMW func(http.Handler) http.Handler) {
	r.Handle("/getAllUsers/{userId}", authMW(http.HandlerFunc(h.GetAllUsers))).Methods("GET")
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token and user identity
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Register creates a new user account with a bcrypt-hashed password
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	req.Name = validation.SanitizeText(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name cannot be empty after sanitization")
		return
	}

	ctx := r.Context()
	if _, err := h.userRepo.GetByEmail(ctx, req.Email); err == nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "User already exists")
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to check existing user")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to hash password")
		return
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := h.userRepo.Create(ctx, user); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create user")
		return
	}

	h.logger.Info("user_registered",
		zap.String("user_id", user.ID.String()),
	)
	respondJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and issues an HS256 session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx := r.Context()
	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to look up user")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.Warn("login_failed",
			zap.String("user_id", user.ID.String()),
		)
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
		return
	}

	now := time.Now()
	tok, err := jwt.NewBuilder().
		Subject(user.ID.String()).
		Issuer(h.issuer).
		IssuedAt(now).
		Expiration(now.Add(h.tokenTTL)).
		Claim("email", user.Email).
		Claim("name", user.Name).
		Build()
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to build session token")
		return
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, h.secret))
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to sign session token")
		return
	}

	respondJSON(w, http.StatusAccepted, LoginResponse{
		Token:  string(signed),
		UserID: user.ID.String(),
		Name:   user.Name,
		Email:  user.Email,
	})
}

// GetAllUsers returns the user directory, excluding the caller. Used by
// clients to populate assignee and accessor pickers.
func (h *AuthHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	userID, err := uuid.Parse(vars["userId"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid user ID")
		return
	}
	if userID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Cannot list users on behalf of another user")
		return
	}

	users, err := h.userRepo.List(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to list users")
		return
	}

	userList := make([]models.UserListing, 0, len(users))
	for _, u := range users {
		if u.ID == userID {
			continue
		}
		userList = append(userList, models.UserListing{
			UserID: u.ID.String(),
			Email:  u.Email,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"userList": userList})
}
