package server

import (
	"context"
	"net/http"
	"strings"

	"discofm/core/auth"
	"discofm/logger"
	"discofm/model"
	"discofm/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey int

const userContextKey contextKey = iota

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userPayload is the client-facing user projection used in auth responses.
func userPayload(user *model.User) map[string]interface{} {
	return map[string]interface{}{
		"id":       user.ID.Hex(),
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	}
}

// RegisterHandler handles user registration.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("failed to hash password", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         model.RoleUser,
	}

	if _, err := h.userRepo.Create(r.Context(), user); err != nil {
		if err == repository.ErrDuplicateUser {
			respondError(w, http.StatusBadRequest, "Email or username already in use")
			return
		}
		logger.Error("failed to create user", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.tokens.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		logger.Error("failed to generate token", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.Info("user registered", logger.String("username", user.Username))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User registered successfully",
		"token":   token,
		"user":    userPayload(user),
	})
}

// LoginHandler handles user login. Unknown email and wrong password return
// the same generic message.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.userRepo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		logger.Error("failed to look up user", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if user == nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		logger.Warn("login rejected", logger.String("email", req.Email))
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		logger.Error("failed to generate token", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.Info("user logged in", logger.String("username", user.Username))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user":    userPayload(user),
	})
}

// MeHandler returns the authenticated user.
func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": userPayload(user)})
}

// AuthMiddleware verifies the bearer token, resolves the user it references
// and attaches the user to the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := h.tokens.ParseToken(parts[1])
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		user, err := h.userRepo.GetByID(r.Context(), userID)
		if err != nil {
			logger.Error("failed to resolve token user", logger.ErrorField(err))
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if user == nil {
			respondError(w, http.StatusUnauthorized, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// AdminMiddleware requires an authenticated admin. Must run after
// AuthMiddleware.
func (h *APIHandler) AdminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || user.Role != model.RoleAdmin {
			respondError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok
}
