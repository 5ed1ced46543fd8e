package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mindwellhq/mindwell-backend/internal/config"
	"github.com/mindwellhq/mindwell-backend/internal/database"
	"github.com/mindwellhq/mindwell-backend/internal/middleware"
	"github.com/mindwellhq/mindwell-backend/internal/models"
	"github.com/mindwellhq/mindwell-backend/internal/services"
	"github.com/mindwellhq/mindwell-backend/pkg/utils"
)

const (
	refreshCookieName = "refresh_token"
	// The refresh cookie is scoped to the refresh endpoint only; no other
	// request ever carries it.
	refreshCookiePath = "/api/token/refresh"
)

var (
	jwtSecret     string
	secureCookies bool
)

// Init wires handler-level settings from config. Must run before the router
// serves traffic.
func Init(cfg *config.Config) {
	jwtSecret = cfg.JWTSecret
	secureCookies = cfg.IsProduction()
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func setRefreshCookie(w http.ResponseWriter, raw string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    raw,
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     refreshCookiePath,
		MaxAge:   int(services.RefreshTokenDuration.Seconds()),
	})
}

// issueTokens mints an access token plus a fresh refresh token for the user
// and sets the refresh cookie. Returns the access token.
func issueTokens(w http.ResponseWriter, r *http.Request, userID uuid.UUID, role string) (string, error) {
	access, err := services.MakeAccessToken(userID.String(), role, jwtSecret)
	if err != nil {
		return "", err
	}

	rawRefresh, refreshHash, err := services.GenerateRefreshToken()
	if err != nil {
		return "", err
	}
	expiry := time.Now().Add(services.RefreshTokenDuration)
	if _, err := services.CreateRefreshToken(r.Context(), userID, refreshHash, expiry); err != nil {
		return "", err
	}

	setRefreshCookie(w, rawRefresh)
	return access, nil
}

// Login handles POST /api/token: credentials in, access token + user fields
// in the body, refresh token in an HTTP-only cookie.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		errorJSON(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	var (
		userID       uuid.UUID
		passwordHash string
		email, role  string
		phone        sql.NullString
		firstName    string
		lastName     string
	)
	err := database.PostgresDB.QueryRowContext(r.Context(), `
		SELECT id, password_hash, email, role, phone, first_name, last_name
		FROM users WHERE username = $1
	`, req.Username).Scan(&userID, &passwordHash, &email, &role, &phone, &firstName, &lastName)
	if err != nil {
		if err == sql.ErrNoRows {
			errorJSON(w, http.StatusUnauthorized, "No active account found with the given credentials")
		} else {
			errorJSON(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	valid, err := utils.VerifyPassword(req.Password, passwordHash)
	if err != nil || !valid {
		errorJSON(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	access, err := issueTokens(w, r, userID, role)
	if err != nil {
		log.Printf("ERROR: failed to issue tokens: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access":     access,
		"id":         userID.String(),
		"username":   req.Username,
		"email":      email,
		"phone":      phone.String,
		"first_name": firstName,
		"last_name":  lastName,
	})
}

// Signup handles POST /api/signup: creates the account and logs it in
// immediately, issuing the same cookie as Login.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		errorJSON(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}
	if len(req.Password) < 8 {
		errorJSON(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if req.Role != models.RoleUser && req.Role != models.RoleTherapist {
		errorJSON(w, http.StatusBadRequest, "Invalid role")
		return
	}

	var existing string
	err := database.PostgresDB.QueryRowContext(r.Context(),
		"SELECT username FROM users WHERE username = $1", req.Username).Scan(&existing)
	if err == nil {
		errorJSON(w, http.StatusConflict, "A user with that username already exists")
		return
	} else if err != sql.ErrNoRows {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	userID := uuid.New()
	now := time.Now()
	_, err = database.PostgresDB.ExecContext(r.Context(), `
		INSERT INTO users (id, created_at, username, email, password_hash, phone, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, userID, now, req.Username, req.Email, passwordHash, req.Phone, req.FirstName, req.LastName, req.Role)
	if err != nil {
		// a concurrent signup can slip past the lookup above; the unique
		// constraint is the source of truth
		if isUniqueViolation(err) {
			errorJSON(w, http.StatusConflict, "A user with that username already exists")
			return
		}
		log.Printf("ERROR: failed to insert user: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	access, err := issueTokens(w, r, userID, req.Role)
	if err != nil {
		log.Printf("ERROR: failed to issue tokens: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user": map[string]interface{}{
			"id":         userID.String(),
			"username":   req.Username,
			"email":      req.Email,
			"phone":      req.Phone,
			"role":       req.Role,
			"first_name": req.FirstName,
			"last_name":  req.LastName,
		},
		"access": access,
	})
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (class 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Logout handles POST /api/logout: revokes every live refresh token for the
// caller and clears the refresh cookie. Outstanding access tokens stay valid
// until they expire.
func Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	if err := services.RevokeUserRefreshTokens(r.Context(), userID); err != nil {
		log.Printf("ERROR: failed to revoke refresh tokens: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     refreshCookiePath,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Logged out."})
}

// Refresh handles POST /api/token/refresh. The refresh token arrives only via
// the HTTP-only cookie; a missing cookie fails authentication outright. On
// success the old token is revoked and replaced (rotation) and a new access
// token is returned.
func Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		errorJSON(w, http.StatusUnauthorized, "Refresh token not found in cookies.")
		return
	}

	rt, err := services.GetRefreshTokenByHash(r.Context(), services.HashRefreshToken(cookie.Value))
	if err != nil {
		errorJSON(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	if !rt.Usable() {
		errorJSON(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}

	var role string
	if err := database.PostgresDB.QueryRowContext(r.Context(),
		"SELECT role FROM users WHERE id = $1", rt.UserID).Scan(&role); err != nil {
		errorJSON(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}

	rawRefresh, refreshHash, err := services.GenerateRefreshToken()
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}
	newExpiry := time.Now().Add(services.RefreshTokenDuration)
	if _, err := services.RotateRefreshToken(r.Context(), rt.ID, rt.UserID, refreshHash, newExpiry); err != nil {
		log.Printf("ERROR: failed to rotate refresh token: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}

	access, err := services.MakeAccessToken(rt.UserID.String(), role, jwtSecret)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}

	setRefreshCookie(w, rawRefresh)
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}
