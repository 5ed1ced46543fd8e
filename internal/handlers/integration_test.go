package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/mindwellhq/mindwell-backend/internal/config"
	"github.com/mindwellhq/mindwell-backend/internal/database"
	"github.com/mindwellhq/mindwell-backend/internal/middleware"
)

// setupDB connects to a real PostgreSQL instance. Tests that need one skip
// when POSTGRES_URI is not set.
func setupDB(t *testing.T) {
	t.Helper()
	_ = godotenv.Load("../../.env")
	uri := os.Getenv("POSTGRES_URI")
	if uri == "" {
		t.Skip("POSTGRES_URI not set")
	}
	if database.PostgresDB == nil {
		if err := database.ConnectPostgres(uri); err != nil {
			t.Fatalf("db: %v", err)
		}
	}
	Init(&config.Config{JWTSecret: "integration-test-secret"})
	middleware.JWTSecret = "integration-test-secret"
}

func signupUser(t *testing.T, role string) (uuid.UUID, string, *http.Cookie) {
	t.Helper()
	username := fmt.Sprintf("test-%s", uuid.New().String()[:8])
	rec := postJSON(t, Signup, "/api/signup", SignupRequest{
		Username: username,
		Email:    username + "@test.com",
		Password: "testpass123",
		Role:     role,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Access string `json:"access"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad signup body: %v", err)
	}
	if body.Access == "" {
		t.Fatal("signup returned no access token")
	}
	uid, err := uuid.Parse(body.User.ID)
	if err != nil {
		t.Fatalf("bad user id: %v", err)
	}

	var refresh *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" {
			refresh = c
		}
	}
	if refresh == nil {
		t.Fatal("signup did not set a refresh cookie")
	}
	return uid, username, refresh
}

func TestSignupLoginRefreshFlow(t *testing.T) {
	setupDB(t)

	_, username, _ := signupUser(t, "user")

	// duplicate username is a conflict
	rec := postJSON(t, Signup, "/api/signup", SignupRequest{
		Username: username, Email: "other@test.com", Password: "testpass123",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup: expected 409, got %d", rec.Code)
	}

	// login with the right password
	rec = postJSON(t, Login, "/api/token", LoginRequest{Username: username, Password: "testpass123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var loginBody map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &loginBody)
	if loginBody["access"] == nil || loginBody["access"] == "" {
		t.Error("login returned no access token")
	}
	if loginBody["username"] != username {
		t.Errorf("login username: got %v", loginBody["username"])
	}

	// wrong password
	rec = postJSON(t, Login, "/api/token", LoginRequest{Username: username, Password: "wrongpass"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", rec.Code)
	}

	// refresh with the cookie from login
	var refresh *http.Cookie
	rec = postJSON(t, Login, "/api/token", LoginRequest{Username: username, Password: "testpass123"})
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" {
			refresh = c
		}
	}
	if refresh == nil {
		t.Fatal("login did not set a refresh cookie")
	}

	req := httptest.NewRequest("POST", "/api/token/refresh", nil)
	req.AddCookie(refresh)
	rec2 := httptest.NewRecorder()
	Refresh(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", rec2.Code, rec2.Body.String())
	}
	var refreshBody map[string]string
	json.Unmarshal(rec2.Body.Bytes(), &refreshBody)
	if refreshBody["access"] == "" {
		t.Error("refresh returned no access token")
	}

	// rotation: the old cookie is revoked after one use
	req = httptest.NewRequest("POST", "/api/token/refresh", nil)
	req.AddCookie(refresh)
	rec3 := httptest.NewRecorder()
	Refresh(rec3, req)
	if rec3.Code != http.StatusUnauthorized {
		t.Errorf("reused refresh token: expected 401, got %d", rec3.Code)
	}

	// but the rotated replacement still works
	var rotated *http.Cookie
	for _, c := range rec2.Result().Cookies() {
		if c.Name == "refresh_token" {
			rotated = c
		}
	}
	if rotated == nil {
		t.Fatal("refresh did not rotate the cookie")
	}
	req = httptest.NewRequest("POST", "/api/token/refresh", nil)
	req.AddCookie(rotated)
	rec4 := httptest.NewRecorder()
	Refresh(rec4, req)
	if rec4.Code != http.StatusOK {
		t.Errorf("rotated token: expected 200, got %d", rec4.Code)
	}
}

func TestLogoutRevokesRefreshTokens(t *testing.T) {
	setupDB(t)

	userID, _, refresh := signupUser(t, "user")

	req := httptest.NewRequest("POST", "/api/logout", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), userID, "user"))
	rec := httptest.NewRecorder()
	Logout(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// the cleared cookie is expired
	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" {
			cleared = c
		}
	}
	if cleared == nil {
		t.Fatal("logout did not clear the refresh cookie")
	}
	if cleared.MaxAge >= 0 {
		t.Errorf("cleared cookie max-age: got %d, want negative", cleared.MaxAge)
	}

	// the refresh token issued at signup no longer works
	req = httptest.NewRequest("POST", "/api/token/refresh", nil)
	req.AddCookie(refresh)
	rec = httptest.NewRecorder()
	Refresh(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh after logout: expected 401, got %d", rec.Code)
	}
}

func TestBookingFlow(t *testing.T) {
	setupDB(t)

	patientID, _, _ := signupUser(t, "user")
	therapistID, _, _ := signupUser(t, "therapist")

	// booking a non-therapist fails with a field error
	data, _ := json.Marshal(CreateBookingRequest{TherapistID: patientID.String()})
	req := httptest.NewRequest("POST", "/api/bookings", bytes.NewReader(data))
	req = req.WithContext(middleware.WithUser(req.Context(), patientID, "user"))
	rec := httptest.NewRecorder()
	CreateBooking(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("booking a non-therapist: expected 400, got %d", rec.Code)
	}

	// valid booking
	data, _ = json.Marshal(CreateBookingRequest{
		TherapistID:   therapistID.String(),
		Date:          "2026-09-15",
		Time:          "14:30",
		PaymentMethod: "online",
	})
	req = httptest.NewRequest("POST", "/api/bookings", bytes.NewReader(data))
	req = req.WithContext(middleware.WithUser(req.Context(), patientID, "user"))
	rec = httptest.NewRecorder()
	CreateBooking(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create booking: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created["status"] != "pending" {
		t.Errorf("new booking status: got %v", created["status"])
	}
	if created["paid"] != false {
		t.Errorf("new booking paid: got %v", created["paid"])
	}

	// the patient sees it in their list; another user does not
	req = httptest.NewRequest("GET", "/api/bookings", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), patientID, "user"))
	rec = httptest.NewRecorder()
	ListMyBookings(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list bookings: expected 200, got %d", rec.Code)
	}
	var bookings []map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &bookings)
	if len(bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(bookings))
	}

	otherID, _, _ := signupUser(t, "user")
	req = httptest.NewRequest("GET", "/api/bookings", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), otherID, "user"))
	rec = httptest.NewRecorder()
	ListMyBookings(rec, req)
	var otherBookings []map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &otherBookings)
	if len(otherBookings) != 0 {
		t.Errorf("other user sees %d bookings, expected 0", len(otherBookings))
	}
}

func TestSaveScoreAndLatestScores(t *testing.T) {
	setupDB(t)

	userID, _, _ := signupUser(t, "user")

	calcName := fmt.Sprintf("calc-%s", uuid.New().String()[:8])
	if _, err := database.PostgresDB.Exec(`
		INSERT INTO calculators (name, description) VALUES ($1, 'test calculator')
	`, calcName); err != nil {
		t.Fatalf("insert calculator: %v", err)
	}

	saveScore := func(score int) *httptest.ResponseRecorder {
		data, _ := json.Marshal(SaveScoreRequest{CalculatorName: calcName, Score: &score})
		req := httptest.NewRequest("POST", "/api/save-score", bytes.NewReader(data))
		req = req.WithContext(middleware.WithUser(req.Context(), userID, "user"))
		rec := httptest.NewRecorder()
		SaveScore(rec, req)
		return rec
	}

	// unknown calculator is a 404
	data, _ := json.Marshal(SaveScoreRequest{CalculatorName: "no-such-calculator", Score: new(int)})
	req := httptest.NewRequest("POST", "/api/save-score", bytes.NewReader(data))
	req = req.WithContext(middleware.WithUser(req.Context(), userID, "user"))
	rec := httptest.NewRecorder()
	SaveScore(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown calculator: expected 404, got %d", rec.Code)
	}

	// two scores on the same calculator: only the latest comes back
	if rec := saveScore(3); rec.Code != http.StatusCreated {
		t.Fatalf("save score 3: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := saveScore(7); rec.Code != http.StatusCreated {
		t.Fatalf("save score 7: expected 201, got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/user/scores", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), userID, "user"))
	rec = httptest.NewRecorder()
	UserLatestScores(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("latest scores: expected 200, got %d", rec.Code)
	}

	var scores []map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &scores)
	var found int
	for _, s := range scores {
		if s["calculator_name"] == calcName {
			found++
			if s["score"] != float64(7) {
				t.Errorf("latest score: got %v, want 7", s["score"])
			}
		}
	}
	if found != 1 {
		t.Errorf("expected exactly 1 row for the calculator, got %d", found)
	}
}
