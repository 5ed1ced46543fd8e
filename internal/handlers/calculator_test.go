package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/mindwellhq/mindwell-backend/internal/middleware"
)

func TestSaveScoreUnauthenticated(t *testing.T) {
	score := 5
	rec := postJSON(t, SaveScore, "/api/save-score", SaveScoreRequest{CalculatorName: "phq9", Score: &score})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestUserLatestScoresUnauthenticated(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/user/scores", nil)
	rec := httptest.NewRecorder()
	UserLatestScores(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSaveScoreMissingFields(t *testing.T) {
	score := 5
	tests := []struct {
		name       string
		req        SaveScoreRequest
		wantFields []string
	}{
		{"no calculator name", SaveScoreRequest{Score: &score}, []string{"calculator_name"}},
		{"no score", SaveScoreRequest{CalculatorName: "phq9"}, []string{"score"}},
		{"empty body", SaveScoreRequest{}, []string{"calculator_name", "score"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, _ := json.Marshal(tt.req)
			req := httptest.NewRequest("POST", "/api/save-score", bytes.NewReader(data))
			req = req.WithContext(middleware.WithUser(req.Context(), uuid.New(), "user"))
			rec := httptest.NewRecorder()
			SaveScore(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			var body map[string][]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("bad json body: %v", err)
			}
			// only the fields actually missing may be reported
			if len(body) != len(tt.wantFields) {
				t.Errorf("expected %d field errors, got %v", len(tt.wantFields), body)
			}
			for _, f := range tt.wantFields {
				if len(body[f]) == 0 {
					t.Errorf("expected a %s field error, got %v", f, body)
				}
			}
		})
	}
}

func TestSaveScoreZeroIsValid(t *testing.T) {
	// a score of 0 must not be treated as missing
	zero := 0
	req := SaveScoreRequest{CalculatorName: "phq9", Score: &zero}
	data, _ := json.Marshal(req)

	var decoded SaveScoreRequest
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Score == nil {
		t.Fatal("zero score decoded as nil")
	}
	if *decoded.Score != 0 {
		t.Errorf("expected 0, got %d", *decoded.Score)
	}
}
