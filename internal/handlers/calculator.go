package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mindwellhq/mindwell-backend/internal/database"
	"github.com/mindwellhq/mindwell-backend/internal/middleware"
	"github.com/mindwellhq/mindwell-backend/internal/models"
)

type SaveScoreRequest struct {
	CalculatorName string `json:"calculator_name"`
	Score          *int   `json:"score"`
}

// ListCalculators returns every calculator's name, description and image.
// No pagination, no filtering.
func ListCalculators(w http.ResponseWriter, r *http.Request) {
	rows, err := database.PostgresDB.QueryContext(r.Context(),
		"SELECT name, description, img FROM calculators ORDER BY name")
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	type calculatorSummary struct {
		Name        string `json:"name"`
		Description string `json:"desc"`
		Img         string `json:"img,omitempty"`
	}

	calculators := make([]calculatorSummary, 0)
	for rows.Next() {
		var c calculatorSummary
		var img sql.NullString
		if err := rows.Scan(&c.Name, &c.Description, &img); err != nil {
			errorJSON(w, http.StatusInternalServerError, "Database error")
			return
		}
		c.Img = img.String
		calculators = append(calculators, c)
	}
	if err := rows.Err(); err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, calculators)
}

// GetCalculatorDetail returns a calculator by unique name together with its
// full question set and result bands, in storage order.
func GetCalculatorDetail(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var c models.Calculator
	var img sql.NullString
	err := database.PostgresDB.QueryRowContext(r.Context(), `
		SELECT id, name, description, sub_description, caution, scoring_name,
			leveling_name, calculation_para, result_line, img
		FROM calculators WHERE name = $1
	`, name).Scan(&c.ID, &c.Name, &c.Description, &c.SubDescription, &c.Caution,
		&c.ScoringName, &c.LevelingName, &c.CalculationPara, &c.ResultLine, &img)
	if err != nil {
		if err == sql.ErrNoRows {
			notFound(w)
		} else {
			errorJSON(w, http.StatusInternalServerError, "Database error")
		}
		return
	}
	c.Img = img.String

	questions, err := calculatorQuestions(r, c.ID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	results, err := calculatorResults(r, c.ID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":                   c.ID,
		"name":                 c.Name,
		"desc":                 c.Description,
		"sub_desc":             c.SubDescription,
		"caution":              c.Caution,
		"scoring_name":         c.ScoringName,
		"leveling_name":        c.LevelingName,
		"calculation_para":     c.CalculationPara,
		"result_line":          c.ResultLine,
		"img":                  c.Img,
		"calculator_questions": questions,
		"calculator_results":   results,
	})
}

func calculatorQuestions(r *http.Request, calculatorID uuid.UUID) ([]models.CalculatorQuestion, error) {
	rows, err := database.PostgresDB.QueryContext(r.Context(), `
		SELECT id, calculator_id, question, option1, option2, option3, option4
		FROM calculator_questions WHERE calculator_id = $1
	`, calculatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]models.CalculatorQuestion, 0)
	for rows.Next() {
		var q models.CalculatorQuestion
		var question, o1, o2, o3, o4 sql.NullString
		if err := rows.Scan(&q.ID, &q.CalculatorID, &question, &o1, &o2, &o3, &o4); err != nil {
			return nil, err
		}
		q.Question = question.String
		q.Option1 = o1.String
		q.Option2 = o2.String
		q.Option3 = o3.String
		q.Option4 = o4.String
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func calculatorResults(r *http.Request, calculatorID uuid.UUID) ([]models.CalculatorResult, error) {
	rows, err := database.PostgresDB.QueryContext(r.Context(), `
		SELECT min_score, max_score, result
		FROM calculator_results WHERE calculator_id = $1
	`, calculatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.CalculatorResult, 0)
	for rows.Next() {
		var res models.CalculatorResult
		var max sql.NullInt64
		if err := rows.Scan(&res.Min, &max, &res.Result); err != nil {
			return nil, err
		}
		if max.Valid {
			v := int(max.Int64)
			res.Max = &v
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// UserLatestScores returns, for each calculator the caller has ever scored,
// exactly one row: the most recent score. A classic top-1-per-group query;
// rows sharing a created_at are tie-broken by highest primary key, so the
// last inserted row wins.
func UserLatestScores(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	rows, err := database.PostgresDB.QueryContext(r.Context(), `
		SELECT c.name, s.score, s.created_at
		FROM calculator_scores s
		JOIN calculators c ON c.id = s.calculator_id
		WHERE s.user_id = $1
		  AND s.id = (
			SELECT s2.id FROM calculator_scores s2
			WHERE s2.user_id = s.user_id AND s2.calculator_id = s.calculator_id
			ORDER BY s2.created_at DESC, s2.id DESC
			LIMIT 1
		  )
		ORDER BY c.name
	`, userID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	scores := make([]models.LatestScore, 0)
	for rows.Next() {
		var s models.LatestScore
		if err := rows.Scan(&s.CalculatorName, &s.Score, &s.CreatedAt); err != nil {
			errorJSON(w, http.StatusInternalServerError, "Database error")
			return
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, scores)
}

// SaveScore appends a new score row for the caller. Never overwrites: the
// per-(user, calculator) history only grows.
func SaveScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	var req SaveScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	fieldErrors := map[string][]string{}
	if req.CalculatorName == "" {
		fieldErrors["calculator_name"] = []string{"This field is required."}
	}
	if req.Score == nil {
		fieldErrors["score"] = []string{"This field is required."}
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrors)
		return
	}

	var calculatorID uuid.UUID
	err := database.PostgresDB.QueryRowContext(r.Context(),
		"SELECT id FROM calculators WHERE name = $1", req.CalculatorName).Scan(&calculatorID)
	if err != nil {
		if err == sql.ErrNoRows {
			notFound(w)
		} else {
			errorJSON(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	_, err = database.PostgresDB.ExecContext(r.Context(), `
		INSERT INTO calculator_scores (calculator_id, user_id, score)
		VALUES ($1, $2, $3)
	`, calculatorID, userID, *req.Score)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Failed to save score")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Score saved successfully"})
}
