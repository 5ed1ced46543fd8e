package handlers

import (
	"net/http"

	"github.com/mindwellhq/mindwell-backend/internal/database"
	"github.com/mindwellhq/mindwell-backend/internal/models"
)

// LatestNews returns the 4 most recent news items, newest first.
func LatestNews(w http.ResponseWriter, r *http.Request) {
	rows, err := database.PostgresDB.QueryContext(r.Context(), `
		SELECT id, title, content, created_at
		FROM news ORDER BY created_at DESC LIMIT 4
	`)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	items := make([]models.News, 0)
	for rows.Next() {
		var n models.News
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt); err != nil {
			errorJSON(w, http.StatusInternalServerError, "Database error")
			return
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, items)
}
