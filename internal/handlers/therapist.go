package handlers

import (
	"database/sql"
	"net/http"

	"github.com/mindwellhq/mindwell-backend/internal/database"
	"github.com/mindwellhq/mindwell-backend/internal/models"
)

// ListTherapists returns every user with role=therapist, profile fields
// included. Public endpoint, no pagination.
func ListTherapists(w http.ResponseWriter, r *http.Request) {
	rows, err := database.PostgresDB.QueryContext(r.Context(), `
		SELECT id, created_at, username, email, phone, first_name, last_name, role,
			therapist_expertise, therapist_experience, therapist_description,
			therapist_img, therapist_popup_img, therapist_fee
		FROM users WHERE role = $1
		ORDER BY username
	`, models.RoleTherapist)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	therapists := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		var phone, expertise, description, img, popupImg sql.NullString
		var experience, fee sql.NullInt64

		if err := rows.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.Email, &phone,
			&u.FirstName, &u.LastName, &u.Role,
			&expertise, &experience, &description, &img, &popupImg, &fee); err != nil {
			errorJSON(w, http.StatusInternalServerError, "Database error")
			return
		}
		u.Phone = phone.String
		u.TherapistExpertise = expertise.String
		u.TherapistExperience = int(experience.Int64)
		u.TherapistDescription = description.String
		u.TherapistImg = img.String
		u.TherapistPopupImg = popupImg.String
		u.TherapistFee = int(fee.Int64)
		therapists = append(therapists, u)
	}
	if err := rows.Err(); err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, therapists)
}
