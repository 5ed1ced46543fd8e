package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mindwellhq/mindwell-backend/internal/database"
	"github.com/mindwellhq/mindwell-backend/internal/middleware"
	"github.com/mindwellhq/mindwell-backend/internal/models"
)

// validBookingTime accepts HH:MM or HH:MM:SS.
func validBookingTime(s string) bool {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

type CreateBookingRequest struct {
	TherapistID   string `json:"therapist_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	PaymentMethod string `json:"payment_method"`
	Receipt       string `json:"receipt,omitempty"`
}

// ListMyBookings returns every booking where the caller is the patient, with
// an embedded therapist summary.
func ListMyBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	rows, err := database.PostgresDB.QueryContext(r.Context(), `
		SELECT b.id, b.patient_id, b.date, b.time, b.created_at, b.status,
			b.payment_method, b.paid, b.receipt,
			u.id, u.username, u.email, u.first_name, u.last_name, u.role,
			u.therapist_expertise, u.therapist_experience, u.therapist_img, u.therapist_fee
		FROM bookings b
		JOIN users u ON u.id = b.therapist_id
		WHERE b.patient_id = $1
		ORDER BY b.created_at DESC
	`, userID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		var b models.Booking
		var date, bookTime sql.NullString
		var receipt sql.NullString
		var therapist models.TherapistSummary
		var expertise, img sql.NullString
		var experience, fee sql.NullInt64

		if err := rows.Scan(&b.ID, &b.PatientID, &date, &bookTime, &b.CreatedAt, &b.Status,
			&b.PaymentMethod, &b.Paid, &receipt,
			&therapist.ID, &therapist.Username, &therapist.Email,
			&therapist.FirstName, &therapist.LastName, &therapist.Role,
			&expertise, &experience, &img, &fee); err != nil {
			errorJSON(w, http.StatusInternalServerError, "Database error")
			return
		}
		b.Date = date.String
		b.Time = bookTime.String
		b.Receipt = receipt.String
		therapist.TherapistExpertise = expertise.String
		therapist.TherapistExperience = int(experience.Int64)
		therapist.TherapistImg = img.String
		therapist.TherapistFee = int(fee.Int64)
		b.Therapist = &therapist
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, bookings)
}

// CreateBooking creates a booking with the caller forced in as the patient.
// The referenced therapist must be a role=therapist user, and status always
// starts at pending no matter what the client sends.
func CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	therapistID, err := uuid.Parse(req.TherapistID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"therapist_id": {"Invalid therapist id."},
		})
		return
	}

	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string][]string{
				"date": {"Date has wrong format. Use one of these formats instead: YYYY-MM-DD."},
			})
			return
		}
	}
	if req.Time != "" && !validBookingTime(req.Time) {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"time": {"Time has wrong format. Use one of these formats instead: hh:mm[:ss]."},
		})
		return
	}

	var therapistRole string
	err = database.PostgresDB.QueryRowContext(r.Context(),
		"SELECT role FROM users WHERE id = $1", therapistID).Scan(&therapistRole)
	if err == sql.ErrNoRows || (err == nil && therapistRole != models.RoleTherapist) {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"therapist_id": {"Object with id does not exist or is not a therapist."},
		})
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodPhysical
	}
	if paymentMethod != models.PaymentMethodOnline && paymentMethod != models.PaymentMethodPhysical {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"payment_method": {"Must be one of: online, physical."},
		})
		return
	}

	bookingID := uuid.New()
	now := time.Now()
	_, err = database.PostgresDB.ExecContext(r.Context(), `
		INSERT INTO bookings (id, patient_id, therapist_id, date, time, created_at, status, payment_method, paid, receipt)
		VALUES ($1, $2, $3, NULLIF($4, '')::date, NULLIF($5, '')::time, $6, $7, $8, FALSE, NULLIF($9, ''))
	`, bookingID, userID, therapistID, req.Date, req.Time, now,
		models.BookingStatusPending, paymentMethod, req.Receipt)
	if err != nil {
		log.Printf("ERROR: failed to insert booking: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":             bookingID.String(),
		"user":           userID.String(),
		"therapist_id":   therapistID.String(),
		"date":           req.Date,
		"time":           req.Time,
		"created_at":     now,
		"status":         models.BookingStatusPending,
		"payment_method": paymentMethod,
		"paid":           false,
	})
}
