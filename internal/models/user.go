package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles a user row can carry. Therapist profile fields are only expected to
// be populated on role=therapist rows; nothing else distinguishes the two.
const (
	RoleUser      = "user"
	RoleTherapist = "therapist"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`

	TherapistExpertise   string `json:"therapist_expertise,omitempty"`
	TherapistExperience  int    `json:"therapist_experience,omitempty"`
	TherapistDescription string `json:"therapist_description,omitempty"`
	TherapistImg         string `json:"therapist_img,omitempty"`
	TherapistPopupImg    string `json:"therapist_popup_img,omitempty"`
	TherapistFee         int    `json:"therapist_fee,omitempty"`
}

// TherapistSummary is the trimmed therapist shape embedded in blog and
// booking responses.
type TherapistSummary struct {
	ID                  uuid.UUID `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	Role                string    `json:"role"`
	TherapistExpertise  string    `json:"therapist_expertise,omitempty"`
	TherapistExperience int       `json:"therapist_experience,omitempty"`
	TherapistImg        string    `json:"therapist_img,omitempty"`
	TherapistFee        int       `json:"therapist_fee,omitempty"`
}
