package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking status values. Transitions beyond the initial 'pending' are managed
// out-of-band; no endpoint mutates status.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

const (
	PaymentMethodOnline   = "online"
	PaymentMethodPhysical = "physical"
)

type Booking struct {
	ID            uuid.UUID         `json:"id"`
	PatientID     uuid.UUID         `json:"user"`
	Therapist     *TherapistSummary `json:"therapist,omitempty"`
	Date          string            `json:"date,omitempty"`
	Time          string            `json:"time,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	Paid          bool              `json:"paid"`
	Receipt       string            `json:"receipt,omitempty"`
}
