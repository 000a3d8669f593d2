package booking

import "time"

type CreateBookingRequest struct {
	PatientID       string    `json:"patient_id" validate:"required"`
	ProviderID      string    `json:"provider_id" validate:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	Mode            string    `json:"mode" validate:"required,oneof=in_person remote"`
	Reason          string    `json:"reason"`
	ConsentGranted  bool      `json:"consent_granted"`
	ConsultationFee int64     `json:"consultation_fee" validate:"required,gt=0"`
}

type TransitionRequest struct {
	Event  string `json:"event" binding:"required"`
	Reason string `json:"reason"`
}
