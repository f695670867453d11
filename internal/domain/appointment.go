package domain

import "time"

const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCompleted = "completed"
	AppointmentExpired   = "expired"
	AppointmentRejected  = "rejected"
)

type Appointment struct {
	AppointmentID string     `json:"id" dynamodbav:"appointment_id"`
	DoctorID      string     `json:"doctorId" dynamodbav:"doctor_id"`
	PatientID     string     `json:"patientId" dynamodbav:"patient_id"`
	PatientName   string     `json:"patientName,omitempty" dynamodbav:"patient_name,omitempty"`
	Date          string     `json:"date" dynamodbav:"date"`
	SlotPortion   string     `json:"slotPortion" dynamodbav:"slot_portion"`
	Status        string     `json:"status" dynamodbav:"status"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty" dynamodbav:"updated_at,omitempty"`
}
