package domain

import "time"

// ReminderSet holds the scheduled reminders of one appointment.
type ReminderSet struct {
	ReminderSetID   string          `json:"id" dynamodbav:"reminder_set_id"`
	AppointmentID   string          `json:"appointmentId" dynamodbav:"appointment_id"`
	DoctorID        string          `json:"doctorId" dynamodbav:"doctor_id"`
	PatientID       string          `json:"patientId" dynamodbav:"patient_id"`
	DoctorName      string          `json:"doctorName" dynamodbav:"doctor_name"`
	PatientName     string          `json:"patientName" dynamodbav:"patient_name"`
	AppointmentTime time.Time       `json:"appointmentTime" dynamodbav:"appointment_time"`
	Type            string          `json:"type" dynamodbav:"type"`
	Reminders       []ReminderEntry `json:"reminders" dynamodbav:"reminders"`
	CreatedAt       time.Time       `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" dynamodbav:"updated_at"`
}

// ReminderEntry fires once, when the wall clock reaches Time.
type ReminderEntry struct {
	Time    time.Time `json:"time" dynamodbav:"time"`
	Sent    bool      `json:"sent" dynamodbav:"sent"`
	Message string    `json:"message" dynamodbav:"message"`
}

// Due reports whether the entry must fire at now.
func (e ReminderEntry) Due(now time.Time) bool {
	return !e.Sent && !e.Time.IsZero() && !now.Before(e.Time)
}

type ScheduleReminderRequest struct {
	AppointmentID   string    `json:"appointmentId" validate:"required"`
	DoctorID        string    `json:"doctorId" validate:"required"`
	PatientID       string    `json:"patientId" validate:"required"`
	DoctorName      string    `json:"doctorName"`
	PatientName     string    `json:"patientName"`
	AppointmentTime time.Time `json:"appointmentTime" validate:"required"`
	Type            string    `json:"type"`
}
