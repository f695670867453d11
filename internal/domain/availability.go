package domain

// Availability is a bookable slot published by a doctor.
// Date is YYYY-MM-DD; StartTime and EndTime are HH:MM on that date
// (a full RFC 3339 timestamp is also accepted).
type Availability struct {
	DoctorID       string  `json:"doctorId" dynamodbav:"doctor_id"`
	AvailabilityID string  `json:"id" dynamodbav:"availability_id"`
	Date           string  `json:"date" dynamodbav:"date"`
	StartTime      string  `json:"startTime" dynamodbav:"start_time"`
	EndTime        string  `json:"endTime" dynamodbav:"end_time"`
	Price          float64 `json:"price" dynamodbav:"price"`
	SlotDuration   int     `json:"slotDuration" dynamodbav:"slot_duration"`
	Slots          int     `json:"slots" dynamodbav:"slots"`
	Mode           string  `json:"mode" dynamodbav:"mode"`
	Location       string  `json:"location,omitempty" dynamodbav:"location,omitempty"`
}

type Doctor struct {
	DoctorID string `json:"id" dynamodbav:"doctor_id"`
	Name     string `json:"name" dynamodbav:"name"`
}
