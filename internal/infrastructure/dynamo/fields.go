package dynamo

// DynamoDB attribute names used in update and condition expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldNotificationID = "notification_id"
	fieldUserID         = "user_id"
	fieldRead           = "read"
	fieldReminders      = "reminders"
	fieldStatus         = "status"
	fieldUpdatedAt      = "updated_at"
	fieldDoctorID       = "doctor_id"
	fieldAvailabilityID = "availability_id"
	fieldAppointmentID  = "appointment_id"
	fieldReminderSetID  = "reminder_set_id"
)

// maxTransactItems is the DynamoDB ceiling on actions in one TransactWriteItems call.
const maxTransactItems = 100
