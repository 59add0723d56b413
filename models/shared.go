package models

// EmailRetryPayload carries a failed notification email to the retry queue.
type EmailRetryPayload struct {
	NotificationID string   `json:"notificationId"`
	To             string   `json:"to"`
	CC             []string `json:"cc,omitempty"`
	Subject        string   `json:"subject"`
	Body           string   `json:"body"`
	Filename       string   `json:"filename"`
	CSV            string   `json:"csv"`
}
