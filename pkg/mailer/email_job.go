package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template+Data or Subject+Text(+HTML) is set; the worker renders templates.
type EmailJob struct {
	To       string         `json:"to"`
	ReplyTo  string         `json:"replyTo,omitempty"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "verify_email", "reset_password", "contact_message"
	Data     map[string]any `json:"data,omitempty"`
}
