package mailer

import tpl "github.com/eduforge/platform/pkg/mailer/templates"

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template selects one of the identity templates (verification_code,
// login_otp, reset_code, approval_request, approval_decision); Data carries
// its fields.
type EmailJob struct {
	To       string        `json:"to"`
	Template string        `json:"template"`
	Data     tpl.EmailData `json:"data"`
}
