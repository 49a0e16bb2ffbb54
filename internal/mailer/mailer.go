package mailer

import "embed"

const (
	FromName                  = "Venuebook"
	maxRetries                = 3
	UserWelcomeTemplate       = "user_welcome.tmpl"
	ResetPasswordTemplate     = "reset_password.tmpl"
	BookingReceivedTemplate   = "booking_received.tmpl"
	BookingRequestTemplate    = "booking_request_owner.tmpl"
	BookingStatusTemplate     = "booking_status.tmpl"
	InquiryReceivedTemplate   = "inquiry_received_owner.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
