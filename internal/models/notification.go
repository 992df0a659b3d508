package models

// Notification is the data handed to a notification transport: one message,
// already fully rendered. Transports that have no address concept (Telegram)
// ignore To and From.
type Notification struct {
	To      string
	From    string
	Subject string
	Body    string
}
