package domain

// Email is an outbound notification.
type Email struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}
