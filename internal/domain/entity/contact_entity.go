package entity

// ContactMessage is a message left through the public contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Message string
}
