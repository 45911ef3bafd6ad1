package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var resetTemplate = template.Must(template.New("reset").Parse(`<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9; border-radius: 10px;">
    <h1 style="color: #6366f1; text-align: center;">Tegura Youth Initiative</h1>
    <div style="background-color: white; padding: 30px; border-radius: 8px;">
      <h2 style="color: #374151; margin-top: 0;">Password Reset Request</h2>
      <p>Hello <strong>{{.FirstName}}</strong>,</p>
      <p>We received a request to reset your password for your Tegura Youth Initiative account.</p>
      <p>Click the button below to reset your password. This link will expire in {{.ExpiresIn}}.</p>
      <p style="text-align: center; margin: 30px 0;">
        <a href="{{.Link}}" style="background-color: #6366f1; color: white; padding: 14px 28px; text-decoration: none; border-radius: 8px; font-weight: bold;">Reset Password</a>
      </p>
      <p style="color: #6b7280; font-size: 14px;">Or copy and paste this link into your browser:</p>
      <p style="background-color: #f3f4f6; padding: 10px; border-radius: 4px; word-break: break-all; font-size: 12px;">{{.Link}}</p>
      <p style="color: #6b7280; font-size: 14px;"><strong>Didn't request a password reset?</strong><br>You can safely ignore this email. Your password will not be changed.</p>
    </div>
  </div>
</body>
</html>`))

var contactTemplate = template.Must(template.New("contact").Parse(`<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9; border-radius: 10px;">
    <h2 style="color: #6366f1; border-bottom: 2px solid #6366f1; padding-bottom: 10px;">New Contact Form Submission</h2>
    <table style="width: 100%; border-collapse: collapse;">
      <tr><td><strong>Name:</strong></td><td>{{.FirstName}} {{.LastName}}</td></tr>
      <tr><td><strong>Email:</strong></td><td><a href="mailto:{{.Email}}">{{.Email}}</a></td></tr>
      <tr><td><strong>Phone:</strong></td><td>{{.Phone}}</td></tr>
      <tr><td><strong>Company:</strong></td><td>{{.Company}}</td></tr>
    </table>
    <h3 style="color: #374151;">Message</h3>
    <div style="background-color: #f3f4f6; padding: 15px; border-left: 4px solid #6366f1;">{{.Message}}</div>
  </div>
</body>
</html>`))

// ResetData fills the password reset email.
type ResetData struct {
	FirstName string
	Link      string
	ExpiresIn string
}

// ContactData fills the contact form notification.
type ContactData struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Company   string
	Message   string
}

// RenderReset renders the password reset email body.
func RenderReset(data ResetData) (string, error) {
	return render(resetTemplate, data)
}

// RenderContact renders the contact form email body; user input is HTML-escaped.
func RenderContact(data ContactData) (string, error) {
	return render(contactTemplate, data)
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
