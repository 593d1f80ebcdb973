package email

import (
	"bytes"
	"text/template"
)

// Subjects for the two transactional messages.
const (
	ActivationSubject = "Account activation"
	ResetSubject      = "Reset password"
)

var (
	activationTmpl = template.Must(template.New("activation").Parse(
		`Activation token is {{.Token}}`))
	resetTmpl = template.Must(template.New("reset").Parse(
		`Click the link to reset your password {{.Link}}`))
)

// ActivationBody renders the account activation message carrying the
// plaintext one-time code.
func ActivationBody(token string) string {
	var buf bytes.Buffer
	_ = activationTmpl.Execute(&buf, struct{ Token string }{token})
	return buf.String()
}

// ResetBody renders the password reset message carrying the reset link.
func ResetBody(link string) string {
	var buf bytes.Buffer
	_ = resetTmpl.Execute(&buf, struct{ Link string }{link})
	return buf.String()
}
