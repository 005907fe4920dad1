package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var resetTmpl = template.Must(template.ParseFS(templateFS, "templates/reset_password.html"))

// ResetMessage renders the canonical password-reset email. The link must
// already carry the reset token; the body warns that the link expires in
// one hour and works once.
func ResetMessage(to, name, link string) (Message, error) {
	var buf bytes.Buffer
	err := resetTmpl.Execute(&buf, map[string]string{
		"Name": name,
		"Link": link,
	})
	if err != nil {
		return Message{}, fmt.Errorf("rendering reset email: %w", err)
	}
	return Message{To: to, Subject: "Reset your password", HTML: buf.String()}, nil
}
