package auth

import (
	"bytes"
	"html/template"
)

var emailTemplates = template.Must(template.New("auth").Parse(`
{{define "reset"}}<h1>Password Reset Request</h1>
<p>Click the following link to reset your password:</p>
<a href="{{.URL}}">Reset Password</a>
<p>This link will expire in 1 hour.</p>{{end}}
{{define "verify"}}<h1>Verify Your Email</h1>
<p>Click the following link to verify your email:</p>
<a href="{{.URL}}">Verify Email</a>
<p>This link will expire in 24 hours.</p>{{end}}
`))

func renderEmail(name, url string) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, struct{ URL string }{url}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
