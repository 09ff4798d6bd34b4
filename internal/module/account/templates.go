package account

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// Mail body formats.
const (
	FormatHTML = "html"
	FormatText = "text"
)

const (
	defaultInviteSubject = "{{.SenderName}} invited you to {{.SiteName}}"
	defaultInviteBody    = `<p>Hello,</p>
<p>{{.SenderName}} has invited you to join their team on {{.SiteName}}.</p>
<p><a href="{{.InviteLink}}">Accept the invite</a></p>
<p>If you weren't expecting this invitation, you can ignore this email.</p>`
	defaultInviteTextBody = `Hello,

{{.SenderName}} has invited you to join their team on {{.SiteName}}.

Accept the invite: {{.InviteLink}}

If you weren't expecting this invitation, you can ignore this email.`
)

// InviteMailData are the variables available to invite templates.
type InviteMailData struct {
	SenderName string
	SiteName   string
	InviteLink string
}

// InviteTemplate renders invite emails.
type InviteTemplate struct {
	format  string
	subject *texttemplate.Template
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

// NewInviteTemplate parses subject and body. Empty strings select the
// built-in templates for the format.
func NewInviteTemplate(format, subject, body string) (*InviteTemplate, error) {
	if format == "" {
		format = FormatHTML
	}
	if subject == "" {
		subject = defaultInviteSubject
	}

	t := &InviteTemplate{format: format}
	var err error
	if t.subject, err = texttemplate.New("subject").Parse(subject); err != nil {
		return nil, fmt.Errorf("parse subject template: %w", err)
	}

	switch format {
	case FormatHTML:
		if body == "" {
			body = defaultInviteBody
		}
		t.html, err = htmltemplate.New("body").Parse(body)
	case FormatText:
		if body == "" {
			body = defaultInviteTextBody
		}
		t.text, err = texttemplate.New("body").Parse(body)
	default:
		return nil, fmt.Errorf("unsupported mail format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse body template: %w", err)
	}
	return t, nil
}

// Format returns FormatHTML or FormatText.
func (t *InviteTemplate) Format() string {
	return t.format
}

// Render returns the subject and body for data.
func (t *InviteTemplate) Render(data InviteMailData) (subject, body string, err error) {
	var buf bytes.Buffer
	if err := t.subject.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	subject = buf.String()

	buf.Reset()
	if t.html != nil {
		err = t.html.Execute(&buf, data)
	} else {
		err = t.text.Execute(&buf, data)
	}
	if err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return subject, buf.String(), nil
}
