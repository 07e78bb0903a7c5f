package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Email is a fully rendered message ready for delivery.
type Email struct {
	To      string
	Subject string
	HTML    string
	Link    string
}

type emailSpec struct {
	subject  string
	template string
	path     string
}

var emailSpecs = map[Kind]emailSpec{
	KindVerification: {
		subject:  "Welcome to Cardboard Garden - Verify Your Email",
		template: "verification.html",
		path:     "/verify-email",
	},
	KindPasswordReset: {
		subject:  "Cardboard Garden - Password Reset Request",
		template: "password_reset.html",
		path:     "/reset-password",
	},
}

// Renderer turns Messages into Emails with links rooted at a base URL.
type Renderer struct {
	base string
}

// NewRenderer validates linkBaseURL and returns a Renderer for it.
func NewRenderer(linkBaseURL string) (*Renderer, error) {
	u, err := url.Parse(linkBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid link base url %q", linkBaseURL)
	}
	return &Renderer{base: strings.TrimRight(linkBaseURL, "/")}, nil
}

// Render builds the email for msg.
func (r *Renderer) Render(msg Message) (Email, error) {
	spec, ok := emailSpecs[msg.Kind]
	if !ok {
		return Email{}, fmt.Errorf("%w: %q", ErrUnknownKind, msg.Kind)
	}

	link := r.base + spec.path + "?token=" + url.QueryEscape(msg.Token)
	name := msg.Name
	if name == "" {
		name = "there"
	}

	var buf bytes.Buffer
	data := struct {
		Name   string
		Link   string
		Expiry string
	}{Name: name, Link: link, Expiry: humanDuration(msg.ExpiresIn)}
	if err := templates.ExecuteTemplate(&buf, spec.template, data); err != nil {
		return Email{}, fmt.Errorf("render %s email: %w", msg.Kind, err)
	}

	return Email{
		To:      msg.To,
		Subject: spec.subject,
		HTML:    buf.String(),
		Link:    link,
	}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int((d+time.Minute-1)/time.Minute), "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
