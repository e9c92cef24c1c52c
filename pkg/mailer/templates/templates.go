package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names.
const (
	VerificationCode = "verification_code"
	LoginOTP         = "login_otp"
	ResetCode        = "reset_code"
	ApprovalRequest  = "approval_request"
	ApprovalDecision = "approval_decision"
)

// EmailData carries the fields the templates render.
type EmailData struct {
	Name       string `json:"Name"`
	Email      string `json:"Email"`
	AppName    string `json:"AppName"`
	Company    string `json:"Company"`
	LogoURL    string `json:"LogoURL"`
	SupportURL string `json:"SupportURL"`

	Code          string `json:"Code"`
	ExpiresAtText string `json:"ExpiresAtText"`

	// Instructor approval fields
	CVURL            string `json:"CVURL"`
	ProfessionCenter string `json:"ProfessionCenter"`
	Approved         bool   `json:"Approved"`
}

// WithExpiry formats the code expiry for display.
func (d EmailData) WithExpiry(t time.Time) EmailData {
	d.ExpiresAtText = t.UTC().Format("02 January 2006, 15:04 MST")
	return d
}

// renderFile loads and renders a single template file from the embedded FS.
func renderFile(filename string, isHTML bool, data any) (string, error) {
	var (
		buf bytes.Buffer
		err error
	)
	if isHTML {
		tpl, e := htmpl.New(filename).ParseFS(FS, filename)
		if e != nil {
			return "", fmt.Errorf("parse html %q: %w", filename, e)
		}
		err = tpl.Execute(&buf, data)
	} else {
		tpl, e := texttpl.New(filename).ParseFS(FS, filename)
		if e != nil {
			return "", fmt.Errorf("parse text %q: %w", filename, e)
		}
		err = tpl.Execute(&buf, data)
	}
	if err != nil {
		return "", fmt.Errorf("exec %q: %w", filename, err)
	}
	return buf.String(), nil
}

// Render loads and renders subject, text, and html templates for the given
// base name. Expects: <name>.subject.tmpl, <name>.text.tmpl, <name>.html.tmpl
func Render(name string, data any) (subject string, text string, html string, err error) {
	subject, err = renderFile(name+".subject.tmpl", false, data)
	if err != nil {
		return "", "", "", err
	}
	text, err = renderFile(name+".text.tmpl", false, data)
	if err != nil {
		return "", "", "", err
	}
	html, err = renderFile(name+".html.tmpl", true, data)
	if err != nil {
		return "", "", "", err
	}
	return subject, text, html, nil
}
