package notify

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

// Template names an email template.
type Template string

const (
	TemplateInterviewScheduled           Template = "interview_scheduled"
	TemplateTaskAssigned                 Template = "task_assigned"
	TemplateOfferSent                    Template = "offer_sent"
	TemplateApplicationRejected          Template = "application_rejected"
	TemplateCompensationMeetingScheduled Template = "compensation_meeting_scheduled"
)

// Templates lists every template in a stable order.
func Templates() []Template {
	return []Template{
		TemplateInterviewScheduled,
		TemplateTaskAssigned,
		TemplateOfferSent,
		TemplateApplicationRejected,
		TemplateCompensationMeetingScheduled,
	}
}

const emailDateLayout = "Monday, Jan 2, 2006 at 15:04 MST"

var funcs = template.FuncMap{
	"date": func(v any) string {
		switch t := v.(type) {
		case time.Time:
			return t.UTC().Format(emailDateLayout)
		case *time.Time:
			if t == nil {
				return ""
			}
			return t.UTC().Format(emailDateLayout)
		}
		return fmt.Sprint(v)
	},
	"money": func(amount *float64, currency string) string {
		if amount == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprintf("%.2f %s", *amount, strings.ToUpper(currency)))
	},
	"modeName": func(mode string) string {
		switch mode {
		case "call":
			return "Phone call"
		case "online":
			return "Video call"
		case "in_person":
			return "In person"
		}
		return mode
	},
}

// Renderer renders the embedded email templates.
type Renderer struct {
	templates map[Template]*template.Template
}

// NewRenderer parses every embedded template. Each file defines a "subject" and a "body" block.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[Template]*template.Template)}
	for _, name := range Templates() {
		file := "templates/" + string(name) + ".tmpl"
		t, err := template.New(string(name)).Funcs(funcs).Option("missingkey=error").ParseFS(templateFiles, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse email template %s: %w", name, err)
		}
		for _, block := range []string{"subject", "body"} {
			if t.Lookup(block) == nil {
				return nil, fmt.Errorf("email template %s has no %q block", name, block)
			}
		}
		r.templates[name] = t
	}
	return r, nil
}

// Render executes a template and returns the subject line and body.
func (r *Renderer) Render(name Template, data any) (subject, body string, err error) {
	t, ok := r.templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "subject", data); err != nil {
		return "", "", fmt.Errorf("failed to render %s subject: %w", name, err)
	}
	subject = strings.Join(strings.Fields(buf.String()), " ")

	buf.Reset()
	if err := t.ExecuteTemplate(&buf, "body", data); err != nil {
		return "", "", fmt.Errorf("failed to render %s body: %w", name, err)
	}
	return subject, strings.TrimSpace(buf.String()) + "\n", nil
}
