package mailer

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates
var templatesFS embed.FS

type Kind string

const (
	KindRegister      Kind = "register"
	KindEmailUpdate   Kind = "email-update"
	KindPasswordReset Kind = "password-reset"
)

var kinds = []Kind{KindRegister, KindEmailUpdate, KindPasswordReset}

var subjects = map[Kind]map[Lang]string{
	KindRegister: {
		LangEN: "Registration Request.",
		LangFR: "Demande d'inscription.",
	},
	KindEmailUpdate: {
		LangEN: "Email Update Request.",
		LangFR: "Demande de changement d'email.",
	},
	KindPasswordReset: {
		LangEN: "Password Reset Request.",
		LangFR: "Demande de réinitialisation de mot de passe.",
	},
}

func Subject(kind Kind, lang Lang) string {
	return subjects[kind][lang.OrDefault()]
}

// LinkData feeds the mail templates. Each template renders exactly one
// anchor, pointing to URL with the shortCode and target query parameters.
type LinkData struct {
	URL           string
	ShortCode     string
	Target        string
	DurationHours float64
}

type Templates struct {
	templates map[Kind]*template.Template
}

func NewTemplates() *Templates {
	parsed := make(map[Kind]*template.Template, len(kinds))

	for _, kind := range kinds {
		tmpl := template.New(string(kind))
		for _, lang := range []Lang{LangEN, LangFR} {
			raw, err := templatesFS.ReadFile(fmt.Sprintf("templates/%s/%s.html", lang, kind))
			if err != nil {
				panic(fmt.Sprintf("mailer.NewTemplates: %v", err))
			}
			template.Must(tmpl.New(lang.String()).Parse(string(raw)))
		}
		parsed[kind] = tmpl
	}

	return &Templates{templates: parsed}
}

func (t *Templates) Render(kind Kind, lang Lang, data LinkData) (string, error) {
	tmpl, ok := t.templates[kind]
	if !ok {
		return "", fmt.Errorf("mailer.Templates.Render: unknown mail kind %q", kind)
	}

	builder := new(strings.Builder)
	if err := tmpl.ExecuteTemplate(builder, lang.OrDefault().String(), data); err != nil {
		return "", fmt.Errorf("mailer.Templates.Render: %w", err)
	}

	return builder.String(), nil
}
