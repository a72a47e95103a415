// internal/workers/admission/notify-applicant/templates.go
package notifyapplicant

import (
	"fmt"
	"strings"
	"text/template"
)

type message struct {
	subject *template.Template
	body    *template.Template
	sms     *template.Template
}

var messages = map[string]message{
	TypeApplicationSubmitted: {
		subject: template.Must(template.New("subject").Parse(`Application {{.ApplicationID}} received`)),
		body: template.Must(template.New("body").Parse(`Thank you for applying{{if .ProgramTitle}} for {{.ProgramTitle}}{{end}}.

Your application number is {{.ApplicationID}}. Keep it for any enquiries about your application.
We will contact you once the admissions office has reviewed it.`)),
	},
	TypeApplicationDecision: {
		subject: template.Must(template.New("subject").Parse(`Update on application {{.ApplicationID}}`)),
		body: template.Must(template.New("body").Parse(`The status of your application {{.ApplicationID}}{{if .ProgramTitle}} for {{.ProgramTitle}}{{end}} is now: {{.Status}}.
{{if .Comments}}
Comments from the admissions office:
{{.Comments}}
{{end}}`)),
		sms: template.Must(template.New("sms").Parse(`Application {{.ApplicationID}} status: {{.Status}}. Check your e-mail for details.`)),
	},
}

func render(t *template.Template, input *Input) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, input); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return strings.TrimSpace(b.String()), nil
}
