package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

type WelcomeVars struct {
	Name        string
	ClinicName  string
	TrialEndsAt *time.Time
}

var welcomeHTML = template.Must(template.New("welcome").Parse(`<p>Hola {{.Name}},</p>
<p>Tu clínica <strong>{{.ClinicName}}</strong> ya está registrada en AestheticOps.</p>
{{if .TrialEndsAt}}<p>Tu período de prueba termina el {{.TrialEndsAt.Format "02/01/2006"}}.</p>{{end}}`))

// Welcome arma el correo de bienvenida.
func Welcome(v WelcomeVars) (subject, htmlBody, textBody string, err error) {
	var buf bytes.Buffer
	if err := welcomeHTML.Execute(&buf, v); err != nil {
		return "", "", "", err
	}
	text := fmt.Sprintf("Hola %s,\n\nTu clínica %s ya está registrada en AestheticOps.\n", v.Name, v.ClinicName)
	if v.TrialEndsAt != nil {
		text += fmt.Sprintf("Tu período de prueba termina el %s.\n", v.TrialEndsAt.Format("02/01/2006"))
	}
	return "Bienvenido a AestheticOps", buf.String(), text, nil
}
