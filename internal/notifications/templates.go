package notifications

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// MessageData is what every template renders from.
type MessageData struct {
	Business     string
	ClientName   string
	ServiceName  string
	PartnerName  string
	Date         string
	Time         string
	PreviousDate string
	PreviousTime string
	Session      int
	Total        int
	PlanName     string
}

var funcs = template.FuncMap{
	"br": brDate,
}

var templates = map[enums.OutboxEventType]*template.Template{
	enums.EventAppointmentBooked: mustParse("appointment_booked",
		`Olá {{.ClientName}}! Recebemos seu agendamento de {{.ServiceName}} para {{br .Date}} às {{.Time}}.{{if .Session}} Sessão {{.Session}}{{if .Total}} de {{.Total}}{{end}}.{{end}} {{.Business}}`),
	enums.EventAppointmentConfirmed: mustParse("appointment_confirmed",
		`Olá {{.ClientName}}, seu horário de {{.ServiceName}} em {{br .Date}} às {{.Time}} está confirmado{{if .PartnerName}} com {{.PartnerName}}{{end}}. {{.Business}}`),
	enums.EventAppointmentCancelled: mustParse("appointment_cancelled",
		`Olá {{.ClientName}}, seu horário de {{.ServiceName}} em {{br .Date}} às {{.Time}} foi cancelado. Fale conosco para remarcar. {{.Business}}`),
	enums.EventAppointmentRescheduled: mustParse("appointment_rescheduled",
		`Olá {{.ClientName}}, seu horário de {{.ServiceName}} foi remarcado de {{br .PreviousDate}} {{.PreviousTime}} para {{br .Date}} às {{.Time}}. {{.Business}}`),
	enums.EventAppointmentReminderDue: mustParse("appointment_reminder",
		`Lembrete: {{.ClientName}}, amanhã ({{br .Date}}) às {{.Time}} você tem {{.ServiceName}}{{if .PartnerName}} com {{.PartnerName}}{{end}}. Até lá! {{.Business}}`),
	enums.EventPlanCompleted: mustParse("plan_completed",
		`Parabéns {{.ClientName}}! Você concluiu as {{.Total}} sessões do plano {{.PlanName}} de {{.ServiceName}}. {{.Business}}`),
}

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text))
}

// Handles reports whether eventType produces a message.
func Handles(eventType enums.OutboxEventType) bool {
	_, ok := templates[eventType]
	return ok
}

// Render returns the template name and the rendered message.
func Render(eventType enums.OutboxEventType, data MessageData) (string, string, error) {
	tmpl, ok := templates[eventType]
	if !ok {
		return "", "", fmt.Errorf("no template for %s", eventType)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return tmpl.Name(), "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return tmpl.Name(), strings.Join(strings.Fields(b.String()), " "), nil
}

// brDate turns 2026-03-10 into 10/03/2026. Anything else passes through.
func brDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}
