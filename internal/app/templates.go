package app

import (
	"bytes"
	"fmt"
	"text/template"

	"appointment_notifier/internal/domain/event"
)

// Message templates per event kind, pt-BR as sent to patients.
var messageTemplates = map[event.Kind]*template.Template{
	event.KindConfirmation: template.Must(template.New("confirmation").Parse(
		"Oi, {{.first_name}}! 💚\n" +
			"Sua consulta foi confirmada para {{.date}} às {{.time}}.\n" +
			"Procedimento(s): {{.procedures}}\n\n" +
			"Se tiver alguma dúvida, responda essa mensagem.")),
	event.KindReschedule: template.Must(template.New("reschedule").Parse(
		"Oi, {{.first_name}}! 💚\n" +
			"Sua consulta foi remarcada para {{.date}} às {{.time}}.\n" +
			"Procedimento(s): {{.procedures}}\n\n" +
			"Se tiver alguma dúvida, responda essa mensagem.")),
	event.KindCancellation: template.Must(template.New("cancellation").Parse(
		"Oi, {{.first_name}}!\n" +
			"Sua consulta do dia {{.date}} às {{.time}} foi cancelada.\n\n" +
			"Se quiser reagendar, responda essa mensagem.")),
	event.KindReminder: template.Must(template.New("reminder").Parse(
		"Oi, {{.first_name}}! 💚\n" +
			"Passando para lembrar da sua consulta em {{.date}} às {{.time}}.\n" +
			"Procedimento(s): {{.procedures}}\n\n" +
			"Se precisar reagendar, responda essa mensagem.")),
}

// RenderMessage builds the outbound text for an intent.
func RenderMessage(kind event.Kind, params map[string]string) (string, error) {
	tmpl, ok := messageTemplates[kind]
	if !ok {
		return "", fmt.Errorf("no template for kind %s", kind)
	}
	if params["first_name"] == "" {
		params["first_name"] = "tudo bem"
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("rendering %s template: %w", kind, err)
	}
	return buf.String(), nil
}
