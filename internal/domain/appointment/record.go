package appointment

import (
	"strconv"
	"strings"
)

// Record is one raw appointment as returned by the registry, decoded
// straight from JSON. Field naming is inconsistent across clinic
// installations, so every logical field is resolved through an ordered
// candidate list: the first candidate holding a non-empty value wins.
// Records are read-only input; the service never mutates them upstream.
type Record map[string]any

// Candidate field names per logical field, in resolution order.
var (
	idFields           = []string{"id"}
	patientNameFields  = []string{"paciente_nome", "nomePaciente", "primeiro_nome_do_paciente", "pacienteNome"}
	dateFields         = []string{"data", "dataAgenda"}
	startTimeFields    = []string{"horaInicio", "hora", "hora_inicio"}
	practitionerFields = []string{"nome_profissional", "profissional", "nomeProfissional"}
	proceduresFields   = []string{"procedimentos", "procedimentos_com_obs", "procedimentosLista"}
	addressFields      = []string{"endereco_clinica", "endereco", "enderecoClinica"}
	phoneFields        = []string{"telefoneCelularPaciente", "telefone", "telefone_celular_paciente"}
	statusFields       = []string{"status"}
	executorFields     = []string{"idPessoaExecutor"}
	prevDateFields     = []string{"dataAnterior", "data_anterior", "dataAgendaAnterior"}
	prevTimeFields     = []string{"horaAnterior", "hora_anterior", "horaInicioAnterior"}
)

func (r Record) ID() string           { return r.first(idFields) }
func (r Record) PatientName() string  { return r.first(patientNameFields) }
func (r Record) Date() string         { return r.first(dateFields) }
func (r Record) StartTime() string    { return r.first(startTimeFields) }
func (r Record) Practitioner() string { return r.first(practitionerFields) }
func (r Record) ClinicAddress() string { return r.first(addressFields) }
func (r Record) Status() string       { return r.first(statusFields) }

// PreviousDate and PreviousTime are the reschedule markers: when the
// registry reports where an appointment used to sit before being moved.
func (r Record) PreviousDate() string { return r.first(prevDateFields) }
func (r Record) PreviousTime() string { return r.first(prevTimeFields) }

// Phone returns the raw patient phone, digits and punctuation as sent.
func (r Record) Phone() string { return r.first(phoneFields) }

// ExecutorID returns the practitioner/executor id, or 0 when absent.
func (r Record) ExecutorID() int64 {
	raw := r.first(executorFields)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Procedures joins the procedure list into a display string. Entries may
// be plain strings or objects carrying a name field.
func (r Record) Procedures() string {
	for _, field := range proceduresFields {
		raw, ok := r[field]
		if !ok || raw == nil {
			continue
		}
		list, ok := raw.([]any)
		if !ok {
			if s := stringify(raw); s != "" {
				return s
			}
			continue
		}
		names := make([]string, 0, len(list))
		for _, item := range list {
			switch v := item.(type) {
			case map[string]any:
				name := stringify(v["nome"])
				if name == "" {
					name = stringify(v["nomeProcedimento"])
				}
				if name != "" {
					names = append(names, name)
				}
			default:
				if s := stringify(v); s != "" {
					names = append(names, s)
				}
			}
		}
		if len(names) > 0 {
			return strings.Join(names, ", ")
		}
	}
	return ""
}

// Rescheduled reports whether the record carries an explicit reschedule
// marker: a previous date/time that differs from the current one.
func (r Record) Rescheduled() bool {
	prevDate := r.PreviousDate()
	if prevDate == "" {
		return false
	}
	if prevDate != r.Date() {
		return true
	}
	prevTime := r.PreviousTime()
	return prevTime != "" && clipMinutes(prevTime) != clipMinutes(r.StartTime())
}

// first returns the first non-empty candidate value as a trimmed string.
func (r Record) first(fields []string) string {
	for _, field := range fields {
		if s := stringify(r[field]); s != "" {
			return s
		}
	}
	return ""
}

// stringify renders a decoded JSON scalar as a string. Numeric ids come
// back from encoding/json as float64 and must not pick up an exponent or
// a trailing ".0".
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// clipMinutes reduces "HH:MM:SS" to "HH:MM" so second precision does not
// fake a reschedule.
func clipMinutes(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}
