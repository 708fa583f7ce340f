// Package pipeline holds the lead stage vocabulary and the two protocols that move a
// lead between stages: drag-and-drop on the board and manual edit.
package pipeline

import "crmseguros/internal/texto"

// Etapa is a canonical pipeline stage.
type Etapa string

const (
	EtapaNuevo            Etapa = "NUEVO"
	EtapaContactado       Etapa = "CONTACTADO"
	EtapaCitaAgendada     Etapa = "CITA AGENDADA"
	EtapaEnValoracion     Etapa = "EN VALORACION"
	EtapaPropuestaEnviada Etapa = "PROPUESTA ENVIADA"
	EtapaGanado           Etapa = "GANADO"
	EtapaNoInteresado     Etapa = "NO INTERESADO"
)

// Etapas is the board order.
var Etapas = []Etapa{
	EtapaNuevo,
	EtapaContactado,
	EtapaCitaAgendada,
	EtapaEnValoracion,
	EtapaPropuestaEnviada,
	EtapaGanado,
	EtapaNoInteresado,
}

// Vocabulary found in imported spreadsheets and older rows, keyed by texto.Clave.
var alias = map[string]Etapa{
	"prospecto":       EtapaNuevo,
	"en contacto":     EtapaContactado,
	"cita":            EtapaCitaAgendada,
	"interesado":      EtapaEnValoracion,
	"cotizacion":      EtapaEnValoracion,
	"negociacion":     EtapaPropuestaEnviada,
	"cerrado":         EtapaGanado,
	"cerrado ganado":  EtapaGanado,
	"cliente":         EtapaGanado,
	"vendido":         EtapaGanado,
	"perdido":         EtapaNoInteresado,
	"cerrado perdido": EtapaNoInteresado,
	"descartado":      EtapaNoInteresado,
}

var canonicas = func() map[string]Etapa {
	m := make(map[string]Etapa, len(Etapas))
	for _, e := range Etapas {
		m[texto.Clave(string(e))] = e
	}
	return m
}()

// ParseEtapa resolves s to a canonical stage, accepting legacy aliases.
// Matching ignores case, accents, '_' or '-' separators and repeated spaces.
func ParseEtapa(s string) (Etapa, bool) {
	k := texto.Clave(s)
	if e, ok := canonicas[k]; ok {
		return e, true
	}
	if e, ok := alias[k]; ok {
		return e, true
	}
	return "", false
}

// NormalizarEtapa is ParseEtapa with unknown or empty input mapped to EtapaNuevo.
func NormalizarEtapa(s string) Etapa {
	if e, ok := ParseEtapa(s); ok {
		return e
	}
	return EtapaNuevo
}

func (e Etapa) EsGanado() bool { return e == EtapaGanado }

func (e Etapa) EsPerdido() bool { return e == EtapaNoInteresado }

// EsAvanzada reports the advanced-interest stages counted on the dashboard.
func (e Etapa) EsAvanzada() bool {
	return e == EtapaEnValoracion || e == EtapaPropuestaEnviada
}
