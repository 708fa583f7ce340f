// Package dashboard derives the agent dashboard from tasks, leads, policies and the
// monthly goal. Everything here is a pure function of its inputs.
package dashboard

import (
	"time"

	"crmseguros/internal/model"
	"crmseguros/internal/pipeline"
	"crmseguros/internal/poliza"

	"github.com/shopspring/decimal"
)

// Contadores are the activity counters shown above the goal panel.
type Contadores struct {
	ReunionesPendientes int `json:"reuniones_pendientes"`
	ContactosRealizados int `json:"contactos_realizados"`
	LeadsAvanzados      int `json:"leads_avanzados"`
	ReunionesSemana     int `json:"reuniones_semana"`
}

// Semana returns [Sunday 00:00, next Sunday 00:00) around t, in t's location.
func Semana(t time.Time) (inicio, fin time.Time) {
	y, m, d := t.Date()
	inicio = time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, -int(t.Weekday()))
	return inicio, inicio.AddDate(0, 0, 7)
}

func esContacto(tipo string) bool {
	return tipo == model.TareaLlamada || tipo == model.TareaReunion || tipo == model.TareaWhatsApp
}

// Contar computes the counters. ahora fixes the current week.
func Contar(tareas []model.Tarea, leads []model.Lead, ahora time.Time) Contadores {
	var c Contadores
	inicio, fin := Semana(ahora)

	for _, t := range tareas {
		completada := t.Estado == model.TareaCompletada
		if t.Tipo == model.TareaReunion && !completada {
			c.ReunionesPendientes++
		}
		if esContacto(t.Tipo) && completada {
			c.ContactosRealizados++
		}
		if t.Tipo == model.TareaReunion && t.FechaVencimiento != nil {
			v := *t.FechaVencimiento
			if !v.Before(inicio) && v.Before(fin) {
				c.ReunionesSemana++
			}
		}
	}
	for _, l := range leads {
		if pipeline.NormalizarEtapa(l.Etapa).EsAvanzada() {
			c.LeadsAvanzados++
		}
	}
	return c
}

// ── Sales against goals ──────────────────────────────────────────────────────

// Ventas is the realized monthly premium per ramo.
type Ventas struct {
	Vida  decimal.Decimal `json:"vida"`
	AP    decimal.Decimal `json:"ap"`
	Salud decimal.Decimal `json:"salud"`
}

func (v Ventas) De(r model.Ramo) decimal.Decimal {
	switch r {
	case model.RamoVida:
		return v.Vida
	case model.RamoAP:
		return v.AP
	case model.RamoSalud:
		return v.Salud
	}
	return decimal.Zero
}

func (v *Ventas) sumar(r model.Ramo, monto decimal.Decimal) {
	switch r {
	case model.RamoVida:
		v.Vida = v.Vida.Add(monto)
	case model.RamoAP:
		v.AP = v.AP.Add(monto)
	case model.RamoSalud:
		v.Salud = v.Salud.Add(monto)
	}
}

func (v Ventas) Total() decimal.Decimal {
	return v.Vida.Add(v.AP).Add(v.Salud)
}

// EnMes reports whether p is effective in the given month and year.
func EnMes(p model.Poliza, mes, anio int) bool {
	f := p.FechaEfectiva()
	return int(f.Month()) == mes && f.Year() == anio
}

// VentasDelMes sums the premium of ACTIVA policies effective in mes/anio. Product
// lines count towards their ramo; policies without lines count their total
// towards the ramo of their legacy product. Premium that matches no ramo is
// dropped.
func VentasDelMes(polizas []model.Poliza, mes, anio int) Ventas {
	v := Ventas{Vida: decimal.Zero, AP: decimal.Zero, Salud: decimal.Zero}
	for i := range polizas {
		p := &polizas[i]
		if p.Estado != model.PolizaActiva || !EnMes(*p, mes, anio) {
			continue
		}
		if len(p.ProductosDetalle) == 0 {
			v.sumar(poliza.RamoLegacy(p), p.PrimaTotal)
			continue
		}
		for _, d := range p.ProductosDetalle {
			v.sumar(poliza.RamoDeDetalle(d), d.PrimaMensual)
		}
	}
	return v
}

// Avance is the progress of one ramo.
type Avance struct {
	Ramo       model.Ramo      `json:"ramo"`
	Meta       decimal.Decimal `json:"meta"`
	Realizado  decimal.Decimal `json:"realizado"`
	Porcentaje decimal.Decimal `json:"porcentaje"`
}

// Comparacion is the goal panel.
type Comparacion struct {
	Ramos          []Avance        `json:"ramos"`
	MetaTotal      decimal.Decimal `json:"meta_total"`
	RealizadoTotal decimal.Decimal `json:"realizado_total"`
	Faltante       decimal.Decimal `json:"faltante"`
}

var cien = decimal.NewFromInt(100)

// Comparar sets realized sales against the goal. Faltante never goes below zero.
func Comparar(meta model.MetaMensual, v Ventas) Comparacion {
	c := Comparacion{
		Ramos:          make([]Avance, 0, len(model.Ramos)),
		MetaTotal:      meta.Total(),
		RealizadoTotal: v.Total(),
	}
	for _, r := range model.Ramos {
		a := Avance{Ramo: r, Meta: meta.Meta(r), Realizado: v.De(r), Porcentaje: decimal.Zero}
		if a.Meta.IsPositive() {
			a.Porcentaje = a.Realizado.Div(a.Meta).Mul(cien).Round(2)
		}
		c.Ramos = append(c.Ramos, a)
	}
	c.Faltante = decimal.Max(decimal.Zero, c.MetaTotal.Sub(c.RealizadoTotal))
	return c
}

// Resumen is the full dashboard payload.
type Resumen struct {
	Mes         int         `json:"mes"`
	Anio        int         `json:"anio"`
	Contadores  Contadores  `json:"contadores"`
	Ventas      Ventas      `json:"ventas"`
	Comparacion Comparacion `json:"comparacion"`
}

// Entrada gathers what the dashboard is computed from.
type Entrada struct {
	Tareas  []model.Tarea
	Leads   []model.Lead
	Polizas []model.Poliza
	Meta    model.MetaMensual
	Mes     int
	Anio    int
	Ahora   time.Time
}

// Resumir computes the dashboard.
func Resumir(in Entrada) Resumen {
	v := VentasDelMes(in.Polizas, in.Mes, in.Anio)
	return Resumen{
		Mes:         in.Mes,
		Anio:        in.Anio,
		Contadores:  Contar(in.Tareas, in.Leads, in.Ahora),
		Ventas:      v,
		Comparacion: Comparar(in.Meta, v),
	}
}
