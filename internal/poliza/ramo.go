package poliza

import (
	"strings"

	"crmseguros/internal/model"
	"crmseguros/internal/texto"
)

// ── Legacy category matching ──────────────────────────────────────────────────
// Catalog rows carry an explicit Ramo. Rows and policy lines written before that
// column existed only have free-text categories ("Vida Individual", "GMM",
// "Accidentes Personales"); those are classified here and nowhere else.
// "ap" is only matched as a whole word: as a substring it hits "capital", "mapfre".

// ClasificarRamo maps free text to a ramo. Unmatched text returns RamoNinguno.
func ClasificarRamo(s string) model.Ramo {
	t := texto.Normalizar(s)
	if t == "" {
		return model.RamoNinguno
	}
	switch {
	case strings.Contains(t, "vida") || strings.Contains(t, "life"):
		return model.RamoVida
	case strings.Contains(t, "accidente") || texto.ContienePalabra(t, "ap"):
		return model.RamoAP
	case strings.Contains(t, "salud") || strings.Contains(t, "gmm") || strings.Contains(t, "medico"):
		return model.RamoSalud
	}
	return model.RamoNinguno
}

// RamoDeProducto returns the explicit ramo of a catalog entry, falling back to its
// category and then its name.
func RamoDeProducto(p model.Producto) model.Ramo {
	if r := p.RamoDeclarado(); r.Valido() {
		return r
	}
	if r := ClasificarRamo(p.Categoria); r != model.RamoNinguno {
		return r
	}
	return ClasificarRamo(p.Nombre)
}

// RamoDeDetalle returns the ramo a product line counts towards.
func RamoDeDetalle(d model.ProductoDetalle) model.Ramo {
	if d.Ramo.Valido() {
		return d.Ramo
	}
	return ClasificarRamo(d.Categoria)
}
