package poliza

import (
	"errors"
	"time"

	"crmseguros/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var (
	ErrSinProductos = errors.New("agregue al menos un producto a la póliza")
	ErrSinCliente   = errors.New("seleccione un cliente para la póliza")
)

// EstadoValido reports whether s is a known policy status.
func EstadoValido(s string) bool {
	switch s {
	case model.PolizaActiva, model.PolizaPendientePago, model.PolizaCancelada, model.PolizaVencida:
		return true
	}
	return false
}

// Editor is the in-memory state of a policy being composed. Product lines are kept
// in insertion order, which is also the display and total order.
type Editor struct {
	catalogo map[uuid.UUID]model.Producto

	PolizaID         *uuid.UUID
	NumeroPoliza     *string
	ClienteID        *uuid.UUID
	Productos        []model.ProductoDetalle
	Estado           string
	FechaEmision     *time.Time
	FechaVencimiento *time.Time
	AgenteID         *uuid.UUID
	CreatedAt        time.Time
}

// NuevoEditor starts an empty policy over the loaded catalog.
func NuevoEditor(catalogo []model.Producto) *Editor {
	e := &Editor{
		catalogo:  make(map[uuid.UUID]model.Producto, len(catalogo)),
		Productos: []model.ProductoDetalle{},
		Estado:    model.PolizaPendientePago,
	}
	for _, p := range catalogo {
		e.catalogo[p.ID] = p
	}
	return e
}

// EditorDesdePoliza loads an existing policy, rebuilding legacy single-product
// policies into one product line.
func EditorDesdePoliza(p *model.Poliza, catalogo []model.Producto) *Editor {
	e := NuevoEditor(catalogo)
	id := p.ID
	cliente := p.ClienteID
	e.PolizaID = &id
	e.NumeroPoliza = p.NumeroPoliza
	e.ClienteID = &cliente
	e.Productos = ReconciliarLegacy(p)
	e.Estado = p.Estado
	e.FechaEmision = p.FechaEmision
	e.FechaVencimiento = p.FechaVencimiento
	e.AgenteID = p.AgenteID
	e.CreatedAt = p.CreatedAt
	return e
}

// AgregarProducto appends a priced line for a catalog product. It does nothing and
// returns false when the product, premium or insured sum is missing, or when the
// product is not in the loaded catalog.
func (e *Editor) AgregarProducto(productoID uuid.UUID, prima, suma *decimal.Decimal) bool {
	if productoID == uuid.Nil || prima == nil || suma == nil {
		return false
	}
	p, ok := e.catalogo[productoID]
	if !ok {
		return false
	}
	e.Productos = append(e.Productos, ArmarDetalle(p, *prima, *suma))
	return true
}

// ConservarDetalle appends an already priced line unchanged, keeping its snapshot
// and, for legacy lines, its stored commission.
func (e *Editor) ConservarDetalle(d model.ProductoDetalle) {
	e.Productos = append(e.Productos, d)
}

// RepreciarDetalle appends a stored line with new amounts, priced with the
// percentage captured in its snapshot. It serves lines whose product has left the
// active catalog. Legacy lines carry no percentage and return false.
func (e *Editor) RepreciarDetalle(d model.ProductoDetalle, prima, suma *decimal.Decimal) bool {
	if d.Legacy || prima == nil || suma == nil {
		return false
	}
	d.PrimaMensual = *prima
	d.SumaAsegurada = *suma
	d.ComisionGenerada = ComisionMensual(*prima, d.PorcentajeComision)
	e.Productos = append(e.Productos, d)
	return true
}

// QuitarProducto removes the line at index i.
func (e *Editor) QuitarProducto(i int) bool {
	if i < 0 || i >= len(e.Productos) {
		return false
	}
	e.Productos = append(e.Productos[:i], e.Productos[i+1:]...)
	return true
}

// Totales returns the current aggregates.
func (e *Editor) Totales() Totales {
	return CalcularTotales(e.Productos)
}

// Validar checks the policy can be persisted.
func (e *Editor) Validar() error {
	if len(e.Productos) == 0 {
		return ErrSinProductos
	}
	if e.ClienteID == nil || *e.ClienteID == uuid.Nil {
		return ErrSinCliente
	}
	return nil
}

// Snapshot builds the record to persist. The first line's product becomes the
// legacy single-product reference.
func (e *Editor) Snapshot() (*model.Poliza, error) {
	if err := e.Validar(); err != nil {
		return nil, err
	}

	t := e.Totales().Redondear()
	detalle := make([]model.ProductoDetalle, len(e.Productos))
	copy(detalle, e.Productos)
	primero := detalle[0].ProductoID

	estado := e.Estado
	if estado == "" {
		estado = model.PolizaPendientePago
	}

	p := &model.Poliza{
		NumeroPoliza:       e.NumeroPoliza,
		ClienteID:          *e.ClienteID,
		ProductoID:         &primero,
		ProductosDetalle:   datatypes.JSONSlice[model.ProductoDetalle](detalle),
		PrimaTotal:         t.PrimaTotal,
		SumaAseguradaTotal: t.SumaAseguradaTotal,
		ComisionAgente:     t.ComisionAgente,
		FechaEmision:       e.FechaEmision,
		FechaVencimiento:   e.FechaVencimiento,
		Estado:             estado,
		AgenteID:           e.AgenteID,
		CreatedAt:          e.CreatedAt,
	}
	if e.PolizaID != nil {
		p.ID = *e.PolizaID
	}
	return p, nil
}
