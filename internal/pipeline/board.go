package pipeline

import (
	"context"
	"fmt"
	"sync"

	"crmseguros/internal/model"

	"github.com/google/uuid"
)

// Columna is one stage of the board with its leads in load order.
type Columna struct {
	Etapa Etapa        `json:"etapa"`
	Leads []model.Lead `json:"leads"`
}

// Movimiento describes the outcome of a drop. Lead is the board copy after the
// drop; Guardado is the stored lead whenever persistence succeeded, which after
// a failed promotion differs from the reverted board copy.
type Movimiento struct {
	Lead      model.Lead
	Guardado  *model.Lead
	Cambio    bool
	Promovido *model.Cliente
}

// Board is the kanban view of a set of leads. Moves are serialised; a failed move
// restores the board to its state before the drop.
type Board struct {
	mu       sync.Mutex
	orden    []uuid.UUID
	leads    map[uuid.UUID]model.Lead
	persist  Persistidor
	promotor Promotor
}

// NuevoBoard loads leads into the board. Stages are normalised so rows carrying
// legacy vocabulary land in their canonical column. p and pr may be nil for a
// read-only board.
func NuevoBoard(leads []model.Lead, p Persistidor, pr Promotor) *Board {
	b := &Board{
		orden:    make([]uuid.UUID, 0, len(leads)),
		leads:    make(map[uuid.UUID]model.Lead, len(leads)),
		persist:  p,
		promotor: pr,
	}
	for _, l := range leads {
		l.Etapa = string(NormalizarEtapa(l.Etapa))
		if _, dup := b.leads[l.ID]; !dup {
			b.orden = append(b.orden, l.ID)
		}
		b.leads[l.ID] = l
	}
	return b
}

// Columnas returns every stage in board order, empty ones included.
func (b *Board) Columnas() []Columna {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := make(map[Etapa]int, len(Etapas))
	cols := make([]Columna, len(Etapas))
	for i, e := range Etapas {
		idx[e] = i
		cols[i] = Columna{Etapa: e, Leads: []model.Lead{}}
	}
	for _, id := range b.orden {
		l := b.leads[id]
		i := idx[Etapa(l.Etapa)]
		cols[i].Leads = append(cols[i].Leads, l)
	}
	return cols
}

// Lead returns the current board copy of a lead.
func (b *Board) Lead(id uuid.UUID) (model.Lead, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.leads[id]
	return l, ok
}

// Mover drops lead id onto destino. A drop onto the lead's current stage makes no
// backend call. Otherwise the move is applied locally, the full lead is persisted
// and, when destino is won, promoted. Any failure restores the board and returns
// ErrGuardado or ErrPromocion; after ErrPromocion the stored stage stays changed.
func (b *Board) Mover(ctx context.Context, id uuid.UUID, destino Etapa) (Movimiento, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	actual, ok := b.leads[id]
	if !ok {
		return Movimiento{}, fmt.Errorf("lead %s no está en el tablero", id)
	}
	if Etapa(actual.Etapa) == destino {
		return Movimiento{Lead: actual}, nil
	}

	movido := actual
	movido.Etapa = string(destino)
	b.leads[id] = movido

	if err := b.persist.GuardarLead(ctx, &movido); err != nil {
		b.leads[id] = actual
		return Movimiento{Lead: actual}, fmt.Errorf("%w: %w", ErrGuardado, err)
	}
	if !destino.EsGanado() {
		b.leads[id] = movido
		return Movimiento{Lead: movido, Guardado: &movido, Cambio: true}, nil
	}

	c, err := b.promotor.PromoverLead(ctx, &movido)
	if err != nil {
		b.leads[id] = actual
		return Movimiento{Lead: actual, Guardado: &movido}, fmt.Errorf("%w: %w", ErrPromocion, err)
	}
	b.leads[id] = movido
	return Movimiento{Lead: movido, Guardado: &movido, Cambio: true, Promovido: c}, nil
}
