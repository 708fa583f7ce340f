package pipeline

import (
	"context"
	"errors"
	"fmt"

	"crmseguros/internal/model"
)

var (
	// ErrGuardado means the lead could not be persisted. Nothing was promoted.
	ErrGuardado = errors.New("no se pudo guardar el lead")
	// ErrPromocion means the lead was persisted but creating its client failed.
	// The persisted stage is kept.
	ErrPromocion = errors.New("el lead se guardó pero no se pudo convertir en cliente")
)

// Persistidor stores a full lead record.
type Persistidor interface {
	GuardarLead(ctx context.Context, l *model.Lead) error
}

// Promotor creates the client record of a won lead. Implementations must be
// idempotent by lead id.
type Promotor interface {
	PromoverLead(ctx context.Context, l *model.Lead) (*model.Cliente, error)
}

// GuardarLead runs the manual-edit protocol: the stage is normalised, the lead is
// persisted, and only then, if the stage is won, promoted. The returned client is
// nil unless a promotion happened.
func GuardarLead(ctx context.Context, l *model.Lead, p Persistidor, pr Promotor) (*model.Cliente, error) {
	etapa := NormalizarEtapa(l.Etapa)
	l.Etapa = string(etapa)

	if err := p.GuardarLead(ctx, l); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGuardado, err)
	}
	if !etapa.EsGanado() {
		return nil, nil
	}
	c, err := pr.PromoverLead(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPromocion, err)
	}
	return c, nil
}
