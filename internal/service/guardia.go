package service

import (
	"sync"

	"github.com/google/uuid"
)

// guardia allows one save at a time per entity id. A second save arriving while
// the first is running is refused rather than queued.
type guardia struct {
	mu      sync.Mutex
	activos map[uuid.UUID]struct{}
}

func nuevaGuardia() *guardia {
	return &guardia{activos: make(map[uuid.UUID]struct{})}
}

// tomar marks id as being saved. The returned func releases it.
func (g *guardia) tomar(id uuid.UUID) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.activos[id]; ok {
		return nil, ErrGuardadoEnCurso
	}
	g.activos[id] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.activos, id)
		g.mu.Unlock()
	}, nil
}
