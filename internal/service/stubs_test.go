package service

import (
	"context"
	"errors"
	"time"

	"crmseguros/internal/dto"
	"crmseguros/internal/model"
	"crmseguros/internal/repository"
	"crmseguros/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory Repository Stubs ───────────────────────────────────────────────

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func agente(id uuid.UUID) session.Session {
	return session.Session{UsuarioID: id, Nombre: "Agente", Rol: model.RolAgente}
}

func admin() session.Session {
	return session.Session{UsuarioID: uuid.New(), Nombre: "Admin", Rol: model.RolAdmin}
}

type stubPolizaRepo struct {
	polizas map[uuid.UUID]*model.Poliza
	saves   int
	saveErr error
}

func newStubPolizaRepo() *stubPolizaRepo {
	return &stubPolizaRepo{polizas: map[uuid.UUID]*model.Poliza{}}
}

func (r *stubPolizaRepo) Save(_ context.Context, p *model.Poliza) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
		p.CreatedAt = time.Now()
	}
	cp := *p
	r.polizas[p.ID] = &cp
	return nil
}

func (r *stubPolizaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Poliza, error) {
	p, ok := r.polizas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubPolizaRepo) List(_ context.Context, f repository.PolizaFilter) ([]model.Poliza, error) {
	var out []model.Poliza
	for _, p := range r.polizas {
		if f.AgenteID != nil && (p.AgenteID == nil || *p.AgenteID != *f.AgenteID) {
			continue
		}
		if f.Estado != "" && p.Estado != f.Estado {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubPolizaRepo) ListActivasEntre(_ context.Context, agenteID *uuid.UUID, desde, hasta time.Time) ([]model.Poliza, error) {
	var out []model.Poliza
	for _, p := range r.polizas {
		if p.Estado != model.PolizaActiva {
			continue
		}
		if agenteID != nil && (p.AgenteID == nil || *p.AgenteID != *agenteID) {
			continue
		}
		f := p.FechaEfectiva()
		if f.Before(desde) || !f.Before(hasta) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubPolizaRepo) ImportarLegacy(_ context.Context, polizas []model.Poliza) (int64, error) {
	var n int64
	for i := range polizas {
		if _, ok := r.polizas[polizas[i].ID]; ok {
			continue
		}
		cp := polizas[i]
		r.polizas[cp.ID] = &cp
		n++
	}
	return n, nil
}

type stubClienteRepo struct {
	clientes    map[uuid.UUID]*model.Cliente
	promoverErr error
	promovidos  int
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: map[uuid.UUID]*model.Cliente{}}
}

func (r *stubClienteRepo) add(agenteID *uuid.UUID) *model.Cliente {
	c := &model.Cliente{ID: uuid.New(), Nombre: "Cliente", AgenteID: agenteID}
	r.clientes[c.ID] = c
	return c
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClienteRepo) FindByLeadID(_ context.Context, leadID uuid.UUID) (*model.Cliente, error) {
	for _, c := range r.clientes {
		if c.LeadID != nil && *c.LeadID == leadID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClienteRepo) List(_ context.Context, agenteID *uuid.UUID) ([]model.Cliente, error) {
	var out []model.Cliente
	for _, c := range r.clientes {
		if agenteID == nil || (c.AgenteID != nil && *c.AgenteID == *agenteID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) PromoverLead(ctx context.Context, l *model.Lead) (*model.Cliente, error) {
	if r.promoverErr != nil {
		return nil, r.promoverErr
	}
	if c, err := r.FindByLeadID(ctx, l.ID); err == nil {
		return c, nil
	}
	r.promovidos++
	lid := l.ID
	c := &model.Cliente{ID: uuid.New(), Nombre: l.Nombre, Email: l.Email, Telefono: l.Telefono, LeadID: &lid, AgenteID: l.AgenteID}
	r.clientes[c.ID] = c
	return c, nil
}

type stubLeadRepo struct {
	leads   map[uuid.UUID]*model.Lead
	saves   int
	saveErr error
}

func newStubLeadRepo() *stubLeadRepo {
	return &stubLeadRepo{leads: map[uuid.UUID]*model.Lead{}}
}

func (r *stubLeadRepo) add(etapa string, agenteID *uuid.UUID) *model.Lead {
	l := &model.Lead{ID: uuid.New(), Nombre: "Lead", Etapa: etapa, AgenteID: agenteID}
	r.leads[l.ID] = l
	return l
}

func (r *stubLeadRepo) Save(_ context.Context, l *model.Lead) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	cp := *l
	r.leads[l.ID] = &cp
	return nil
}

func (r *stubLeadRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Lead, error) {
	l, ok := r.leads[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *stubLeadRepo) List(_ context.Context, agenteID *uuid.UUID) ([]model.Lead, error) {
	var out []model.Lead
	for _, l := range r.leads {
		if agenteID == nil || (l.AgenteID != nil && *l.AgenteID == *agenteID) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubLeadRepo) CreateBatch(_ context.Context, leads []model.Lead) error {
	for i := range leads {
		cp := leads[i]
		r.leads[cp.ID] = &cp
	}
	return nil
}

type stubTareaRepo struct {
	tareas map[uuid.UUID]*model.Tarea
}

func newStubTareaRepo() *stubTareaRepo {
	return &stubTareaRepo{tareas: map[uuid.UUID]*model.Tarea{}}
}

func (r *stubTareaRepo) Create(_ context.Context, t *model.Tarea) error {
	t.ID = uuid.New()
	cp := *t
	r.tareas[t.ID] = &cp
	return nil
}

func (r *stubTareaRepo) Update(_ context.Context, t *model.Tarea) error {
	cp := *t
	r.tareas[t.ID] = &cp
	return nil
}

func (r *stubTareaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Tarea, error) {
	t, ok := r.tareas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubTareaRepo) List(_ context.Context, f repository.TareaFilter) ([]model.Tarea, error) {
	var out []model.Tarea
	for _, t := range r.tareas {
		if f.AgenteID != nil && (t.AgenteID == nil || *t.AgenteID != *f.AgenteID) {
			continue
		}
		if f.Estado != "" && t.Estado != f.Estado {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

type metaKey struct {
	mes, anio int
	agente    uuid.UUID
}

type stubMetaRepo struct {
	metas  map[metaKey]*model.MetaMensual
	getErr error
}

func newStubMetaRepo() *stubMetaRepo {
	return &stubMetaRepo{metas: map[metaKey]*model.MetaMensual{}}
}

func claveMeta(mes, anio int, agenteID *uuid.UUID) metaKey {
	k := metaKey{mes: mes, anio: anio}
	if agenteID != nil {
		k.agente = *agenteID
	}
	return k
}

func (r *stubMetaRepo) Get(_ context.Context, mes, anio int, agenteID *uuid.UUID) (*model.MetaMensual, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	m, ok := r.metas[claveMeta(mes, anio, agenteID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *stubMetaRepo) Save(_ context.Context, m *model.MetaMensual) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	r.metas[claveMeta(m.Mes, m.Anio, m.AgenteID)] = &cp
	return nil
}

type stubUsuarioRepo struct {
	users map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: map[uuid.UUID]*model.Usuario{}}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	u.ID = uuid.New()
	r.users[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.users {
		if u.Username == username && u.Activo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	out := make([]model.Usuario, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) ListAgentes(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.users {
		if u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = false
	return nil
}

func (r *stubUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = true
	return nil
}

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
	listas    int
}

func newStubProductoRepo(ps ...model.Producto) *stubProductoRepo {
	r := &stubProductoRepo{productos: map[uuid.UUID]*model.Producto{}}
	for i := range ps {
		p := ps[i]
		r.productos[p.ID] = &p
	}
	return r
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	p.ID = uuid.New()
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) List(_ context.Context, f dto.ProductoFilter) ([]model.Producto, error) {
	r.listas++
	var out []model.Producto
	for _, p := range r.productos {
		if f.Activo == "true" && !p.Activo {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = true
	return nil
}

// catalogoFijo is a CatalogoProvider over a fixed slice.
type catalogoFijo []model.Producto

func (c catalogoFijo) Catalogo(context.Context) ([]model.Producto, error) { return c, nil }

var errBackend = errors.New("backend caído")
