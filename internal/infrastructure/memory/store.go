// Package memory implementa los puertos de persistencia en memoria.
// Reproduce la semántica del adaptador PostgreSQL: bloqueo por producto con timeout,
// transacciones que confirman todo o nada y lecturas de datos confirmados.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
)

const defaultLockTimeout = 5 * time.Second

// Store estado compartido por todos los repos en memoria.
type Store struct {
	mu         sync.RWMutex
	categories map[string]*entity.Category
	products   map[string]*entity.Product
	movements  []*entity.Movement // orden de confirmación
	users      map[string]*entity.User

	locksMu     sync.Mutex
	locks       map[string]*keyLock
	lockTimeout time.Duration
}

// keyLock semáforo de un producto. refs cuenta quién lo tiene o lo espera;
// en cero la entrada se borra del mapa.
type keyLock struct {
	ch   chan struct{}
	refs int
}

// Option configura el Store.
type Option func(*Store)

// WithLockTimeout espera máxima por el bloqueo de un producto.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// NewStore crea un almacén vacío.
func NewStore(opts ...Option) *Store {
	s := &Store{
		categories:  make(map[string]*entity.Category),
		products:    make(map[string]*entity.Product),
		users:       make(map[string]*entity.User),
		locks:       make(map[string]*keyLock),
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// acquire toma el bloqueo exclusivo del producto o devuelve ErrConcurrencyConflict
// si vence el timeout o se cancela ctx.
func (s *Store) acquire(ctx context.Context, id string) error {
	if ctx.Err() != nil {
		return domain.ErrConcurrencyConflict
	}
	s.locksMu.Lock()
	kl, ok := s.locks[id]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		s.locks[id] = kl
	}
	kl.refs++
	s.locksMu.Unlock()

	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()
	select {
	case kl.ch <- struct{}{}:
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}
	s.unref(id, kl)
	return domain.ErrConcurrencyConflict
}

func (s *Store) release(id string) {
	s.locksMu.Lock()
	kl := s.locks[id]
	s.locksMu.Unlock()
	<-kl.ch
	s.unref(id, kl)
}

func (s *Store) unref(id string, kl *keyLock) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(s.locks, id)
	}
}

// op modifica el estado confirmado; se ejecuta con mu tomado en escritura.
// Devuelve la función que deshace el cambio.
type op func() (undo func(), err error)

// exec aplica una operación fuera de transacción.
func (s *Store) exec(o op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := o()
	return err
}

// tx transacción en memoria: escrituras diferidas hasta commit y vista propia de lo escrito.
type tx struct {
	s          *Store
	held       map[string]bool
	products   map[string]*entity.Product  // nil = borrado en la tx
	categories map[string]*entity.Category // nil = borrado en la tx
	movements  []*entity.Movement
	ops        []op
}

func newTx(s *Store) *tx {
	return &tx{
		s:          s,
		held:       make(map[string]bool),
		products:   make(map[string]*entity.Product),
		categories: make(map[string]*entity.Category),
	}
}

func (t *tx) lock(ctx context.Context, id string) error {
	if t.held[id] {
		return nil
	}
	if err := t.s.acquire(ctx, id); err != nil {
		return err
	}
	t.held[id] = true
	return nil
}

func (t *tx) releaseLocks() {
	for id := range t.held {
		t.s.release(id)
	}
	t.held = nil
}

// commit aplica todas las operaciones o ninguna.
func (t *tx) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	undos := make([]func(), 0, len(t.ops))
	for _, o := range t.ops {
		undo, err := o()
		if err != nil {
			for i := len(undos) - 1; i >= 0; i-- {
				undos[i]()
			}
			return err
		}
		undos = append(undos, undo)
	}
	return nil
}

// write ejecuta o difiere la operación según haya transacción.
func write(s *Store, t *tx, o op, stage func()) error {
	if t == nil {
		return s.exec(o)
	}
	t.ops = append(t.ops, o)
	if stage != nil {
		stage()
	}
	return nil
}

func cloneProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	c := *p
	if p.CategoryID != nil {
		v := *p.CategoryID
		c.CategoryID = &v
	}
	if p.Barcode != nil {
		v := *p.Barcode
		c.Barcode = &v
	}
	return &c
}

func cloneMovement(m *entity.Movement) *entity.Movement {
	c := *m
	if m.ActorID != nil {
		v := *m.ActorID
		c.ActorID = &v
	}
	return &c
}

func cloneCategory(c *entity.Category) *entity.Category {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}

func cloneUser(u *entity.User) *entity.User {
	v := *u
	return &v
}
