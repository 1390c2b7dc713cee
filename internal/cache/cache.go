package cache

// cache.go — store TTL de snapshots de cadenas, keyed por ticker.
//
// Es el único estado mutable compartido del pipeline:
//   - Lecturas dentro de la ventana TTL nunca tocan el feed.
//   - Los misses concurrentes del mismo ticker se deduplican con
//     singleflight: un solo batch en vuelo por ticker, el resto espera.
//   - Las escrituras son atómicas y visibles solo al completar: un Clear
//     a mitad de vuelo descarta el resultado del fetch en curso (los
//     callers que ya esperaban lo reciben, pero no se almacena).

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alejandrodnm/putscan/internal/domain"
)

// FetchFunc ejecuta el batch de fetch completo para un ticker.
type FetchFunc func(ctx context.Context, ticker string) (domain.ChainSnapshot, error)

// Store es la cache TTL con protección contra estampidas.
type Store struct {
	ttl   time.Duration
	fetch FetchFunc
	now   func() time.Time

	flight singleflight.Group

	mu      sync.RWMutex
	entries map[string]domain.ChainSnapshot
	gens    map[string]uint64 // generación por ticker, bump en cada Clear
}

// New crea un Store con el TTL y la función de fetch dados.
func New(ttl time.Duration, fetch FetchFunc) *Store {
	return &Store{
		ttl:     ttl,
		fetch:   fetch,
		now:     time.Now,
		entries: make(map[string]domain.ChainSnapshot),
		gens:    make(map[string]uint64),
	}
}

// Get devuelve el snapshot cacheado si sigue dentro del TTL; si no,
// dispara (o espera) el único fetch en vuelo para ese ticker.
func (s *Store) Get(ctx context.Context, ticker string) (domain.ChainSnapshot, error) {
	key := domain.NormalizeTicker(ticker)

	if snap, ok := s.lookup(key); ok {
		return snap, nil
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		// Otro caller pudo poblar la entrada mientras esperábamos el turno.
		if snap, ok := s.lookup(key); ok {
			return snap, nil
		}

		gen := s.generation(key)

		snap, err := s.fetch(ctx, key)
		if err != nil {
			return domain.ChainSnapshot{}, err
		}

		s.mu.Lock()
		// Un Clear durante el fetch invalida este resultado: se devuelve a
		// los callers que ya esperaban pero no sobrevive en la cache.
		if s.gens[key] == gen {
			s.entries[key] = snap
		}
		s.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return domain.ChainSnapshot{}, err
	}
	return v.(domain.ChainSnapshot), nil
}

// Clear invalida entradas: con tickers concretos borra esos, sin argumentos
// borra todo. Los fetches en vuelo de las keys afectadas quedan huérfanos.
func (s *Store) Clear(tickers ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(tickers) == 0 {
		// gens es el registro de toda key que alguna vez inició un fetch.
		for key := range s.gens {
			s.clearKeyLocked(key)
		}
		return
	}

	for _, t := range tickers {
		s.clearKeyLocked(domain.NormalizeTicker(t))
	}
}

// clearKeyLocked borra una key. Requiere s.mu tomado.
func (s *Store) clearKeyLocked(key string) {
	delete(s.entries, key)
	s.gens[key]++
	s.flight.Forget(key)
}

// lookup devuelve la entrada si existe y sigue fresca.
func (s *Store) lookup(key string) (domain.ChainSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.entries[key]
	if !ok {
		return domain.ChainSnapshot{}, false
	}
	if s.now().Sub(snap.FetchedAt) >= s.ttl {
		return domain.ChainSnapshot{}, false
	}
	return snap, true
}

// generation registra la key y devuelve su generación actual.
func (s *Store) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gens[key]; !ok {
		s.gens[key] = 0
	}
	return s.gens[key]
}
