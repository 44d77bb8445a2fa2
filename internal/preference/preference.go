// Package preference holds user preferences in memory and persists them to a
// key-value backend.
package preference

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/bryan-buckman/vakantie/internal/database"
	"github.com/bryan-buckman/vakantie/internal/model"
)

// Backend is the key-value storage a Store reads from and writes to.
// database.Store satisfies it.
type Backend interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// Store is a single persisted value. Reads never block on storage: before
// Load completes they return the default.
type Store[T ~string] struct {
	backend  Backend
	key      string
	validate func(T) bool

	mu     sync.RWMutex
	value  T
	loaded bool
	dirty  bool // set before load completed; wins over the stored value

	once    sync.Once
	ready   chan struct{}
	writeMu sync.Mutex
	pending sync.WaitGroup
}

// New creates a store for key with the given default. Loaded values that
// fail validate are ignored.
func New[T ~string](backend Backend, key string, def T, validate func(T) bool) *Store[T] {
	return &Store[T]{
		backend:  backend,
		key:      key,
		validate: validate,
		value:    def,
		ready:    make(chan struct{}),
	}
}

// Load reads the persisted value once. A storage error counts as no value.
// The loaded flag is set exactly once, whatever the outcome; later calls are
// no-ops.
func (s *Store[T]) Load(ctx context.Context) {
	s.once.Do(func() {
		defer s.markLoaded()

		stored, err := s.read(ctx)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				log.Printf("Error loading preference %s: %v", s.key, err)
			}
			return
		}
		v := T(stored)
		if !s.validate(v) {
			log.Printf("Ignoring invalid preference %s=%q", s.key, stored)
			return
		}
		s.mu.Lock()
		if !s.dirty {
			s.value = v
		}
		s.mu.Unlock()
	})
}

// read runs the backend call in its own goroutine so a stuck backend cannot
// outlive ctx.
func (s *Store[T]) read(ctx context.Context) (string, error) {
	type result struct {
		val string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		val, err := s.backend.GetSetting(s.key)
		ch <- result{val, err}
	}()
	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Store[T]) markLoaded() {
	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()
	close(s.ready)
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Loaded reports whether Load has completed.
func (s *Store[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Ready is closed when Load completes.
func (s *Store[T]) Ready() <-chan struct{} {
	return s.ready
}

// Set updates the value immediately and persists it in the background.
// Write failures are logged and not retried.
func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	s.dirty = true
	s.mu.Unlock()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		// Writes are serialized and always persist the latest value, so the
		// stored value cannot lag behind memory once all writes finish.
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		if err := s.backend.SetSetting(s.key, string(s.Get())); err != nil {
			log.Printf("Error saving preference %s: %v", s.key, err)
		}
	}()
}

// Wait blocks until all writes started by Set have finished.
func (s *Store[T]) Wait() {
	s.pending.Wait()
}

// NewRegionStore returns the region preference, default Noord.
func NewRegionStore(backend Backend) *Store[model.Region] {
	return New(backend, model.SettingRegion, model.DefaultRegion, model.Region.Valid)
}

// NewSchoolYearStore returns the school year preference, defaulting to the
// school year that starts in now's calendar year.
func NewSchoolYearStore(backend Backend, now time.Time) *Store[model.SchoolYear] {
	return New(backend, model.SettingSchoolYear, model.CurrentSchoolYear(now), model.ValidSchoolYear)
}

// Preferences bundles the application's preference stores.
type Preferences struct {
	Region     *Store[model.Region]
	SchoolYear *Store[model.SchoolYear]
}

// NewPreferences creates both stores on one backend.
func NewPreferences(backend Backend, now time.Time) *Preferences {
	return &Preferences{
		Region:     NewRegionStore(backend),
		SchoolYear: NewSchoolYearStore(backend, now),
	}
}

// Load loads both stores concurrently and returns when both are loaded.
func (p *Preferences) Load(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.Region.Load(ctx)
	}()
	go func() {
		defer wg.Done()
		p.SchoolYear.Load(ctx)
	}()
	wg.Wait()
}

// Loaded reports whether both stores are loaded.
func (p *Preferences) Loaded() bool {
	return p.Region.Loaded() && p.SchoolYear.Loaded()
}

// WaitReady blocks until both stores are loaded or ctx is done.
func (p *Preferences) WaitReady(ctx context.Context) error {
	for _, ch := range []<-chan struct{}{p.Region.Ready(), p.SchoolYear.Ready()} {
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Wait blocks until pending writes of both stores have finished.
func (p *Preferences) Wait() {
	p.Region.Wait()
	p.SchoolYear.Wait()
}
