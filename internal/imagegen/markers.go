package imagegen

import "sync"

// Markers tracks in-flight generations. A marker is keyed by the session scope and the
// page key, so two users never block each other.
type Markers struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewMarkers() *Markers {
	return &Markers{active: make(map[string]struct{})}
}

func markerKey(scope, key string) string {
	return scope + "\x00" + key
}

// Acquire sets the marker. The returned func clears it and is safe to call more than once.
func (m *Markers) Acquire(scope, key string) (func(), error) {
	k := markerKey(scope, key)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.active[k]; busy {
		return nil, ErrAlreadyGenerating
	}
	m.active[k] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.active, k)
			m.mu.Unlock()
		})
	}, nil
}

// Held reports whether the marker is set.
func (m *Markers) Held(scope, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, busy := m.active[markerKey(scope, key)]
	return busy
}

// Len is the number of generations in flight.
func (m *Markers) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}
