package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
)

// Imposter is a decoded imposter definition.
type Imposter = map[string]any

// Store holds the current imposters. Imposters are kept as raw JSON and
// decoded on every read, so callers may modify what they get back.
type Store struct {
	mu        sync.RWMutex
	imposters []json.RawMessage
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Len returns the number of imposters.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.imposters)
}

// All returns a fresh copy of every imposter, in insertion order.
func (s *Store) All() ([]Imposter, error) {
	s.mu.RLock()
	raw := append([]json.RawMessage(nil), s.imposters...)
	s.mu.RUnlock()
	return decodeAll(raw)
}

// Replace swaps the whole set and returns the new imposters.
func (s *Store) Replace(imposters []Imposter) ([]Imposter, error) {
	raw, err := encodeAll(imposters)
	if err != nil {
		return nil, err
	}
	if err := checkPorts(imposters); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.imposters = raw
	s.mu.Unlock()
	return decodeAll(raw)
}

// Add appends one imposter. It fails if another imposter uses the same port.
func (s *Store) Add(imp Imposter) error {
	data, err := json.Marshal(imp)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if port, ok := portOf(imp); ok {
		existing, err := decodeAll(s.imposters)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if p, ok := portOf(e); ok && p == port {
				return &PortConflictError{Port: port}
			}
		}
	}
	s.imposters = append(s.imposters, data)
	return nil
}

// DeleteAll removes every imposter and returns the removed set.
func (s *Store) DeleteAll() ([]Imposter, error) {
	s.mu.Lock()
	raw := s.imposters
	s.imposters = nil
	s.mu.Unlock()
	return decodeAll(raw)
}

// PortConflictError is returned when two imposters share a port.
type PortConflictError struct {
	Port string
}

func (e *PortConflictError) Error() string {
	return fmt.Sprintf("port %s is already in use", e.Port)
}

func checkPorts(imposters []Imposter) error {
	seen := make(map[string]bool, len(imposters))
	for _, imp := range imposters {
		port, ok := portOf(imp)
		if !ok {
			continue
		}
		if seen[port] {
			return &PortConflictError{Port: port}
		}
		seen[port] = true
	}
	return nil
}

func portOf(imp Imposter) (string, bool) {
	v, ok := imp["port"]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprint(v), true
}

func encodeAll(imposters []Imposter) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, 0, len(imposters))
	for _, imp := range imposters {
		data, err := json.Marshal(imp)
		if err != nil {
			return nil, err
		}
		raw = append(raw, data)
	}
	return raw, nil
}

func decodeAll(raw []json.RawMessage) ([]Imposter, error) {
	out := make([]Imposter, 0, len(raw))
	for _, data := range raw {
		imp, err := decodeImposter(data)
		if err != nil {
			return nil, err
		}
		out = append(out, imp)
	}
	return out, nil
}

// decodeImposter decodes one imposter object, keeping numbers exact.
func decodeImposter(data []byte) (Imposter, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var imp Imposter
	if err := dec.Decode(&imp); err != nil {
		return nil, err
	}
	if imp == nil {
		return nil, fmt.Errorf("imposter must be a JSON object")
	}
	return imp, nil
}
