package world

import "strings"

// Town is a named spawn region with a temple position; depots and mail
// delivery resolve through towns.
type Town struct {
	ID        uint32
	Name      string
	TemplePos Position
}

// Towns is the id- and name-keyed town registry.
type Towns struct {
	byID   map[uint32]*Town
	byName map[string]*Town
}

// NewTowns creates an empty registry.
func NewTowns() *Towns {
	return &Towns{
		byID:   make(map[uint32]*Town),
		byName: make(map[string]*Town),
	}
}

// Add registers a town.
func (t *Towns) Add(town *Town) {
	t.byID[town.ID] = town
	t.byName[strings.ToLower(town.Name)] = town
}

// Get returns a town by id, or nil.
func (t *Towns) Get(id uint32) *Town { return t.byID[id] }

// GetByName returns a town by case-insensitive name, or nil.
func (t *Towns) GetByName(name string) *Town {
	return t.byName[strings.ToLower(name)]
}

// Count returns the number of registered towns.
func (t *Towns) Count() int { return len(t.byID) }

// All returns every registered town in no particular order.
func (t *Towns) All() []*Town {
	out := make([]*Town, 0, len(t.byID))
	for _, town := range t.byID {
		out = append(out, town)
	}
	return out
}
