package diplomacy

import (
	"fmt"
	"sort"
)

// Map holds the territory graph. It is read-only once NewMap returns and may
// be shared between concurrent adjudications.
type Map struct {
	Territories map[string]*Territory
	adjacency   map[string]map[string]bool
	names       []string
}

// NewMap builds a board from territory descriptors and undirected adjacency
// pairs. Adjacencies must join two lands, or two non-lands (sea or coast),
// and must not repeat.
func NewMap(descriptors []TerritoryDescriptor, adjacencies [][2]string) (*Map, error) {
	m := &Map{
		Territories: make(map[string]*Territory, len(descriptors)),
		adjacency:   make(map[string]map[string]bool, len(descriptors)),
	}

	for _, d := range descriptors {
		if d.Sea {
			if len(d.Coasts) > 0 {
				return nil, fmt.Errorf("%w: sea %q cannot have coasts", ErrInvalidMap, d.Name)
			}
			if err := m.add(&Territory{Name: d.Name, Kind: SeaTerritory}); err != nil {
				return nil, err
			}
			continue
		}
		land := &Territory{Name: d.Name, Kind: LandTerritory}
		for _, c := range d.Coasts {
			land.Coasts = append(land.Coasts, &Territory{Name: c, Kind: CoastTerritory, Parent: land})
		}
		if err := m.add(land); err != nil {
			return nil, err
		}
		for _, c := range land.Coasts {
			if err := m.add(c); err != nil {
				return nil, err
			}
		}
	}

	for _, pair := range adjacencies {
		a, okA := m.Territories[pair[0]]
		b, okB := m.Territories[pair[1]]
		if !okA || !okB {
			return nil, fmt.Errorf("%w: adjacency %s-%s", ErrUnknownTerritory, pair[0], pair[1])
		}
		if a == b {
			return nil, fmt.Errorf("%w: %s adjacent to itself", ErrInvalidMap, a.Name)
		}
		if (a.Kind == LandTerritory) != (b.Kind == LandTerritory) {
			return nil, fmt.Errorf("%w: %s %s cannot border %s %s", ErrInvalidMap, a.Kind, a.Name, b.Kind, b.Name)
		}
		if m.adjacency[a.Name][b.Name] {
			return nil, fmt.Errorf("%w: duplicate adjacency %s-%s", ErrInvalidMap, a.Name, b.Name)
		}
		m.adjacency[a.Name][b.Name] = true
		m.adjacency[b.Name][a.Name] = true
	}

	sort.Strings(m.names)
	return m, nil
}

func (m *Map) add(t *Territory) error {
	if t.Name == "" {
		return fmt.Errorf("%w: empty territory name", ErrInvalidMap)
	}
	if _, dup := m.Territories[t.Name]; dup {
		return fmt.Errorf("%w: duplicate territory %q", ErrInvalidMap, t.Name)
	}
	m.Territories[t.Name] = t
	m.adjacency[t.Name] = make(map[string]bool)
	m.names = append(m.names, t.Name)
	return nil
}

// Territory looks up a territory by name.
func (m *Map) Territory(name string) (*Territory, bool) {
	t, ok := m.Territories[name]
	return t, ok
}

// Has reports whether name is a territory on this board.
func (m *Map) Has(name string) bool {
	_, ok := m.Territories[name]
	return ok
}

// Canonical maps a coast to its parent land. Every other name, including
// unknown ones, is returned as-is. Occupation, dislodgement and supply
// ownership are keyed by canonical names; movement destinations are not.
func (m *Map) Canonical(name string) string {
	if t, ok := m.Territories[name]; ok && t.Kind == CoastTerritory {
		return t.Parent.Name
	}
	return name
}

// SameTerritory reports whether a and b denote the same physical territory,
// treating every coast as identical to its land.
func (m *Map) SameTerritory(a, b string) bool {
	return m.Canonical(a) == m.Canonical(b)
}

// Adjacent reports whether a and b share an edge. Coasts and lands are
// distinct nodes here.
func (m *Map) Adjacent(a, b string) bool {
	return m.adjacency[a][b]
}

// Neighbors returns the territories adjacent to name in sorted order.
func (m *Map) Neighbors(name string) []string {
	adj := m.adjacency[name]
	out := make([]string, 0, len(adj))
	for n := range adj {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Family returns the canonical land (or sea) for name followed by every
// coast of that land.
func (m *Map) Family(name string) []string {
	t, ok := m.Territories[m.Canonical(name)]
	if !ok {
		return nil
	}
	out := []string{t.Name}
	for _, c := range t.Coasts {
		out = append(out, c.Name)
	}
	return out
}

// Names returns every territory name in sorted order.
func (m *Map) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// CanEnter reports whether u can move to dest in one step.
func (m *Map) CanEnter(u Unit, dest string) bool {
	t, ok := m.Territories[dest]
	if !ok || !m.Adjacent(u.Position, dest) {
		return false
	}
	return t.Accepts(u.Type)
}

// CanSupportInto reports whether u could support an action at dest. Being
// able to enter any member of dest's family is enough.
func (m *Map) CanSupportInto(u Unit, dest string) bool {
	for _, name := range m.Family(dest) {
		if m.CanEnter(u, name) {
			return true
		}
	}
	return false
}

// ConvoyCompatible reports whether name is a land with at least one coast.
func (m *Map) ConvoyCompatible(name string) bool {
	t, ok := m.Territories[name]
	return ok && t.ConvoyCompatible()
}
