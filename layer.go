package maskforge

import (
	"fmt"
	"sort"
)

// Layer identifies a drawing layer as a (layer number, datatype) pair,
// matching the GDSII LAYER and DATATYPE records. Region operations never
// mix layers implicitly; the Layer is the partition key everywhere.
type Layer struct {
	Number   int16
	Datatype int16
}

// String formats the layer as "number/datatype".
func (l Layer) String() string {
	return fmt.Sprintf("%d/%d", l.Number, l.Datatype)
}

// Less orders layers by number, then datatype. Used for deterministic
// iteration over per-layer maps.
func (l Layer) Less(other Layer) bool {
	if l.Number != other.Number {
		return l.Number < other.Number
	}
	return l.Datatype < other.Datatype
}

// SortLayers sorts a layer slice in place into canonical order.
func SortLayers(layers []Layer) {
	sort.Slice(layers, func(i, j int) bool { return layers[i].Less(layers[j]) })
}

// LayerTable maps symbolic layer names to Layer pairs. Generators and
// validation rules refer to layers by name; unknown names fail fast at
// design construction instead of silently drawing on a wrong layer.
type LayerTable struct {
	byName map[string]Layer
}

// NewLayerTable creates an empty layer table.
func NewLayerTable() *LayerTable {
	return &LayerTable{byName: make(map[string]Layer)}
}

// Register binds a symbolic name to a layer. Re-registering a name with a
// different layer is an error; registering the same pair again is a no-op.
func (t *LayerTable) Register(name string, l Layer) (Layer, error) {
	if prev, ok := t.byName[name]; ok {
		if prev != l {
			return Layer{}, fmt.Errorf("maskforge: layer name %q already bound to %s", name, prev)
		}
		return l, nil
	}
	t.byName[name] = l
	return l, nil
}

// Lookup resolves a symbolic name, failing with ErrUnknownLayer if the
// name was never registered.
func (t *LayerTable) Lookup(name string) (Layer, error) {
	l, ok := t.byName[name]
	if !ok {
		return Layer{}, fmt.Errorf("layer %q: %w", name, ErrUnknownLayer)
	}
	return l, nil
}

// Names returns the registered names in sorted order.
func (t *LayerTable) Names() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
