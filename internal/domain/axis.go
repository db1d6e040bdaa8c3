package domain

import (
	"fmt"
	"strings"
)

// MultiAxisKind is a channel kind whose value packs one token per axis,
// e.g. a PathPosition of "1.0 2.0 3.0".
type MultiAxisKind struct {
	Name string
	Axes []string
}

// PathPosition is the three-axis tool position reported by machine tools.
var PathPosition = MultiAxisKind{Name: "PathPosition", Axes: []string{"X", "Y", "Z"}}

// Arity is the number of tokens a value of this kind must carry.
func (k MultiAxisKind) Arity() int { return len(k.Axes) }

// Split breaks value into per-axis tokens. It fails unless exactly Arity
// whitespace-separated tokens are present.
func (k MultiAxisKind) Split(value string) ([]string, error) {
	tokens := strings.Fields(value)
	if len(tokens) != k.Arity() {
		return nil, fmt.Errorf("%s: expected %d tokens, got %d in %q", k.Name, k.Arity(), len(tokens), value)
	}
	return tokens, nil
}

// AxisID is the data item id of one axis record, e.g. "p1_X".
func (k MultiAxisKind) AxisID(dataItemID string, axis int) string {
	return dataItemID + "_" + k.Axes[axis]
}

// AxisKinds indexes multi-axis kinds by channel kind name.
type AxisKinds map[string]MultiAxisKind

// DefaultAxisKinds returns a fresh registry holding the built-in kinds.
func DefaultAxisKinds() AxisKinds {
	return AxisKinds{PathPosition.Name: PathPosition}
}

// Register adds or replaces a kind.
func (a AxisKinds) Register(k MultiAxisKind) {
	a[k.Name] = k
}

// Lookup returns the multi-axis kind registered under name, if any.
func (a AxisKinds) Lookup(name string) (MultiAxisKind, bool) {
	k, ok := a[name]
	return k, ok
}
