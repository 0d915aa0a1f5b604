package core

import (
	"fmt"
	"sync"
)

// ChartKind identifies how the binding view is drawn.
type ChartKind string

const (
	ChartBar           ChartKind = "bar"
	ChartBarHorizontal ChartKind = "bar-horizontal"
	ChartPie           ChartKind = "pie"
)

// ChartKindDef describes a chart kind the UI can offer.
type ChartKindDef struct {
	Key          ChartKind `json:"key"`
	Label        string    `json:"label"`
	Proportional bool      `json:"proportional"` // one series, positive values only
	Horizontal   bool      `json:"horizontal"`   // category axis drawn vertically
}

var (
	chartKinds   = make(map[ChartKind]ChartKindDef)
	chartKindSeq []ChartKind
	chartKindsMu sync.RWMutex
)

func init() {
	RegisterChartKind(ChartKindDef{Key: ChartBar, Label: "柱状图"})
	RegisterChartKind(ChartKindDef{Key: ChartBarHorizontal, Label: "条形图", Horizontal: true})
	RegisterChartKind(ChartKindDef{Key: ChartPie, Label: "饼图", Proportional: true})
}

// RegisterChartKind adds a chart kind.
// Panics if the key is already registered.
func RegisterChartKind(def ChartKindDef) {
	chartKindsMu.Lock()
	defer chartKindsMu.Unlock()

	if _, exists := chartKinds[def.Key]; exists {
		panic(fmt.Sprintf("chart kind already registered: %s", def.Key))
	}
	chartKinds[def.Key] = def
	chartKindSeq = append(chartKindSeq, def.Key)
}

// LookupChartKind returns the definition for key.
func LookupChartKind(key ChartKind) (ChartKindDef, bool) {
	chartKindsMu.RLock()
	defer chartKindsMu.RUnlock()

	def, ok := chartKinds[key]
	return def, ok
}

// ChartKinds returns all registered kinds in registration order.
func ChartKinds() []ChartKindDef {
	chartKindsMu.RLock()
	defer chartKindsMu.RUnlock()

	out := make([]ChartKindDef, 0, len(chartKindSeq))
	for _, k := range chartKindSeq {
		out = append(out, chartKinds[k])
	}
	return out
}

// ParseChartKind validates s against the registry.
func ParseChartKind(s string) (ChartKind, error) {
	if _, ok := LookupChartKind(ChartKind(s)); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownChartKind, s)
	}
	return ChartKind(s), nil
}
