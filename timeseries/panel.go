package timeseries

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrDimensionMismatch = errors.New("series lengths differ within panel")
	ErrUnknownEntity     = errors.New("unknown entity name")
	ErrDuplicateEntity   = errors.New("duplicate entity name")
	ErrEmptyPanel        = errors.New("panel has no series")
	ErrInvalidSplit      = errors.New("invalid train split")
)

// Panel maps entity names to series of equal length over the same year
// range. Entities are reported in sorted name order so panel-wide feature
// construction is deterministic.
type Panel struct {
	series map[string]*Series
	names  []string
	length int
}

// NewPanel creates an empty panel.
func NewPanel() *Panel {
	return &Panel{series: make(map[string]*Series)}
}

// Add inserts a series into the panel. All series must share the same
// length; the first series added fixes it.
func (p *Panel) Add(s *Series) error {
	if _, ok := p.series[s.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateEntity, s.Name)
	}
	if len(p.names) == 0 {
		p.length = s.Len()
	} else if s.Len() != p.length {
		return fmt.Errorf("%w: %q has length %d, panel has %d",
			ErrDimensionMismatch, s.Name, s.Len(), p.length)
	}
	p.series[s.Name] = s
	i := sort.SearchStrings(p.names, s.Name)
	p.names = append(p.names, "")
	copy(p.names[i+1:], p.names[i:])
	p.names[i] = s.Name
	return nil
}

// Get returns the series for an entity.
func (p *Panel) Get(name string) (*Series, bool) {
	s, ok := p.series[name]
	return s, ok
}

// Entities returns the entity names in sorted order.
func (p *Panel) Entities() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// NumEntities returns the number of series in the panel.
func (p *Panel) NumEntities() int {
	return len(p.names)
}

// Length returns the common series length T.
func (p *Panel) Length() int {
	return p.length
}

// Validate checks that the requested entity names all exist in the panel.
func (p *Panel) Validate(names []string) error {
	if len(p.names) == 0 {
		return ErrEmptyPanel
	}
	for _, n := range names {
		if _, ok := p.series[n]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownEntity, n)
		}
	}
	return nil
}

// Subset returns a new panel containing only the named entities.
func (p *Panel) Subset(names []string) (*Panel, error) {
	if err := p.Validate(names); err != nil {
		return nil, err
	}
	sub := NewPanel()
	for _, n := range names {
		if err := sub.Add(p.series[n]); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// ClusterAssignment maps entity names to integer cluster ids. It is an
// external input, computed elsewhere and read-only here.
type ClusterAssignment map[string]int

// SubsetCluster returns the panel restricted to entities assigned the given
// cluster id. Entities without a label are skipped.
func (p *Panel) SubsetCluster(clusters ClusterAssignment, id int) (*Panel, error) {
	var names []string
	for _, n := range p.names {
		if c, ok := clusters[n]; ok && c == id {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: cluster %d matches no panel entity", ErrEmptyPanel, id)
	}
	return p.Subset(names)
}
