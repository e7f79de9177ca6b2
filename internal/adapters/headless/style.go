package headless

import (
	"errors"
	"fmt"
	"slices"

	"github.com/paulmach/orb"

	"github.com/samirrijal/geogrid/internal/core/domain"
)

var (
	ErrSourceExists  = errors.New("source already exists")
	ErrUnknownSource = errors.New("source does not exist")
	ErrSourceInUse   = errors.New("source is used by a layer")
	ErrLayerExists   = errors.New("layer already exists")
	ErrUnknownLayer  = errors.New("layer does not exist")
)

// style is the source and layer registry of a map. Layers are ordered bottom to top.
type style struct {
	sources map[string]orb.MultiLineString
	layers  []domain.LineLayer
}

func newStyle(base []domain.LineLayer) *style {
	return &style{
		sources: make(map[string]orb.MultiLineString),
		layers:  append([]domain.LineLayer(nil), base...),
	}
}

func (s *style) addSource(id string, data orb.MultiLineString) error {
	if _, ok := s.sources[id]; ok {
		return fmt.Errorf("%w: %s", ErrSourceExists, id)
	}
	s.sources[id] = data.Clone()
	return nil
}

func (s *style) setSourceData(id string, data orb.MultiLineString) error {
	if _, ok := s.sources[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	s.sources[id] = data.Clone()
	return nil
}

func (s *style) removeSource(id string) error {
	if _, ok := s.sources[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	for _, l := range s.layers {
		if l.SourceID == id {
			return fmt.Errorf("%w: %s by %s", ErrSourceInUse, id, l.ID)
		}
	}
	delete(s.sources, id)
	return nil
}

func (s *style) layerIndex(id string) int {
	return slices.IndexFunc(s.layers, func(l domain.LineLayer) bool { return l.ID == id })
}

func (s *style) addLayer(layer domain.LineLayer, beforeID string) error {
	if s.layerIndex(layer.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrLayerExists, layer.ID)
	}
	if _, ok := s.sources[layer.SourceID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, layer.SourceID)
	}
	if beforeID == "" {
		s.layers = append(s.layers, layer)
		return nil
	}
	i := s.layerIndex(beforeID)
	if i < 0 {
		return fmt.Errorf("%w: cannot add %s before %s", ErrUnknownLayer, layer.ID, beforeID)
	}
	s.layers = slices.Insert(s.layers, i, layer)
	return nil
}

func (s *style) removeLayer(id string) error {
	i := s.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	s.layers = slices.Delete(s.layers, i, i+1)
	return nil
}
