package parsercontext

import (
	"slices"

	"github.com/gaze-network/ledger-importer/modules/importer/domain"
)

// Snapshot is an immutable copy of the models of a committed file.
type Snapshot struct {
	groups map[domain.Type][]domain.Model
	types  []domain.Type
}

func (c *Context) Snapshot() *Snapshot {
	s := &Snapshot{
		groups: make(map[domain.Type][]domain.Model, len(c.groups)),
		types:  c.Types(),
	}
	for _, t := range s.types {
		s.groups[t] = c.GetAll(t)
	}
	return s
}

func (s *Snapshot) Get(t domain.Type) []domain.Model {
	return slices.Clone(s.groups[t])
}

func (s *Snapshot) Types() []domain.Type {
	return slices.Clone(s.types)
}

func (s *Snapshot) Len() int {
	n := 0
	for _, models := range s.groups {
		n += len(models)
	}
	return n
}
