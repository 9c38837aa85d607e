// Package parsercontext accumulates the domain mutations of one record file, keyed by type and
// natural identity, until the file is flushed.
package parsercontext

import (
	"reflect"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

// Context is owned by a single file's processing and is not safe for concurrent writes.
type Context struct {
	groups   map[domain.Type]*group
	aliases  map[aliasKey]entityid.EntityId
	bindings []AliasBinding
	size     int
}

type group struct {
	index  map[any]int
	models []domain.Model
}

type aliasKey struct {
	kind  entityid.AliasKind
	value string
}

// AliasBinding is an alias or EVM address bound to an entity within the current file.
type AliasBinding struct {
	Kind  entityid.AliasKind
	Value []byte
	Id    entityid.EntityId
}

var _ entityid.PendingLookup = (*Context)(nil)

func New() *Context {
	return &Context{
		groups:  make(map[domain.Type]*group),
		aliases: make(map[aliasKey]entityid.EntityId),
	}
}

// Add stores m under its (type, key), replacing any previous model in place.
func (c *Context) Add(m domain.Model) error {
	if isNil(m) {
		return errors.Wrap(errs.Precondition, "can't add nil model to parser context")
	}
	g, ok := c.groups[m.Type()]
	if !ok {
		g = &group{index: make(map[any]int)}
		c.groups[m.Type()] = g
	}
	key := m.Key()
	if i, ok := g.index[key]; ok {
		g.models[i] = m
	} else {
		g.index[key] = len(g.models)
		g.models = append(g.models, m)
		c.size++
	}
	if entity, ok := m.(*domain.Entity); ok {
		c.indexAliases(entity)
	}
	return nil
}

func (c *Context) AddAll(models ...domain.Model) error {
	if models == nil {
		return errors.Wrap(errs.Precondition, "can't add nil model list to parser context")
	}
	for i, m := range models {
		if err := c.Add(m); err != nil {
			return errors.Wrapf(err, "model %d", i)
		}
	}
	return nil
}

// Merge folds m onto the stored model with the same identity and stores the result.
func (c *Context) Merge(m domain.Model) (domain.Model, error) {
	if isNil(m) {
		return nil, errors.Wrap(errs.Precondition, "can't merge nil model into parser context")
	}
	prev, _ := c.Get(m.Type(), m.Key())
	merged := domain.Merge(prev, m)
	if err := c.Add(merged); err != nil {
		return nil, errors.WithStack(err)
	}
	return merged, nil
}

func (c *Context) Get(t domain.Type, key any) (domain.Model, bool) {
	g, ok := c.groups[t]
	if !ok {
		return nil, false
	}
	i, ok := g.index[key]
	if !ok {
		return nil, false
	}
	return g.models[i], true
}

// GetAll returns the models of type t in insertion order.
func (c *Context) GetAll(t domain.Type) []domain.Model {
	g, ok := c.groups[t]
	if !ok {
		return nil
	}
	return slices.Clone(g.models)
}

// Remove drops every model of type t. Alias bindings of removed entities stay visible.
func (c *Context) Remove(t domain.Type) {
	if g, ok := c.groups[t]; ok {
		c.size -= len(g.models)
		delete(c.groups, t)
	}
}

func (c *Context) Clear() {
	clear(c.groups)
	clear(c.aliases)
	c.bindings = nil
	c.size = 0
}

// Types returns the non-empty types in Domain Class Order.
func (c *Context) Types() []domain.Type {
	types := make([]domain.Type, 0, len(c.groups))
	for t, g := range c.groups {
		if len(g.models) > 0 {
			types = append(types, t)
		}
	}
	domain.Order.Sort(types)
	return types
}

// ForEach calls fn once per non-empty type, in Domain Class Order, stopping at the first error.
func (c *Context) ForEach(fn func(t domain.Type, models []domain.Model) error) error {
	for _, t := range c.Types() {
		if err := fn(t, c.GetAll(t)); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// Len returns the number of stored models.
func (c *Context) Len() int {
	return c.size
}

func (c *Context) IsEmpty() bool {
	return c.size == 0
}

func (c *Context) LookupAlias(kind entityid.AliasKind, value []byte) (entityid.EntityId, bool) {
	id, ok := c.aliases[aliasKey{kind: kind, value: string(value)}]
	return id, ok
}

// Bindings returns the alias bindings created in this file, in creation order.
func (c *Context) Bindings() []AliasBinding {
	return slices.Clone(c.bindings)
}

func (c *Context) indexAliases(entity *domain.Entity) {
	if len(entity.Alias) > 0 {
		c.bind(entityid.AliasKindAlias, entity.Alias, entity.Id)
		if evm := entityid.EvmAddressFromAlias(entity.Alias); evm != nil {
			c.bind(entityid.AliasKindEvmAddress, evm, entity.Id)
		}
	}
	if len(entity.EvmAddress) > 0 {
		c.bind(entityid.AliasKindEvmAddress, entity.EvmAddress, entity.Id)
	}
}

func (c *Context) bind(kind entityid.AliasKind, value []byte, id entityid.EntityId) {
	if id.IsEmpty() {
		return
	}
	key := aliasKey{kind: kind, value: string(value)}
	if _, ok := c.aliases[key]; ok {
		return
	}
	c.aliases[key] = id
	c.bindings = append(c.bindings, AliasBinding{Kind: kind, Value: slices.Clone(value), Id: id})
}

func isNil(m domain.Model) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
