package entityid

import "sync"

type AliasKind uint8

const (
	AliasKindAlias AliasKind = iota + 1
	AliasKindEvmAddress
)

func (k AliasKind) String() string {
	switch k {
	case AliasKindAlias:
		return "alias"
	case AliasKindEvmAddress:
		return "evm_address"
	default:
		return "unknown"
	}
}

type aliasKey struct {
	kind  AliasKind
	value string
}

// AliasTable holds committed alias bindings. It is shared by every record file and bindings are never overwritten.
type AliasTable struct {
	mu       sync.RWMutex
	bindings map[aliasKey]EntityId
}

func NewAliasTable() *AliasTable {
	return &AliasTable{
		bindings: make(map[aliasKey]EntityId),
	}
}

func (t *AliasTable) Load(kind AliasKind, value []byte) (EntityId, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.bindings[aliasKey{kind, string(value)}]
	return id, ok
}

// PutIfAbsent stores the binding unless one exists. It returns the binding in effect and whether it was already present.
func (t *AliasTable) PutIfAbsent(kind AliasKind, value []byte, id EntityId) (actual EntityId, loaded bool) {
	key := aliasKey{kind, string(value)}

	t.mu.RLock()
	actual, loaded = t.bindings[key]
	t.mu.RUnlock()
	if loaded {
		return actual, true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if actual, loaded = t.bindings[key]; loaded {
		return actual, true
	}
	t.bindings[key] = id
	return id, false
}

func (t *AliasTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.bindings)
}
