package domain

import (
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

// Model is a typed, identity-keyed mutation of one domain entity.
type Model interface {
	Type() Type
	// Key returns the natural identity of the model. Keys are comparable and unique per Type.
	Key() any
}

// Merger is implemented by slowly-changing entities. MergeOnto folds the receiver (the later
// mutation) onto prev (an earlier mutation with the same key) and returns the merged model.
type Merger interface {
	Model
	MergeOnto(prev Model) Model
}

// Referencer is implemented by models that reference other entities.
type Referencer interface {
	ReferencedEntityIds() []entityid.EntityId
}

// Merge folds next onto prev. Models that don't implement Merger replace prev.
func Merge(prev, next Model) Model {
	if prev == nil {
		return next
	}
	if m, ok := next.(Merger); ok {
		return m.MergeOnto(prev)
	}
	return next
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

func coalesce[T any](newer, older *T) *T {
	if newer != nil {
		return newer
	}
	return older
}

func coalesceBytes(newer, older []byte) []byte {
	if newer != nil {
		return newer
	}
	return older
}

func earliest(newer, older *int64) *int64 {
	switch {
	case older == nil:
		return newer
	case newer == nil:
		return older
	case *newer < *older:
		return newer
	default:
		return older
	}
}

func nonEmpty(ids ...entityid.EntityId) []entityid.EntityId {
	out := make([]entityid.EntityId, 0, len(ids))
	for _, id := range ids {
		if !id.IsEmpty() {
			out = append(out, id)
		}
	}
	return out
}

func derefIds(ids ...*entityid.EntityId) []entityid.EntityId {
	out := make([]entityid.EntityId, 0, len(ids))
	for _, id := range ids {
		if id != nil && !id.IsEmpty() {
			out = append(out, *id)
		}
	}
	return out
}
