package domain

import (
	"slices"
	"sort"

	"github.com/cockroachdb/errors"
)

// dependencies declares, per type, the types it has a foreign key into.
// Declaration order of the Type constants breaks ties between independent types.
var dependencies = map[Type][]Type{
	TypeEntity:                nil,
	TypeContract:              {TypeEntity},
	TypeSchedule:              {TypeEntity},
	TypeToken:                 {TypeEntity},
	TypeTokenAccount:          {TypeEntity, TypeToken},
	TypeNft:                   {TypeEntity, TypeToken},
	TypeCryptoAllowance:       {TypeEntity},
	TypeTokenAllowance:        {TypeEntity, TypeToken},
	TypeNftAllowance:          {TypeEntity, TypeToken},
	TypeTransaction:           {TypeEntity},
	TypeTransactionSignature:  {TypeTransaction, TypeEntity},
	TypeCryptoTransfer:        {TypeTransaction, TypeEntity},
	TypeNonFeeTransfer:        {TypeTransaction, TypeEntity},
	TypeStakingRewardTransfer: {TypeTransaction, TypeEntity},
	TypeTokenTransfer:         {TypeTransaction, TypeTokenAccount},
	TypeNftTransfer:           {TypeTransaction, TypeNft},
	TypeAssessedCustomFee:     {TypeTransaction, TypeToken},
	TypeContractResult:        {TypeTransaction, TypeContract},
	TypeContractLog:           {TypeContractResult},
	TypeContractStateChange:   {TypeContractResult},
	TypeEthereumTransaction:   {TypeTransaction},
	TypeFileData:              {TypeTransaction, TypeEntity},
	TypeTopicMessage:          {TypeTransaction, TypeEntity},
	TypePrng:                  {TypeTransaction},
	TypeNodeStake:             {TypeTransaction},
	TypeEntityTransaction:     {TypeTransaction, TypeEntity},
	TypeRecordFile:            nil, // depends on every other type, see buildOrder
}

// DomainOrder is the flush order over domain types: if A has a foreign key into B, B comes first.
type DomainOrder struct {
	rank   map[Type]int
	sorted []Type
	levels [][]Type
}

// Order is the Domain Class Order, linearised once at init.
var Order = mustBuildOrder(dependencies)

func mustBuildOrder(deps map[Type][]Type) *DomainOrder {
	order, err := buildOrder(deps)
	if err != nil {
		panic(err)
	}
	return order
}

// buildOrder runs Kahn's algorithm, always picking the ready type with the lowest declared value.
func buildOrder(deps map[Type][]Type) (*DomainOrder, error) {
	deps = withRecordFileLast(deps)

	indegree := make(map[Type]int, len(deps))
	dependents := make(map[Type][]Type, len(deps))
	for t, ds := range deps {
		if _, ok := indegree[t]; !ok {
			indegree[t] = 0
		}
		for _, d := range ds {
			if _, ok := deps[d]; !ok {
				return nil, errors.Newf("domain order: %s depends on undeclared type %s", t, d)
			}
			indegree[t]++
			dependents[d] = append(dependents[d], t)
		}
	}

	level := make(map[Type]int, len(deps))
	ready := make([]Type, 0, len(deps))
	for t, n := range indegree {
		if n == 0 {
			ready = append(ready, t)
		}
	}

	sorted := make([]Type, 0, len(deps))
	for len(ready) > 0 {
		slices.Sort(ready)
		t := ready[0]
		ready = ready[1:]
		sorted = append(sorted, t)

		for _, dependent := range dependents[t] {
			level[dependent] = max(level[dependent], level[t]+1)
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}
	if len(sorted) != len(deps) {
		return nil, errors.Newf("domain order: dependency cycle among %d types", len(deps)-len(sorted))
	}

	rank := make(map[Type]int, len(sorted))
	levels := make([][]Type, 0)
	for i, t := range sorted {
		rank[t] = i
		l := level[t]
		for len(levels) <= l {
			levels = append(levels, nil)
		}
		levels[l] = append(levels[l], t)
	}
	for _, group := range levels {
		sort.Slice(group, func(i, j int) bool { return rank[group[i]] < rank[group[j]] })
	}

	return &DomainOrder{
		rank:   rank,
		sorted: sorted,
		levels: levels,
	}, nil
}

func withRecordFileLast(deps map[Type][]Type) map[Type][]Type {
	if _, ok := deps[TypeRecordFile]; !ok {
		return deps
	}
	out := make(map[Type][]Type, len(deps))
	all := make([]Type, 0, len(deps))
	for t, ds := range deps {
		out[t] = ds
		if t != TypeRecordFile {
			all = append(all, t)
		}
	}
	slices.Sort(all)
	out[TypeRecordFile] = all
	return out
}

// Compare orders a before b when a must be flushed first. Unknown types sort after every known
// type, by numeric value.
func (o *DomainOrder) Compare(a, b Type) int {
	ra, okA := o.rank[a]
	rb, okB := o.rank[b]
	switch {
	case okA && okB:
		return ra - rb
	case okA:
		return -1
	case okB:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (o *DomainOrder) Less(a, b Type) bool {
	return o.Compare(a, b) < 0
}

// Sort sorts types in place in flush order.
func (o *DomainOrder) Sort(types []Type) {
	slices.SortStableFunc(types, o.Compare)
}

// Types returns every known type in flush order.
func (o *DomainOrder) Types() []Type {
	return slices.Clone(o.sorted)
}

// Levels groups types by dependency depth. Types in the same level don't depend on each other.
func (o *DomainOrder) Levels() [][]Type {
	out := make([][]Type, len(o.levels))
	for i, l := range o.levels {
		out[i] = slices.Clone(l)
	}
	return out
}

// LevelsOf groups the given types by dependency depth, dropping empty levels.
// Unknown types form trailing single-type levels.
func (o *DomainOrder) LevelsOf(types []Type) [][]Type {
	present := make(map[Type]struct{}, len(types))
	for _, t := range types {
		present[t] = struct{}{}
	}
	out := make([][]Type, 0, len(o.levels))
	for _, level := range o.levels {
		group := make([]Type, 0, len(level))
		for _, t := range level {
			if _, ok := present[t]; ok {
				group = append(group, t)
				delete(present, t)
			}
		}
		if len(group) > 0 {
			out = append(out, group)
		}
	}
	unknown := make([]Type, 0, len(present))
	for t := range present {
		unknown = append(unknown, t)
	}
	slices.Sort(unknown)
	for _, t := range unknown {
		out = append(out, []Type{t})
	}
	return out
}
