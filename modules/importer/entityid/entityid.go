package entityid

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
)

const (
	shardBits = 10
	realmBits = 16
	numBits   = 38

	shardMask = int64(1)<<shardBits - 1
	realmMask = int64(1)<<realmBits - 1
	numMask   = int64(1)<<numBits - 1

	// EvmAddressLength is the length of an EVM address in bytes.
	EvmAddressLength = 20
)

// EntityId is the canonical integer id of a ledger entity, encoded as shard(10) | realm(16) | num(38).
type EntityId int64

// EmptyId is the absent reference (0.0.0).
const EmptyId EntityId = 0

// New encodes shard.realm.num. It fails when a component doesn't fit its bit range.
func New(shard, realm, num int64) (EntityId, error) {
	if shard < 0 || shard > shardMask {
		return EmptyId, errors.Wrapf(errs.InvalidArgument, "shard %d out of range", shard)
	}
	if realm < 0 || realm > realmMask {
		return EmptyId, errors.Wrapf(errs.InvalidArgument, "realm %d out of range", realm)
	}
	if num < 0 || num > numMask {
		return EmptyId, errors.Wrapf(errs.InvalidArgument, "num %d out of range", num)
	}
	return EntityId(shard<<(realmBits+numBits) | realm<<numBits | num), nil
}

// MustNew is like New but panics on invalid input.
func MustNew(shard, realm, num int64) EntityId {
	id, err := New(shard, realm, num)
	if err != nil {
		panic(err)
	}
	return id
}

// FromRef encodes a numeric reference. Invalid components are a data integrity fault.
func FromRef(ref types.EntityRef) (EntityId, error) {
	id, err := New(ref.Shard, ref.Realm, ref.Num)
	if err != nil {
		return EmptyId, errors.Mark(errors.Wrapf(err, "invalid entity %s", ref), errs.DataIntegrity)
	}
	return id, nil
}

// Parse parses "shard.realm.num" or a bare encoded id.
func Parse(s string) (EntityId, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || v < 0 {
			return EmptyId, errors.Wrapf(errs.InvalidArgument, "invalid entity id %q", s)
		}
		return EntityId(v), nil
	case 3:
		values := make([]int64, 3)
		for i, p := range parts {
			v, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return EmptyId, errors.Wrapf(errs.InvalidArgument, "invalid entity id %q", s)
			}
			values[i] = v
		}
		return New(values[0], values[1], values[2])
	default:
		return EmptyId, errors.Wrapf(errs.InvalidArgument, "invalid entity id %q", s)
	}
}

func (id EntityId) Decode() (shard, realm, num int64) {
	v := int64(id)
	return v >> (realmBits + numBits) & shardMask, v >> numBits & realmMask, v & numMask
}

func (id EntityId) Shard() int64 {
	shard, _, _ := id.Decode()
	return shard
}

func (id EntityId) Realm() int64 {
	_, realm, _ := id.Decode()
	return realm
}

func (id EntityId) Num() int64 {
	_, _, num := id.Decode()
	return num
}

func (id EntityId) Ref() types.EntityRef {
	shard, realm, num := id.Decode()
	return types.EntityRef{Shard: shard, Realm: realm, Num: num}
}

func (id EntityId) IsEmpty() bool {
	return id == EmptyId
}

func (id EntityId) Int64() int64 {
	return int64(id)
}

func (id EntityId) String() string {
	shard, realm, num := id.Decode()
	return fmt.Sprintf("%d.%d.%d", shard, realm, num)
}

// ToEvmAddress returns the long-zero EVM address: shard(4 bytes) | realm(8 bytes) | num(8 bytes).
func (id EntityId) ToEvmAddress() []byte {
	shard, realm, num := id.Decode()
	addr := make([]byte, EvmAddressLength)
	binary.BigEndian.PutUint32(addr[0:4], uint32(shard))
	binary.BigEndian.PutUint64(addr[4:12], uint64(realm))
	binary.BigEndian.PutUint64(addr[12:20], uint64(num))
	return addr
}
