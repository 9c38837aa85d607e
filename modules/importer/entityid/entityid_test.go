package entityid

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityIdEncoding(t *testing.T) {
	testCases := []struct {
		shard, realm, num int64
		expected          int64
		str               string
	}{
		{0, 0, 0, 0, "0.0.0"},
		{0, 0, 98, 98, "0.0.98"},
		{0, 1, 2, 1<<38 | 2, "0.1.2"},
		{1, 2, 3, 1<<54 | 2<<38 | 3, "1.2.3"},
		{1023, 65535, 1<<38 - 1, -1, "1023.65535.274877906943"},
	}
	for _, tc := range testCases {
		t.Run(tc.str, func(t *testing.T) {
			id, err := New(tc.shard, tc.realm, tc.num)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id.Int64())
			assert.Equal(t, tc.str, id.String())

			shard, realm, num := id.Decode()
			assert.Equal(t, []int64{tc.shard, tc.realm, tc.num}, []int64{shard, realm, num})

			parsed, err := Parse(tc.str)
			require.NoError(t, err)
			assert.Equal(t, id, parsed)
		})
	}

	t.Run("OutOfRange", func(t *testing.T) {
		for _, args := range [][3]int64{{1024, 0, 0}, {0, 65536, 0}, {0, 0, 1 << 38}, {-1, 0, 0}} {
			_, err := New(args[0], args[1], args[2])
			assert.True(t, errors.Is(err, errs.InvalidArgument), "%v", args)
		}
		_, err := FromRef(types.EntityRef{Num: -5})
		assert.True(t, errors.Is(err, errs.DataIntegrity))
	})
	t.Run("ParseInvalid", func(t *testing.T) {
		for _, s := range []string{"", "a.b.c", "1.2", "-4"} {
			_, err := Parse(s)
			assert.Error(t, err, s)
		}
	})
}

func TestLongZeroAddress(t *testing.T) {
	id := MustNew(0, 0, 1001)
	addr := id.ToEvmAddress()
	require.Len(t, addr, EvmAddressLength)
	assert.Equal(t, byte(0x03), addr[18])
	assert.Equal(t, byte(0xe9), addr[19])

	shard, realm, num, ok := DecodeLongZero(addr)
	require.True(t, ok)
	assert.Equal(t, id, MustNew(shard, realm, num))

	// realm doesn't fit 16 bits
	addr[4] = 0xff
	_, _, _, ok = DecodeLongZero(addr)
	assert.False(t, ok)

	_, _, _, ok = DecodeLongZero([]byte{1, 2, 3})
	assert.False(t, ok)
}

func TestEvmAddressFromAlias(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	compressed := crypto.CompressPubkey(&key.PublicKey)
	expected := crypto.PubkeyToAddress(key.PublicKey).Bytes()

	t.Run("SerializedECDSAKey", func(t *testing.T) {
		alias := append([]byte{ecdsaKeyAliasPrefix, compressedPubKeyLength}, compressed...)
		assert.Equal(t, expected, EvmAddressFromAlias(alias))
	})
	t.Run("RawCompressedKey", func(t *testing.T) {
		assert.Equal(t, expected, EvmAddressFromAlias(compressed))
	})
	t.Run("EvmAddress", func(t *testing.T) {
		assert.Equal(t, expected, EvmAddressFromAlias(expected))
	})
	t.Run("ED25519Key", func(t *testing.T) {
		alias := append([]byte{ed25519KeyAliasPrefix, 32}, make([]byte, 32)...)
		assert.True(t, IsED25519KeyAlias(alias))
		assert.Nil(t, EvmAddressFromAlias(alias))
	})
}

func TestAliasTable(t *testing.T) {
	table := NewAliasTable()
	alias := []byte("alias-1")

	actual, loaded := table.PutIfAbsent(AliasKindAlias, alias, MustNew(0, 0, 10))
	assert.False(t, loaded)
	assert.Equal(t, MustNew(0, 0, 10), actual)

	// never overwritten
	actual, loaded = table.PutIfAbsent(AliasKindAlias, alias, MustNew(0, 0, 11))
	assert.True(t, loaded)
	assert.Equal(t, MustNew(0, 0, 10), actual)

	// kinds don't collide
	_, ok := table.Load(AliasKindEvmAddress, alias)
	assert.False(t, ok)
	assert.Equal(t, 1, table.Len())
}
