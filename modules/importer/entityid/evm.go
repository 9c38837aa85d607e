package entityid

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	compressedPubKeyLength = 33

	// serialized key prefixes of an alias: field tag + length
	ecdsaKeyAliasPrefix   = 0x3a
	ed25519KeyAliasPrefix = 0x12
)

// DecodeLongZero decodes a long-zero EVM address into its shard, realm and num.
// ok is false when the address can't be a long-zero address.
func DecodeLongZero(addr []byte) (shard, realm, num int64, ok bool) {
	if len(addr) != EvmAddressLength {
		return 0, 0, 0, false
	}
	s := binary.BigEndian.Uint32(addr[0:4])
	r := binary.BigEndian.Uint64(addr[4:12])
	n := binary.BigEndian.Uint64(addr[12:20])
	if int64(s) > shardMask || r > uint64(realmMask) || n > uint64(numMask) {
		return 0, 0, 0, false
	}
	return int64(s), int64(r), int64(n), true
}

// IsEvmAddress reports whether b has the length of an EVM address.
func IsEvmAddress(b []byte) bool {
	return len(b) == EvmAddressLength
}

// EvmAddressFromAlias derives the EVM address an alias stands for.
// A 20 bytes alias is the address itself, an ECDSA secp256k1 key alias is hashed into its address.
// ED25519 key aliases have no EVM address and return nil.
func EvmAddressFromAlias(alias []byte) []byte {
	switch {
	case IsEvmAddress(alias):
		return common.CopyBytes(alias)
	case len(alias) == compressedPubKeyLength+2 && alias[0] == ecdsaKeyAliasPrefix && alias[1] == compressedPubKeyLength:
		return evmAddressFromCompressedKey(alias[2:])
	case len(alias) == compressedPubKeyLength && (alias[0] == 0x02 || alias[0] == 0x03):
		return evmAddressFromCompressedKey(alias)
	default:
		return nil
	}
}

// IsED25519KeyAlias reports whether alias is a serialized ED25519 public key.
func IsED25519KeyAlias(alias []byte) bool {
	return len(alias) == 34 && alias[0] == ed25519KeyAliasPrefix && alias[1] == 32
}

func evmAddressFromCompressedKey(key []byte) []byte {
	pub, err := crypto.DecompressPubkey(key)
	if err != nil {
		return nil
	}
	return crypto.PubkeyToAddress(*pub).Bytes()
}
