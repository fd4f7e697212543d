// Package identity derives stable, collision-resistant identifiers for pools
// and their share assets from the traded asset pair.
package identity

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	poolSeed  = []byte("pool")
	shareSeed = []byte("share")
)

// PoolID returns the pool identifier for an unordered asset pair.
// PoolID(a, b) == PoolID(b, a).
func PoolID(assetA, assetB string) string {
	lo, hi := assetA, assetB
	if hi < lo {
		lo, hi = hi, lo
	}
	return crypto.Keccak256Hash(poolSeed, lengthPrefixed(lo), lengthPrefixed(hi)).Hex()
}

// ShareAsset returns the identifier of the share asset minted by a pool.
func ShareAsset(poolID string) string {
	return crypto.Keccak256Hash(shareSeed, []byte(poolID)).Hex()
}

// Validate checks that id has the form produced by PoolID.
func Validate(id string) error {
	id = strings.TrimSpace(id)
	data, err := hexutil.Decode(id)
	if err != nil {
		return fmt.Errorf("invalid pool id: %s", id)
	}
	if len(data) != 32 {
		return fmt.Errorf("invalid pool id length: %s", id)
	}
	return nil
}

// lengthPrefixed keeps ("ab","c") and ("a","bc") from hashing the same.
func lengthPrefixed(s string) []byte {
	out := make([]byte, 0, len(s)+4)
	n := uint32(len(s))
	out = append(out, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	return append(out, s...)
}
