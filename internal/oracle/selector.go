package oracle

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/x402resolve/oracle/internal/model"
)

// Select deterministically picks count distinct oracles from the registry's
// currently active set, given a 32-byte seed. At each step it hashes
// seed || nonce (big-endian uint32, starting at 0) with SHA-256, takes the
// first four bytes as a big-endian index modulo the active-set size, and
// appends the oracle at that index if not already picked, incrementing
// nonce regardless of hit or miss. The active set is sorted by hex key
// first so that the same registered set always yields the same ordering,
// independent of map iteration order.
func (r *Registry) Select(seed [32]byte, count int) ([]string, error) {
	active := r.ActiveKeys()
	sort.Strings(active)

	if count > len(active) {
		return nil, fmt.Errorf("%w: requested %d, have %d active", model.ErrInsufficientOracles, count, len(active))
	}
	if count == 0 {
		return nil, nil
	}

	picked := make([]string, 0, count)
	seen := make(map[int]bool, count)

	var nonce uint32
	for len(picked) < count {
		h := sha256.New()
		h.Write(seed[:])
		var nonceBytes [4]byte
		binary.BigEndian.PutUint32(nonceBytes[:], nonce)
		h.Write(nonceBytes[:])
		digest := h.Sum(nil)

		idx := int(binary.BigEndian.Uint32(digest[:4])) % len(active)
		nonce++

		if seen[idx] {
			continue
		}
		seen[idx] = true
		picked = append(picked, active[idx])
	}

	return picked, nil
}

// BackupSeed derives a selection seed for a single backup oracle by
// appending a "backup" marker to the original seed, per the fallback
// policy's timeout-with-backup-available strategy.
func BackupSeed(seed [32]byte) [32]byte {
	h := sha256.Sum256(append(append([]byte(nil), seed[:]...), []byte("backup")...))
	return h
}
