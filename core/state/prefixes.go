package state

import (
	"encoding/binary"
)

// Key layout for the settlement core: four maps keyed by escrow id plus
// four process-wide scalars. Prefixes keep the id spaces disjoint inside a
// single key-value database.
var (
	escrowPrefix  = []byte("escrow/record/")
	sharesPrefix  = []byte("escrow/shares/")
	disputePrefix = []byte("escrow/dispute/")
	auditPrefix   = []byte("escrow/audit/")

	ownerKey   = []byte("escrow/meta/owner")
	pausedKey  = []byte("escrow/meta/paused")
	oracleKey  = []byte("escrow/meta/oracle")
	counterKey = []byte("escrow/meta/counter")
)

func keyFor(prefix []byte, id uint64) []byte {
	key := make([]byte, 0, len(prefix)+8)
	key = append(key, prefix...)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return append(key, buf[:]...)
}
