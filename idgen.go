package domsnap

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"

	"github.com/domsnap/domsnap/host"
)

// StableIDAttr is the attribute the engine persists ids under (spec.md §6.4).
const StableIDAttr = "data-aipex-nodeid"

const base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"

// newStableID generates a dom_<base36 time tail><base36 random> id. The
// value only needs to be opaque and unique enough in practice; the
// timestamp tail keeps ids roughly sortable by collection time the way the
// teacher's atomic ref counter keeps refs ordered within one snapshot.
func newStableID(nowMillis int64) string {
	timePart := strconv.FormatInt(nowMillis, 36)
	return "dom_" + timePart + randomBase36(6)
}

func randomBase36(n int) string {
	var b strings.Builder
	max := big.NewInt(int64(len(base36Digits)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing is effectively unrecoverable on the host;
			// fall back to a fixed but still-opaque character rather than
			// panicking, keeping Collect a total function.
			b.WriteByte('0')
			continue
		}
		b.WriteByte(base36Digits[idx.Int64()])
	}
	return b.String()
}

// assignElementID reads the element's persisted id, reusing it verbatim if
// present (including pre-existing opaque values test fixtures deposit, per
// spec.md §6.4), or generates and writes a fresh one.
func assignElementID(el host.Element, nowMillis int64) string {
	if existing, ok := el.Attr(StableIDAttr); ok && existing != "" {
		return existing
	}
	id := newStableID(nowMillis)
	el.SetAttr(StableIDAttr, id)
	return id
}

func textNodeID(parentID string, childIndex int) string {
	return parentID + "::text-" + strconv.Itoa(childIndex)
}
