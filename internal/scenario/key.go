package scenario

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefix for scenario identity hashing. The version suffix enables
// future algorithm migration without colliding with old keys.
const keyDomain = "worldsim/scenario/v1"

// Key computes a deterministic, content-addressed identity for a scenario
// under a given model version.
//
// Two scenarios with the same parameters always produce the same key,
// independent of map iteration order. The key doubles as the result-cache
// key and the persistence key, so it must be stable across processes:
//
//   - parameter names are NFC normalized
//   - entries are serialized sorted by name
//   - values use shortest round-trip float formatting (unique per float64)
//   - SHA-256 with a null-separated domain prefix
func Key(modelVersion string, s Scenario) string {
	type entry struct {
		name string
		val  float64
	}
	entries := make([]entry, 0, len(s))
	for name, val := range s {
		entries = append(entries, entry{name: norm.NFC.String(name), val: val})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	var sb strings.Builder
	sb.WriteString(norm.NFC.String(modelVersion))
	for _, e := range entries {
		sb.WriteByte('\n')
		sb.WriteString(e.name)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatFloat(e.val, 'g', -1, 64))
	}

	h := sha256.New()
	h.Write([]byte(keyDomain))
	h.Write([]byte{0x00}) // null separator prevents domain/data boundary ambiguity
	h.Write([]byte(sb.String()))
	return hex.EncodeToString(h.Sum(nil))
}
