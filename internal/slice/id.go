package slice

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ComputeID creates a deterministic slice identifier from the fields that
// survive re-slicing of unchanged text: file path, kind, qualified name and
// start line. Slice ordering does not participate, so re-analysis of an
// unchanged file reproduces identical ids.
//
// Format: dg:<kind>:<blake2b-256 hex>
func ComputeID(path string, kind Kind, qualifiedName string, startLine int) string {
	// Canonical labeled parts, sorted, so field order can never leak
	// into the hash
	parts := []string{
		"path:" + path,
		"kind:" + string(kind),
		"name:" + qualifiedName,
		fmt.Sprintf("line:%d", startLine),
	}
	sort.Strings(parts)

	sum := blake2b.Sum256([]byte(strings.Join(parts, "|")))
	return "dg:" + string(kind) + ":" + hex.EncodeToString(sum[:])
}
