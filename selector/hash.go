package selector

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// runNamespace scopes RunID UUIDs to this tool.
var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:eccsel:run"))

// CanonicalCodes returns the sorted, de-duplicated candidate set.
func CanonicalCodes(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ScenarioHash returns a hex SHA-256 fingerprint of the scenario and the
// candidate set. Fields are serialized as JSON with sorted keys and the
// candidate set is canonicalised, so the hash depends only on content.
func ScenarioHash(sc Scenario, codes []string) (string, error) {
	raw, err := json.Marshal(sc)
	if err != nil {
		return "", fmt.Errorf("encoding scenario: %w", err)
	}
	// Round-trip through a map so keys are emitted in sorted order.
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", fmt.Errorf("canonicalising scenario: %w", err)
	}
	fields["candidates"] = CanonicalCodes(codes)
	canonical, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encoding canonical scenario: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// RunID returns a name-based UUID for a scenario hash. Identical content
// always yields the same RunID.
func RunID(scenarioHash string) string {
	return uuid.NewSHA1(runNamespace, []byte(scenarioHash)).String()
}
