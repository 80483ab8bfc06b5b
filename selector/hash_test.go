package selector

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioHash_Deterministic(t *testing.T) {
	codes := []string{"sec-ded-64", "sec-daec-64", "taec-64"}
	h1, err := ScenarioHash(validScenario(), codes)
	require.NoError(t, err)
	h2, err := ScenarioHash(validScenario(), codes)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestScenarioHash_IgnoresCandidateOrderAndDuplicates(t *testing.T) {
	h1, err := ScenarioHash(validScenario(), []string{"b", "a", "c"})
	require.NoError(t, err)
	h2, err := ScenarioHash(validScenario(), []string{"c", "a", "b", "a"})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestScenarioHash_SensitiveToContent(t *testing.T) {
	base, err := ScenarioHash(validScenario(), []string{"a"})
	require.NoError(t, err)

	warmer := validScenario()
	warmer.TempC = Float(76)
	hTemp, err := ScenarioHash(warmer, []string{"a"})
	require.NoError(t, err)

	capped := validScenario()
	capped.Constraints.LatencyNsMax = Float(1.2)
	hCap, err := ScenarioHash(capped, []string{"a"})
	require.NoError(t, err)

	hCodes, err := ScenarioHash(validScenario(), []string{"a", "b"})
	require.NoError(t, err)

	assert.NotEqual(t, base, hTemp)
	assert.NotEqual(t, base, hCap)
	assert.NotEqual(t, base, hCodes)
}

func TestRunID_StableVersion5(t *testing.T) {
	id := RunID("abc")
	assert.Equal(t, id, RunID("abc"))
	assert.NotEqual(t, id, RunID("abd"))

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}

func TestCanonicalCodes(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, CanonicalCodes([]string{"b", "a", "b"}))
	assert.Empty(t, CanonicalCodes(nil))
}
