package biometric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "facegate/pkg/domain-errors"
)

func TestEncodeLandmarks_FixedLengthAndBounds(t *testing.T) {
	cases := map[string]LandmarkSet{
		"full mesh":   spreadMesh(468),
		"small mesh":  spreadMesh(12),
		"single pair": {{X: 10, Y: 20}, {X: 30, Y: 40}},
	}

	for name, set := range cases {
		t.Run(name, func(t *testing.T) {
			emb, err := EncodeLandmarks(set)
			require.NoError(t, err)
			require.Len(t, emb, EmbeddingSize)
			for i, v := range emb {
				assert.GreaterOrEqual(t, v, 0, "element %d", i)
				assert.LessOrEqual(t, v, 255, "element %d", i)
			}
		})
	}
}

func TestEncodeLandmarks_Deterministic(t *testing.T) {
	set := spreadMesh(468)

	first, err := EncodeLandmarks(set)
	require.NoError(t, err)
	second, err := EncodeLandmarks(set)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEncodeLandmarks_DegenerateFlatInput(t *testing.T) {
	set := make(LandmarkSet, 100)
	for i := range set {
		set[i] = Landmark{X: 42, Y: 42}
	}

	emb, err := EncodeLandmarks(set)
	require.NoError(t, err)
	for _, v := range emb {
		assert.Equal(t, neutralValue, v)
	}
}

func TestEncodeLandmarks_Empty(t *testing.T) {
	_, err := EncodeLandmarks(nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.Contains(t, err.Error(), "no landmarks")
}

func TestEncodeLandmarks_NormalizationSpansRange(t *testing.T) {
	set := LandmarkSet{
		{X: 0, Y: 100},
		{X: 0, Y: 0}, // skipped by the stride
		{X: 50, Y: 100},
	}

	emb, err := EncodeLandmarks(set)
	require.NoError(t, err)
	// Sampled values are 0, 100, 50, 100 -> normalized 0, 255, 127, 255.
	assert.Equal(t, 0, emb[0])
	assert.Equal(t, 255, emb[1])
	assert.Equal(t, 127, emb[2])
	assert.Equal(t, 255, emb[3])
	// Padding past the sampled values stays zero.
	assert.Equal(t, 0, emb[4])
}

// spreadMesh builds a deterministic mesh with distinct coordinates.
func spreadMesh(n int) LandmarkSet {
	set := make(LandmarkSet, n)
	for i := range set {
		set[i] = Landmark{X: float64(i * 3), Y: float64(i*7 + 1)}
	}
	return set
}
