package forensic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/asset"
	"veridoc/pkg/testutil"
)

func TestELAFlatPageIsPristine(t *testing.T) {
	doc := asset.FromImage(testutil.FlatGray(128, 128, 230))

	res := ELACheck{}.Run(context.Background(), doc)
	assert.False(t, res.Suspicious)
	assert.Greater(t, res.Score, 90.0)
	assert.Zero(t, ELACheck{}.Penalty(res))
}

func TestELASmoothGradientStaysBelowThreshold(t *testing.T) {
	doc := asset.FromImage(testutil.GradientGray(128, 128))

	res := ELACheck{}.Run(context.Background(), doc)
	assert.False(t, res.Suspicious)
	assert.Greater(t, res.Score, 50.0)
}

func TestELANoiseTripsThreshold(t *testing.T) {
	// Full-range pixel noise cannot survive a quality-90 round trip; the
	// reconstruction error lands far above the suspicion level.
	doc := asset.FromImage(testutil.NoiseGray(128, 128, 42))

	res := ELACheck{}.Run(context.Background(), doc)
	require.True(t, res.Suspicious)
	assert.Greater(t, res.Confidence, 0.5)
	assert.Equal(t, 5.0, ELACheck{}.Penalty(res))
}

func TestELANoPagesIsNeutral(t *testing.T) {
	doc, err := asset.Load([]byte("definitely not pixels"), "image/jpeg")
	require.NoError(t, err)

	res := ELACheck{}.Run(context.Background(), doc)
	assert.Zero(t, res.Confidence)
	assert.False(t, res.Suspicious)
	assert.Zero(t, ELACheck{}.Penalty(res))
}
