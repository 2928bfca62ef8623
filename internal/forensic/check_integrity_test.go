package forensic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/asset"
	"veridoc/pkg/testutil"
)

func TestIntegrityFingerprintsPayload(t *testing.T) {
	raw := []byte("%PDF-1.4 certificate body")
	doc, err := asset.Load(raw, "application/pdf")
	require.NoError(t, err)

	res := IntegrityCheck{}.Run(context.Background(), doc)
	assert.Equal(t, 100.0, res.Score)
	assert.False(t, res.Suspicious)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Zero(t, IntegrityCheck{}.Penalty(res))

	want := sha256.Sum256(raw)
	assert.Equal(t, hex.EncodeToString(want[:]), res.Detail["sha256"])
	assert.Equal(t, len(raw), res.Detail["bytes"])

	blake, ok := res.Detail["blake2b_256"].(string)
	require.True(t, ok)
	assert.Len(t, blake, 64)
	assert.NotEqual(t, res.Detail["sha256"], blake)
}

func TestIntegrityIsDeterministic(t *testing.T) {
	raw := []byte("same bytes, same digests")
	docA, err := asset.Load(raw, "application/pdf")
	require.NoError(t, err)
	docB, err := asset.Load(append([]byte(nil), raw...), "application/pdf")
	require.NoError(t, err)

	resA := IntegrityCheck{}.Run(context.Background(), docA)
	resB := IntegrityCheck{}.Run(context.Background(), docB)
	assert.Equal(t, resA.Detail["sha256"], resB.Detail["sha256"])
	assert.Equal(t, resA.Detail["blake2b_256"], resB.Detail["blake2b_256"])
}

func TestIntegrityWithoutBytesIsNeutral(t *testing.T) {
	doc := asset.FromImage(testutil.FlatGray(8, 8, 0))

	res := IntegrityCheck{}.Run(context.Background(), doc)
	assert.Zero(t, res.Confidence)
}
