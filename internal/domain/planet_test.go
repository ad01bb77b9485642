package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanetLabel(t *testing.T) {
	p := PlanetRecord{Name: "51 Peg b", HostName: "51 Peg"}
	assert.Equal(t, "51 Peg b (51 Peg)", p.Label())
}

func TestSnapshotFind(t *testing.T) {
	s := &Snapshot{Records: samplePlanets()}

	got, ok := s.Find("c")
	require.True(t, ok)
	assert.Equal(t, "Alpha", got.HostName)

	_, ok = s.Find("zzz")
	assert.False(t, ok)
}

func TestSnapshotNil(t *testing.T) {
	var s *Snapshot
	assert.Equal(t, 0, s.Len())
	_, ok := s.Find("b")
	assert.False(t, ok)
}

func TestValidateLimit(t *testing.T) {
	tests := []struct {
		limit   int
		wantErr bool
	}{
		{0, true},
		{MinLimit, false},
		{DefaultLimit, false},
		{MaxLimit, false},
		{MaxLimit + 1, true},
		{-5, true},
	}
	for _, tt := range tests {
		err := ValidateLimit(tt.limit)
		if !tt.wantErr {
			assert.NoError(t, err, "limit %d", tt.limit)
			continue
		}
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "limit %d", tt.limit)
	}
}

func TestParseEccentricityMode(t *testing.T) {
	m, err := ParseEccentricityMode("")
	require.NoError(t, err)
	assert.Equal(t, EccentricityOverride, m)

	m, err = ParseEccentricityMode("catalog")
	require.NoError(t, err)
	assert.Equal(t, EccentricityCatalog, m)

	_, err = ParseEccentricityMode("circular")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpstreamErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &UpstreamError{Message: "fetch failed", Err: cause}
	assert.ErrorIs(t, err, cause)

	up := ErrUpstream(500, "archive returned %d", 500)
	assert.Equal(t, 500, up.StatusCode)
	assert.Equal(t, "archive returned 500", up.Error())
}
