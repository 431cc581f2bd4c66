package gxthermo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func feedAll(s *FrameScanner, data string) (matches int) {
	for i := 0; i < len(data); i++ {
		if s.Feed(data[i]) {
			matches++
		}
	}
	return matches
}

func TestFrameScannerMatchesMarker(t *testing.T) {
	var s FrameScanner
	for i := 0; i < MarkerSize-1; i++ {
		assert.False(t, s.Feed(Marker[i]))
		assert.Equal(t, i+1, s.Index())
	}
	assert.True(t, s.Feed(Marker[MarkerSize-1]))
	assert.Equal(t, 0, s.Index())
}

func TestFrameScannerSkipsNoise(t *testing.T) {
	var s FrameScanner
	assert.Equal(t, 1, feedAll(&s, "\x00\xffnoise,CH,RIS"+Marker))
}

func TestFrameScannerFalseStart(t *testing.T) {
	var s FrameScanner
	assert.Equal(t, 0, feedAll(&s, "CHRX"))
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, 1, feedAll(&s, Marker))
}

func TestFrameScannerDoesNotRecoverOverlap(t *testing.T) {
	// The mismatching 'C' is not taken as the start of a new match.
	var s FrameScanner
	assert.Equal(t, 0, feedAll(&s, "CHRCHRIS,"))
	assert.Equal(t, 0, s.Index())
}

func TestFrameScannerReset(t *testing.T) {
	var s FrameScanner
	feedAll(&s, "CHRI")
	assert.Equal(t, 4, s.Index())
	s.Reset()
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, 0, feedAll(&s, "S,"))
}
