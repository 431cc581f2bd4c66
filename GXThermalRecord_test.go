package gxthermo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameBytes(kind RecordKind, id uint32, value float32) []byte {
	return NewThermalRecord(kind, id, value).AppendFrame(nil)
}

func TestAppendFrameLayout(t *testing.T) {
	b := frameBytes(RecordKindTemperature, 1, 25.5)
	require.Len(t, b, FrameSize)
	assert.Equal(t, "CHRIS,T,", string(b[:8]))
	assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00}, b[8:12])
	assert.Equal(t, math.Float32bits(25.5), linkOrder.Uint32(b[12:16]))
}

func TestDecodePayload(t *testing.T) {
	var p [PayloadSize]byte
	copy(p[:], frameBytes(RecordKindHumidity, 42, 47.25)[MarkerSize:])
	r := DecodePayload(p)
	assert.Equal(t, RecordKindHumidity, r.Kind())
	assert.Equal(t, uint32(42), r.SourceID())
	assert.Equal(t, float32(47.25), r.Value())
}

func TestDecodePayloadKeepsUnknownKind(t *testing.T) {
	var p [PayloadSize]byte
	copy(p[:], frameBytes(RecordKind('X'), 7, 1)[MarkerSize:])
	r := DecodePayload(p)
	assert.Equal(t, RecordKind('X'), r.Kind())
	assert.False(t, r.Kind().Known())
	assert.Equal(t, "Unknown(0x58)", r.Kind().String())
}

func TestRecordRoundTrip(t *testing.T) {
	values := []float32{0, -40.125, 25.5, 100, math.MaxFloat32, math.SmallestNonzeroFloat32, float32(math.Inf(-1))}
	for _, kind := range []RecordKind{RecordKindTemperature, RecordKindHumidity} {
		for i, v := range values {
			in := NewThermalRecord(kind, uint32(i)*0x01010101, v)
			b, err := in.MarshalBinary()
			require.NoError(t, err)
			var out ThermalRecord
			require.NoError(t, out.UnmarshalBinary(b))
			assert.Equal(t, in.Kind(), out.Kind())
			assert.Equal(t, in.SourceID(), out.SourceID())
			assert.Equal(t, math.Float32bits(in.Value()), math.Float32bits(out.Value()))
		}
	}
}

func TestRecordRoundTripNaNBits(t *testing.T) {
	nan := math.Float32frombits(0x7fc00001)
	out, err := DecodeFrame(frameBytes(RecordKindTemperature, 3, nan))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x7fc00001), math.Float32bits(out.Value()))
}

func TestDecodeFrameRejectsMalformedFrames(t *testing.T) {
	good := frameBytes(RecordKindTemperature, 1, 25.5)

	_, err := DecodeFrame(good[:FrameSize-1])
	assert.Error(t, err)

	badMarker := append([]byte(nil), good...)
	badMarker[0] = 'X'
	_, err = DecodeFrame(badMarker)
	assert.ErrorIs(t, err, errInvalidMarker)

	badSeparator := append([]byte(nil), good...)
	badSeparator[MarkerSize+separatorOffset] = 'X'
	_, err = DecodeFrame(badSeparator)
	assert.ErrorIs(t, err, errInvalidSeparator)
}

func TestRecordString(t *testing.T) {
	assert.Equal(t, "Type: T, Source: 0x00000001, Value: 25.50 °C", NewThermalRecord(RecordKindTemperature, 1, 25.5).String())
	assert.Equal(t, "Type: H, Source: 0x0000002a, Value: 47.25 %", NewThermalRecord(RecordKindHumidity, 42, 47.25).String())
}
