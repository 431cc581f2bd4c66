package gxthermo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWaitTime = 10 * time.Millisecond

// faultySource fails Read after failAfter bytes, or Poll with pollErr.
type faultySource struct {
	*GXBufferSource
	failAfter int
	read      int
	readErr   error
	pollState Readiness
	pollErr   error
}

func (f *faultySource) Poll(timeout time.Duration) (Readiness, error) {
	if f.pollErr != nil || f.pollState != ReadinessTimeout {
		return f.pollState, f.pollErr
	}
	return f.GXBufferSource.Poll(timeout)
}

func (f *faultySource) Read(p []byte) (int, error) {
	if f.readErr != nil {
		left := f.failAfter - f.read
		if left <= 0 {
			return 0, f.readErr
		}
		if len(p) > left {
			p = p[:left]
		}
	}
	n, err := f.GXBufferSource.Read(p)
	f.read += n
	return n, err
}

func newTestSession(data ...[]byte) (*PortSession, *GXBufferSource) {
	src := NewGXBufferSource()
	for _, d := range data {
		src.Append(d)
	}
	return NewPortSession(src, testWaitTime), src
}

// readAll reads records until the source hangs up.
func readAll(t *testing.T, s *PortSession) ([]ThermalRecord, []error) {
	t.Helper()
	var records []ThermalRecord
	var retryable []error
	for {
		rec, err := s.ReadNext(context.Background())
		switch {
		case err == nil:
			records = append(records, rec)
		case IsRetryable(err):
			retryable = append(retryable, err)
		default:
			require.ErrorIs(t, err, ErrHangUp)
			return records, retryable
		}
	}
}

func TestReadNextTemperatureFrame(t *testing.T) {
	s, _ := newTestSession(frameBytes(RecordKindTemperature, 1, 25.5))
	rec, err := s.ReadNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NewThermalRecord(RecordKindTemperature, 1, 25.5), rec)
	assert.Equal(t, SyncStateSynced, s.State())
}

func TestReadNextHumidityFrame(t *testing.T) {
	s, _ := newTestSession(frameBytes(RecordKindHumidity, 0x2A, 47.25))
	rec, err := s.ReadNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NewThermalRecord(RecordKindHumidity, 42, 47.25), rec)
}

func TestReadNextWrongSeparator(t *testing.T) {
	bad := []byte("CHRIS,TX\x01\x02\x03\x04\x05\x06\x07\x08")
	s, _ := newTestSession(bad, frameBytes(RecordKindTemperature, 9, -1.5))
	_, err := s.ReadNext(context.Background())
	require.ErrorIs(t, err, ErrNoFrame)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, SyncStateUnsynced, s.State())

	rec, err := s.ReadNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NewThermalRecord(RecordKindTemperature, 9, -1.5), rec)
}

func TestReadNextIncompletePayload(t *testing.T) {
	s, src := newTestSession([]byte("CHRIS,T,\x01"))
	_, err := s.ReadNext(context.Background())
	require.ErrorIs(t, err, ErrNoFrame)
	assert.Equal(t, 0, src.Len())
	assert.Equal(t, SyncStateUnsynced, s.State())
}

func TestReadNextChunkingInvariance(t *testing.T) {
	frame := frameBytes(RecordKindHumidity, 0xDEADBEEF, 63.125)

	whole, _ := newTestSession(frame)
	want, err := whole.ReadNext(context.Background())
	require.NoError(t, err)

	// One byte per read.
	s, src := newTestSession(frame)
	src.SetMaxRead(1)
	got, err := s.ReadNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// One byte per poll.
	src = NewGXBufferSource()
	s = NewPortSession(src, time.Second)
	go func() {
		for _, b := range frame {
			src.Append([]byte{b})
			time.Sleep(time.Millisecond)
		}
	}()
	got, err = s.ReadNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadNextSkipsNoise(t *testing.T) {
	noise := []byte("\x00\x13garbage CH CHR CHRI\xff\xfe,,,,")
	s, src := newTestSession(noise, frameBytes(RecordKindTemperature, 5, 21.75))
	src.Close()
	records, retryable := readAll(t, s)
	assert.Empty(t, retryable)
	require.Len(t, records, 1)
	assert.Equal(t, NewThermalRecord(RecordKindTemperature, 5, 21.75), records[0])
}

func TestReadNextFalseStart(t *testing.T) {
	s, _ := newTestSession([]byte("CHRIX"), frameBytes(RecordKindHumidity, 2, 50))
	rec, err := s.ReadNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NewThermalRecord(RecordKindHumidity, 2, 50), rec)
}

func TestReadNextFastPathEquivalence(t *testing.T) {
	var stream []byte
	var want []ThermalRecord
	for i := 0; i < 8; i++ {
		kind := RecordKindTemperature
		if i%2 == 1 {
			kind = RecordKindHumidity
		}
		r := NewThermalRecord(kind, uint32(i), float32(i)*1.25)
		want = append(want, r)
		stream = r.AppendFrame(stream)
	}

	synced, src := newTestSession(stream)
	src.Close()
	got, retryable := readAll(t, synced)
	assert.Empty(t, retryable)
	assert.Equal(t, want, got)

	// Same bytes, scanning every frame.
	scanned, src := newTestSession(stream)
	src.Close()
	var viaScan []ThermalRecord
	for range want {
		scanned.Reset()
		rec, err := scanned.ReadNext(context.Background())
		require.NoError(t, err)
		viaScan = append(viaScan, rec)
	}
	assert.Equal(t, want, viaScan)
}

func TestReadNextResyncOnCorruption(t *testing.T) {
	first := frameBytes(RecordKindTemperature, 1, 20)
	corrupt := frameBytes(RecordKindTemperature, 2, 21)
	corrupt[3] = 'X'
	last := frameBytes(RecordKindHumidity, 3, 40)
	s, src := newTestSession(first, corrupt, last)
	src.Close()

	rec, err := s.ReadNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), rec.SourceID())
	require.Equal(t, SyncStateSynced, s.State())

	_, err = s.ReadNext(context.Background())
	require.ErrorIs(t, err, ErrResync)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, SyncStateUnsynced, s.State())

	rec, err = s.ReadNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NewThermalRecord(RecordKindHumidity, 3, 40), rec)
	assert.Equal(t, SyncStateSynced, s.State())
}

func TestReadNextResyncDropsMisalignedBytes(t *testing.T) {
	first := frameBytes(RecordKindTemperature, 1, 20)
	// Three stray bytes shift the next frame out of alignment.
	s, src := newTestSession(first, []byte{1, 2, 3}, frameBytes(RecordKindTemperature, 2, 21), frameBytes(RecordKindTemperature, 3, 22))
	src.Close()
	records, retryable := readAll(t, s)
	require.Len(t, retryable, 1)
	assert.ErrorIs(t, retryable[0], ErrResync)
	// The second frame was consumed by the failed read.
	require.Len(t, records, 2)
	assert.Equal(t, uint32(1), records[0].SourceID())
	assert.Equal(t, uint32(3), records[1].SourceID())
}

func TestReadNextShortSyncedFrame(t *testing.T) {
	s, src := newTestSession(frameBytes(RecordKindTemperature, 1, 20))
	_, err := s.ReadNext(context.Background())
	require.NoError(t, err)

	src.Append([]byte("CHRIS"))
	_, err = s.ReadNext(context.Background())
	require.ErrorIs(t, err, ErrResync)
	assert.Equal(t, SyncStateUnsynced, s.State())
}

func TestReadNextSyncedReadError(t *testing.T) {
	readErr := errors.New("device removed")
	src := &faultySource{GXBufferSource: NewGXBufferSource(), failAfter: FrameSize + 4, readErr: readErr}
	src.Append(frameBytes(RecordKindTemperature, 1, 20))
	src.Append(frameBytes(RecordKindTemperature, 2, 21))
	s := NewPortSession(src, testWaitTime)

	_, err := s.ReadNext(context.Background())
	require.NoError(t, err)
	_, err = s.ReadNext(context.Background())
	require.ErrorIs(t, err, ErrResync)
	assert.ErrorIs(t, err, readErr)
	assert.Equal(t, SyncStateUnsynced, s.State())
}

func TestReadNextUnsyncedReadErrorIsFatal(t *testing.T) {
	readErr := errors.New("device removed")
	src := &faultySource{GXBufferSource: NewGXBufferSource(), failAfter: 2, readErr: readErr}
	src.Append(frameBytes(RecordKindTemperature, 1, 20))
	s := NewPortSession(src, testWaitTime)

	_, err := s.ReadNext(context.Background())
	require.ErrorIs(t, err, readErr)
	assert.False(t, IsRetryable(err))
}

func TestReadNextPayloadReadErrorIsFatal(t *testing.T) {
	readErr := errors.New("device removed")
	src := &faultySource{GXBufferSource: NewGXBufferSource(), failAfter: MarkerSize + 3, readErr: readErr}
	src.Append(frameBytes(RecordKindTemperature, 1, 20))
	s := NewPortSession(src, testWaitTime)

	_, err := s.ReadNext(context.Background())
	require.ErrorIs(t, err, readErr)
	assert.NotErrorIs(t, err, ErrNoFrame)
	assert.False(t, IsRetryable(err))
	assert.Equal(t, SyncStateUnsynced, s.State())
}

func TestReadNextPayloadHangUpIsFatal(t *testing.T) {
	s, src := newTestSession()
	src.Append(frameBytes(RecordKindHumidity, 3, 50)[:MarkerSize+3])
	src.Close()

	_, err := s.ReadNext(context.Background())
	require.ErrorIs(t, err, ErrHangUp)
	assert.False(t, IsRetryable(err))
	assert.Equal(t, SyncStateUnsynced, s.State())
}

func TestReadNextPollErrorIsFatal(t *testing.T) {
	cause := errors.New("EIO")
	src := &faultySource{GXBufferSource: NewGXBufferSource(), pollState: ReadinessError, pollErr: cause}
	s := NewPortSession(src, testWaitTime)

	_, err := s.ReadNext(context.Background())
	var pe *PollError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsRetryable(err))
}

func TestReadNextHangUpIsFatal(t *testing.T) {
	s, src := newTestSession()
	src.Close()
	_, err := s.ReadNext(context.Background())
	require.ErrorIs(t, err, ErrHangUp)
	assert.False(t, IsRetryable(err))
}

func TestReadNextCancellation(t *testing.T) {
	s, _ := newTestSession([]byte("CHR"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*testWaitTime)
	defer cancel()
	start := time.Now()
	_, err := s.ReadNext(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, time.Since(start) < time.Second)
}

func TestReadNextCancelledBeforeStart(t *testing.T) {
	s, _ := newTestSession(frameBytes(RecordKindTemperature, 1, 20))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ReadNext(ctx)
	require.ErrorIs(t, err, context.Canceled)

	rec, err := s.ReadNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), rec.SourceID())
}

func TestNewPortSessionDefaultWaitTime(t *testing.T) {
	s := NewPortSession(NewGXBufferSource(), 0)
	assert.Equal(t, DefaultWaitTime, s.waitTime)
	assert.Equal(t, SyncStateUnsynced, s.State())
	assert.Equal(t, "Unsynced", s.State().String())
}
