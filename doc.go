// Package gxthermo reads thermal telemetry records from a serial link.
//
// The peer repeats fixed 16-byte frames on an otherwise unframed byte
// stream:
//
//	offset  size  field
//	0       6     ASCII marker "CHRIS,"
//	6       1     kind: 'T' (temperature) or 'H' (humidity)
//	7       1     ','
//	8       4     source id, uint32, little-endian
//	12      4     value, IEEE-754 float32, little-endian
//
// Features
//
//   - Marker scanning that survives noise, partial reads and false starts.
//   - A synchronized fast path that reads whole frames once aligned and
//     falls back to scanning when a frame is corrupted.
//   - Bounded readiness polling with context based cancellation.
//   - Serial settings (port, baud rate, data bits, parity, stop bits).
//   - Tracing, media state and error callbacks, localized messages.
//
// # Construction
//
// Use NewGXThermo to create a media for a serial port.
//
//	media := gxthermo.NewDefaultGXThermo("/dev/ttyACM0")
//	if err := media.Open(); err != nil {
//	    // handle connect error
//	}
//	defer media.Close()
//
//	for {
//	    rec, err := media.ReadNext(ctx)
//	    if gxthermo.IsRetryable(err) {
//	        continue
//	    }
//	    if err != nil {
//	        // port failed, reopen or give up
//	        break
//	    }
//	    fmt.Println(rec)
//	}
//
// # Synchronization
//
// A PortSession starts unsynchronized and scans the stream one byte at a
// time for the marker. The first complete frame switches it to the
// synchronized state where 16 bytes are read at once. A frame with a bad
// marker, a short read or a read error moves it back to scanning and the
// call returns an error wrapping ErrResync. Bytes consumed by the failed
// read are not scanned again.
//
// # Errors and timeouts
//
// ErrNoFrame and ErrResync are not fatal; IsRetryable reports them. Poll
// and read failures of the underlying port are returned as is and end the
// session. Reconnecting is left to the caller.
//
// # Notes
//
// A session, and ReadNext of a GXThermo, must be used by one goroutine at a
// time. Send has its own lock and can be called while records are read.
// PortSession works with any ByteSource, for example GXBufferSource.
package gxthermo
