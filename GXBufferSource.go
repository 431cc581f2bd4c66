package gxthermo

// --------------------------------------------------------------------------
//
//	Gurux Ltd
//
// Filename:        $HeadURL$
//
// Version:         $Revision$,
//
//	$Date$
//	$Author$
//
// # Copyright (c) Gurux Ltd
//
// ---------------------------------------------------------------------------
//
//	DESCRIPTION
//
// This file is a part of Gurux Device Framework.
//
// Gurux Device Framework is Open Source software; you can redistribute it
// and/or modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2 of the License.
// Gurux Device Framework is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU General Public License for more details.
//
// More information of Gurux products: https://www.gurux.org
//
// This code is licensed under the GNU General Public License v2.
// Full text may be retrieved at http://www.gnu.org/licenses/gpl-2.0.txt
// ---------------------------------------------------------------------------

import (
	"sync"
	"time"
)

// GXBufferSource is an in-memory ByteSource. Data appended to it becomes
// readable by a PortSession. It is used to replay captured streams and
// to feed the engine from transports other than a serial port.
type GXBufferSource struct {
	mu     sync.Mutex
	buf    []byte
	wait   chan struct{}
	closed bool
	// Max bytes returned by one Read. Zero means no limit.
	maxRead int
}

// NewGXBufferSource creates an empty buffer source.
func NewGXBufferSource() *GXBufferSource {
	return &GXBufferSource{wait: make(chan struct{})}
}

// SetMaxRead limits how many bytes a single Read returns.
func (b *GXBufferSource) SetMaxRead(count int) {
	b.mu.Lock()
	b.maxRead = count
	b.mu.Unlock()
}

// Append adds data to the end of the buffer and wakes up waiting readers.
func (b *GXBufferSource) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.buf = append(b.buf, p...)
	old := b.wait
	b.wait = make(chan struct{})
	b.mu.Unlock()
	close(old)
}

// Write implements io.Writer.
func (b *GXBufferSource) Write(p []byte) (int, error) {
	b.Append(p)
	return len(p), nil
}

// Close marks the end of the stream. Buffered data can still be read.
// After that Poll reports a hang-up.
func (b *GXBufferSource) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.wait)
	return nil
}

// Len returns the number of unread bytes.
func (b *GXBufferSource) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// Poll implements ByteSource.
func (b *GXBufferSource) Poll(timeout time.Duration) (Readiness, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		b.mu.Lock()
		if len(b.buf) != 0 {
			b.mu.Unlock()
			return ReadinessReadable, nil
		}
		if b.closed {
			b.mu.Unlock()
			return ReadinessHangUp, nil
		}
		ch := b.wait
		b.mu.Unlock()

		if deadline.IsZero() {
			return ReadinessTimeout, nil
		}
		rem := time.Until(deadline)
		if rem <= 0 {
			return ReadinessTimeout, nil
		}
		timer := time.NewTimer(rem)
		select {
		case <-ch:
			timer.Stop()
		case <-timer.C:
			return ReadinessTimeout, nil
		}
	}
}

// Read implements ByteSource. It never blocks.
func (b *GXBufferSource) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := len(p)
	if b.maxRead > 0 && count > b.maxRead {
		count = b.maxRead
	}
	n := copy(p[:count], b.buf)
	//Remove read bytes from the buffer.
	b.buf = b.buf[n:]
	if len(b.buf) == 0 {
		b.buf = nil
	}
	return n, nil
}
