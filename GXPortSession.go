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
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	// ErrNoFrame is returned when a marker was found but the payload
	// was incomplete or malformed. The caller should read again.
	ErrNoFrame = errors.New("no frame yet")
	// ErrResync is returned when a synchronized read did not produce a
	// valid frame. The session is back in unsynchronized mode.
	ErrResync = errors.New("frame synchronization lost")
)

// IsRetryable returns true if err only means that no record was produced
// by this call and reading can continue.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNoFrame) || errors.Is(err, ErrResync)
}

// SyncState tells how a PortSession reads the stream.
type SyncState int

const (
	// SyncStateUnsynced scans the stream byte by byte for the marker.
	SyncStateUnsynced SyncState = iota
	// SyncStateSynced reads whole frames and trusts them to be aligned.
	SyncStateSynced
)

func (s SyncState) String() string {
	if s == SyncStateSynced {
		return "Synced"
	}
	return "Unsynced"
}

// PortSession turns a byte source into a sequence of thermal records.
//
// A session must be used by one goroutine at a time. It performs no
// locking of its own.
type PortSession struct {
	src      ByteSource
	state    SyncState
	waitTime time.Duration
}

// NewPortSession creates an unsynchronized session that reads from src.
// A non-positive waitTime selects DefaultWaitTime.
func NewPortSession(src ByteSource, waitTime time.Duration) *PortSession {
	if waitTime <= 0 {
		waitTime = DefaultWaitTime
	}
	return &PortSession{src: src, waitTime: waitTime}
}

// State returns the current synchronization state.
func (s *PortSession) State() SyncState {
	return s.state
}

// Reset forces the session back to unsynchronized scanning.
func (s *PortSession) Reset() {
	s.state = SyncStateUnsynced
}

// ReadNext returns the next complete frame from the stream.
//
// Poll timeouts are retried until ctx is done. ErrNoFrame is returned
// when a marker was followed by an incomplete or malformed payload.
// Errors wrapping ErrResync mean that a synchronized read failed and
// the session is scanning again. Other errors come from the byte source
// or from ctx and are fatal for the session.
func (s *PortSession) ReadNext(ctx context.Context) (ThermalRecord, error) {
	var scanner FrameScanner
	for {
		r, err := waitReadable(ctx, s.src, s.waitTime)
		if err != nil {
			return ThermalRecord{}, err
		}
		if r == ReadinessTimeout {
			continue
		}
		if s.state == SyncStateSynced {
			return s.readSynced(ctx)
		}
		var b [1]byte
		n, err := s.src.Read(b[:])
		if err != nil {
			return ThermalRecord{}, readError(err)
		}
		if n == 0 || !scanner.Feed(b[0]) {
			continue
		}
		return s.readPayload(ctx)
	}
}

// readPayload reads the frame body after a matched marker.
func (s *PortSession) readPayload(ctx context.Context) (ThermalRecord, error) {
	var p [PayloadSize]byte
	n, err := s.readFull(ctx, p[:])
	if err != nil {
		return ThermalRecord{}, err
	}
	if n < PayloadSize || p[separatorOffset] != separator {
		return ThermalRecord{}, ErrNoFrame
	}
	s.state = SyncStateSynced
	return DecodePayload(p), nil
}

// readSynced reads one aligned frame. Any failure returns the session to
// unsynchronized mode. Bytes consumed by a failed attempt are dropped.
func (s *PortSession) readSynced(ctx context.Context) (ThermalRecord, error) {
	var frame [FrameSize]byte
	n, err := s.readFull(ctx, frame[:])
	if err != nil {
		s.state = SyncStateUnsynced
		if ctx.Err() != nil {
			return ThermalRecord{}, err
		}
		return ThermalRecord{}, fmt.Errorf("%w: %w", ErrResync, err)
	}
	if n < FrameSize {
		s.state = SyncStateUnsynced
		return ThermalRecord{}, fmt.Errorf("%w: short frame (%d of %d bytes)", ErrResync, n, FrameSize)
	}
	if string(frame[:MarkerSize]) != Marker {
		s.state = SyncStateUnsynced
		return ThermalRecord{}, fmt.Errorf("%w: %w", ErrResync, errInvalidMarker)
	}
	var p [PayloadSize]byte
	copy(p[:], frame[MarkerSize:])
	if p[separatorOffset] != separator {
		s.state = SyncStateUnsynced
		return ThermalRecord{}, fmt.Errorf("%w: %w", ErrResync, errInvalidSeparator)
	}
	return DecodePayload(p), nil
}

// readFull reads into buf while the source stays readable. It stops
// early, without error, when a wait times out.
func (s *PortSession) readFull(ctx context.Context, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		r, err := waitReadable(ctx, s.src, s.waitTime)
		if err != nil {
			return n, err
		}
		if r == ReadinessTimeout {
			return n, nil
		}
		m, err := s.src.Read(buf[n:])
		n += m
		if err != nil {
			return n, readError(err)
		}
	}
	return n, nil
}

func readError(err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrHangUp, err)
	}
	return fmt.Errorf("read failed: %w", err)
}
