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
	"time"
)

// DefaultWaitTime is the bounded wait used for each readiness poll.
const DefaultWaitTime = 100 * time.Millisecond

// Readiness is the result of polling a byte source.
type Readiness int

const (
	// ReadinessTimeout means no data arrived within the wait time.
	ReadinessTimeout Readiness = iota
	// ReadinessReadable means at least one byte can be read without blocking.
	ReadinessReadable
	// ReadinessError means the source reported an error condition.
	ReadinessError
	// ReadinessHangUp means the peer hung up.
	ReadinessHangUp
)

func (r Readiness) String() string {
	switch r {
	case ReadinessTimeout:
		return "Timeout"
	case ReadinessReadable:
		return "Readable"
	case ReadinessError:
		return "Error"
	case ReadinessHangUp:
		return "HangUp"
	default:
		return fmt.Sprintf("Readiness(%d)", int(r))
	}
}

// ByteSource is a readable byte stream with a poll-for-readiness primitive.
//
// Poll waits at most timeout for the source to become readable. When it
// returns ReadinessError the error describes the condition.
// Read must not block after Poll has reported ReadinessReadable. It may
// return fewer bytes than requested.
type ByteSource interface {
	Poll(timeout time.Duration) (Readiness, error)
	Read(p []byte) (int, error)
}

// ErrHangUp is returned when the byte source hangs up.
var ErrHangUp = errors.New("byte source hung up")

// PollError is a fatal error reported while waiting for readiness.
type PollError struct {
	Err error
}

func (e *PollError) Error() string {
	if e.Err == nil {
		return "poll failed"
	}
	return "poll failed: " + e.Err.Error()
}

func (e *PollError) Unwrap() error {
	return e.Err
}

// waitReadable performs one bounded wait on src. Cancellation is checked
// before the wait. Error and hang-up conditions are returned as errors;
// a timeout is not an error.
func waitReadable(ctx context.Context, src ByteSource, timeout time.Duration) (Readiness, error) {
	if err := ctx.Err(); err != nil {
		return ReadinessTimeout, err
	}
	r, err := src.Poll(timeout)
	switch r {
	case ReadinessReadable, ReadinessTimeout:
		if err != nil {
			return ReadinessError, &PollError{Err: err}
		}
		return r, nil
	case ReadinessHangUp:
		if err != nil {
			return r, fmt.Errorf("%w: %w", ErrHangUp, err)
		}
		return r, ErrHangUp
	default:
		return ReadinessError, &PollError{Err: err}
	}
}
