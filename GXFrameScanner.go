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

// FrameScanner finds the frame marker in an unsynchronized byte stream.
// It is fed one byte at a time. A mismatching byte resets the match to
// the start of the marker; overlapping partial matches are not tracked.
type FrameScanner struct {
	index int
}

// Feed consumes one byte. It returns true when the byte completes the
// marker. The scanner is reset after a completed match.
func (s *FrameScanner) Feed(b byte) bool {
	if b == Marker[s.index] {
		s.index++
	} else {
		s.index = 0
	}
	if s.index == MarkerSize {
		s.index = 0
		return true
	}
	return false
}

// Index returns the number of marker bytes matched so far.
func (s *FrameScanner) Index() int {
	return s.index
}

// Reset discards a partial match.
func (s *FrameScanner) Reset() {
	s.index = 0
}
