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
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// Marker prefixes every frame on the wire.
	Marker = "CHRIS,"
	// MarkerSize is the length of Marker in bytes.
	MarkerSize = len(Marker)
	// PayloadSize is the size of the frame body that follows the marker.
	PayloadSize = 10
	// FrameSize is the size of one complete frame.
	FrameSize = MarkerSize + PayloadSize
)

// Field offsets inside the payload.
const (
	kindOffset      = 0
	separatorOffset = 1
	sourceOffset    = 2
	valueOffset     = 6
	separator       = ','
)

// Sensor hosts are little-endian.
var linkOrder = binary.LittleEndian

// RecordKind is the kind tag of a frame.
type RecordKind byte

const (
	// RecordKindTemperature is a temperature reading in degrees Celsius.
	RecordKindTemperature RecordKind = 'T'
	// RecordKindHumidity is a relative humidity reading in percent.
	RecordKindHumidity RecordKind = 'H'
)

// String returns the name of the kind.
func (k RecordKind) String() string {
	switch k {
	case RecordKindTemperature:
		return "Temperature"
	case RecordKindHumidity:
		return "Humidity"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", byte(k))
	}
}

// Unit returns the measurement unit of the kind.
func (k RecordKind) Unit() string {
	switch k {
	case RecordKindTemperature:
		return "°C"
	case RecordKindHumidity:
		return "%"
	default:
		return ""
	}
}

// Known returns true if the kind is temperature or humidity.
func (k RecordKind) Known() bool {
	return k == RecordKindTemperature || k == RecordKindHumidity
}

// ThermalRecord is one decoded telemetry reading.
type ThermalRecord struct {
	kind     RecordKind
	sourceID uint32
	value    float32
}

// NewThermalRecord creates a record. It is used when frames are produced.
func NewThermalRecord(kind RecordKind, sourceID uint32, value float32) ThermalRecord {
	return ThermalRecord{kind: kind, sourceID: sourceID, value: value}
}

// Kind returns the kind tag.
func (r ThermalRecord) Kind() RecordKind {
	return r.kind
}

// SourceID returns the id of the sensor that produced the reading.
func (r ThermalRecord) SourceID() uint32 {
	return r.sourceID
}

// Value returns the measured value.
func (r ThermalRecord) Value() float32 {
	return r.value
}

// String implements fmt.Stringer.
func (r ThermalRecord) String() string {
	return fmt.Sprintf("Type: %c, Source: 0x%08x, Value: %.2f %s", byte(r.kind), r.sourceID, r.value, r.kind.Unit())
}

// DecodePayload interprets the bytes following a matched marker.
// The separator is not checked here. Unknown kinds are accepted.
func DecodePayload(p [PayloadSize]byte) ThermalRecord {
	return ThermalRecord{
		kind:     RecordKind(p[kindOffset]),
		sourceID: linkOrder.Uint32(p[sourceOffset : sourceOffset+4]),
		value:    math.Float32frombits(linkOrder.Uint32(p[valueOffset : valueOffset+4])),
	}
}

// DecodeFrame validates a complete frame and decodes it.
func DecodeFrame(b []byte) (ThermalRecord, error) {
	if len(b) != FrameSize {
		return ThermalRecord{}, fmt.Errorf("invalid frame size %d, want %d", len(b), FrameSize)
	}
	if string(b[:MarkerSize]) != Marker {
		return ThermalRecord{}, errInvalidMarker
	}
	var p [PayloadSize]byte
	copy(p[:], b[MarkerSize:])
	if p[separatorOffset] != separator {
		return ThermalRecord{}, errInvalidSeparator
	}
	return DecodePayload(p), nil
}

// AppendFrame appends the wire form of the record to dst.
func (r ThermalRecord) AppendFrame(dst []byte) []byte {
	dst = append(dst, Marker...)
	dst = append(dst, byte(r.kind), separator)
	dst = linkOrder.AppendUint32(dst, r.sourceID)
	return linkOrder.AppendUint32(dst, math.Float32bits(r.value))
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r ThermalRecord) MarshalBinary() ([]byte, error) {
	return r.AppendFrame(make([]byte, 0, FrameSize)), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *ThermalRecord) UnmarshalBinary(data []byte) error {
	ret, err := DecodeFrame(data)
	if err != nil {
		return err
	}
	*r = ret
	return nil
}

var (
	errInvalidMarker    = errors.New("frame marker mismatch")
	errInvalidSeparator = errors.New("frame separator missing")
)
