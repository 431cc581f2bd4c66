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
	"bytes"
	"context"
	"encoding/binary"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gurux/gxcommon-go"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// ErrNotOpen is returned when the media is used before it is opened.
	ErrNotOpen = errors.New("serial port not open")
	// ErrClosed is returned by a port that was closed while it was polled.
	ErrClosed = errors.New("serial port closed")
	// ErrReaderActive is returned by ReadNext when records are delivered
	// to the OnRecord handler by the media's own reader.
	ErrReaderActive = errors.New("records are delivered by the record handler")
)

// MediaStateHandler is called when the media state changes.
type MediaStateHandler func(m *GXThermo, e gxcommon.MediaStateEventArgs)

// TraceEventHandler is called when the media emits a trace message.
type TraceEventHandler func(m *GXThermo, e gxcommon.TraceEventArgs)

// ErrorEventHandler is called when the media fails.
type ErrorEventHandler func(m *GXThermo, err error)

// RecordEventHandler is called for each record read by the media's reader.
type RecordEventHandler func(m *GXThermo, r ThermalRecord)

// GXThermo reads thermal records from a serial port.
type GXThermo struct {
	Port     string
	baudRate gxcommon.BaudRate
	dataBits int
	stopBits gxcommon.StopBits
	parity   gxcommon.Parity
	waitTime time.Duration
	// The trace level specifies which types of trace messages are emitted.
	traceLevel gxcommon.TraceLevel

	mu sync.RWMutex
	// Serializes the write path. Reads are owned by one goroutine.
	wmu sync.Mutex
	wg  sync.WaitGroup

	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64
	// Last SyncState seen by the reading goroutine.
	syncState atomic.Int32
	// Set while Close waits for the readers to leave the port.
	closing bool

	//Called when the Media state is changed.
	onState MediaStateHandler
	//Called when the Media is sending or receiving data.
	onTrace TraceEventHandler
	//Called when the Media fails.
	onErr ErrorEventHandler
	//Called when the new record is received.
	onRecord RecordEventHandler

	s       port
	writer  io.Writer
	session *PortSession
	// Done when Close starts. Readers stop on it.
	stopCtx context.Context
	cancel  context.CancelFunc
	// Records are read by the media's own goroutine.
	async bool
	// Printer for localized messages.
	p *message.Printer
}

// NewGXThermo creates a GXThermo configured with the given serial port.
func NewGXThermo(port string,
	baudRate gxcommon.BaudRate,
	dataBits int,
	parity gxcommon.Parity,
	stopBits gxcommon.StopBits) *GXThermo {
	g := &GXThermo{Port: port, baudRate: baudRate, dataBits: dataBits, parity: parity, stopBits: stopBits, waitTime: DefaultWaitTime}
	g.Localize(language.AmericanEnglish)
	return g
}

// NewDefaultGXThermo creates a GXThermo using 115200 8N1.
func NewDefaultGXThermo(port string) *GXThermo {
	return NewGXThermo(port, gxcommon.BaudRate(115200), 8, gxcommon.ParityNone, gxcommon.StopBitsOne)
}

// GetPortNames returns list of available serial ports.
func GetPortNames() ([]string, error) {
	return getPortNames()
}

// BaudRate returns the used baud rate.
func (g *GXThermo) BaudRate() gxcommon.BaudRate {
	return g.baudRate
}

// SetBaudRate sets the used baud rate.
func (g *GXThermo) SetBaudRate(value gxcommon.BaudRate) error {
	g.baudRate = value
	if g.s.isOpen() {
		return g.s.setBaudRate(value)
	}
	return nil
}

// DataBits returns the amount of the data bits.
func (g *GXThermo) DataBits() int {
	return g.dataBits
}

// SetDataBits sets the amount of the data bits.
func (g *GXThermo) SetDataBits(value int) error {
	g.dataBits = value
	if g.s.isOpen() {
		return g.s.setDataBits(value)
	}
	return nil
}

// StopBits returns used stop bits.
func (g *GXThermo) StopBits() gxcommon.StopBits {
	return g.stopBits
}

// SetStopBits sets the used stop bits.
func (g *GXThermo) SetStopBits(value gxcommon.StopBits) error {
	g.stopBits = value
	if g.s.isOpen() {
		return g.s.setStopBits(value)
	}
	return nil
}

// Parity returns used parity.
func (g *GXThermo) Parity() gxcommon.Parity {
	return g.parity
}

// SetParity sets the used parity.
func (g *GXThermo) SetParity(value gxcommon.Parity) error {
	g.parity = value
	if g.s.isOpen() {
		return g.s.setParity(value)
	}
	return nil
}

// WaitTime returns how long one readiness poll waits for data.
func (g *GXThermo) WaitTime() time.Duration {
	return g.waitTime
}

// SetWaitTime sets how long one readiness poll waits for data.
// It is used by sessions created after the call.
func (g *GXThermo) SetWaitTime(value time.Duration) error {
	if value <= 0 {
		return fmt.Errorf("invalid wait time %v", value)
	}
	g.waitTime = value
	return nil
}

// GetBytesToWrite returns the number of bytes waiting in the output queue.
func (g *GXThermo) GetBytesToWrite() (int, error) {
	if g.s.isOpen() {
		return g.s.getBytesToWrite()
	}
	return 0, nil
}

// String returns the port settings.
func (g *GXThermo) String() string {
	return fmt.Sprintf("%s %d %d %s %s", g.Port, g.baudRate, g.dataBits, g.stopBits, g.parity)
}

// GetName returns the port name.
func (g *GXThermo) GetName() string {
	return g.Port
}

// GetMediaType returns the media type name.
func (g *GXThermo) GetMediaType() string {
	return "Thermo"
}

// IsOpen returns true if the media is open.
func (g *GXThermo) IsOpen() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session != nil
}

// SyncState returns the frame synchronization state of the open session.
// It is safe to call while another goroutine reads records.
func (g *GXThermo) SyncState() SyncState {
	return SyncState(g.syncState.Load())
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}

// GetSettings returns the media settings as XML elements.
func (g *GXThermo) GetSettings() string {
	var b strings.Builder
	if g.Port != "" {
		fmt.Fprintf(&b, "<Port>%s</Port>\n", xmlEscape(g.Port))
	}
	if g.baudRate != 0 {
		fmt.Fprintf(&b, "<Bps>%d</Bps>\n", g.baudRate)
	}
	if g.dataBits != 0 {
		fmt.Fprintf(&b, "<ByteSize>%d</ByteSize>\n", g.dataBits)
	}
	if g.stopBits != 0 {
		fmt.Fprintf(&b, "<StopBits>%d</StopBits>\n", g.stopBits)
	}
	if g.parity != 0 {
		fmt.Fprintf(&b, "<Parity>%d</Parity>\n", g.parity)
	}
	if g.waitTime != DefaultWaitTime {
		fmt.Fprintf(&b, "<WaitTime>%d</WaitTime>\n", g.waitTime.Milliseconds())
	}
	return b.String()
}

// SetSettings parses media settings from XML elements.
func (g *GXThermo) SetSettings(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	dec := xml.NewDecoder(strings.NewReader("<root>" + value + "</root>"))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local == "root" {
			continue
		}
		var v string
		if err := dec.DecodeElement(&v, &se); err != nil {
			return err
		}
		v = strings.TrimSpace(v)
		switch se.Name.Local {
		case "Port":
			g.Port = v
		case "Bps":
			if g.baudRate, err = gxcommon.BaudRateParse(v); err != nil {
				return err
			}
		case "ByteSize":
			if g.dataBits, err = strconv.Atoi(v); err != nil {
				return fmt.Errorf("invalid ByteSize value: %w", err)
			}
		case "StopBits":
			if g.stopBits, err = gxcommon.StopBitsParse(v); err != nil {
				return err
			}
		case "Parity":
			if g.parity, err = gxcommon.ParityParse(v); err != nil {
				return err
			}
		case "WaitTime":
			ms, err := strconv.Atoi(v)
			if err != nil || ms <= 0 {
				return fmt.Errorf("invalid WaitTime value: %q", v)
			}
			g.waitTime = time.Duration(ms) * time.Millisecond
		}
	}
	return nil
}

// GetBytesSent returns the number of bytes sent.
func (g *GXThermo) GetBytesSent() uint64 {
	return g.bytesSent.Load()
}

// GetBytesReceived returns the number of bytes read from the port.
func (g *GXThermo) GetBytesReceived() uint64 {
	return g.bytesReceived.Load()
}

// ResetByteCounters resets the sent and received byte counters.
func (g *GXThermo) ResetByteCounters() {
	g.bytesSent.Store(0)
	g.bytesReceived.Store(0)
}

// Validate checks the settings before the port is opened.
func (g *GXThermo) Validate() error {
	if g.Port == "" {
		return errors.New(g.p.Sprintf("msg.no_serial_port_selected"))
	}
	if g.dataBits < 5 || g.dataBits > 8 {
		return errors.New(g.p.Sprintf("msg.invalid_data_bits", g.dataBits))
	}
	if g.waitTime <= 0 {
		return errors.New(g.p.Sprintf("msg.invalid_wait_time", g.waitTime))
	}
	return nil
}

// GetTrace returns the trace level.
func (g *GXThermo) GetTrace() gxcommon.TraceLevel {
	return g.traceLevel
}

// SetTrace sets the trace level.
func (g *GXThermo) SetTrace(traceLevel gxcommon.TraceLevel) error {
	g.mu.Lock()
	g.traceLevel = traceLevel
	g.mu.Unlock()
	return nil
}

// SetOnRecord sets the record handler. When it is set before Open, the
// media reads records on its own goroutine and ReadNext is not used.
func (g *GXThermo) SetOnRecord(value RecordEventHandler) {
	g.mu.Lock()
	g.onRecord = value
	g.mu.Unlock()
}

// SetOnError sets the error handler.
func (g *GXThermo) SetOnError(value ErrorEventHandler) {
	g.mu.Lock()
	g.onErr = value
	g.mu.Unlock()
}

// SetOnMediaStateChange sets the media state handler.
func (g *GXThermo) SetOnMediaStateChange(value MediaStateHandler) {
	g.mu.Lock()
	g.onState = value
	g.mu.Unlock()
}

// SetOnTrace sets the trace handler.
func (g *GXThermo) SetOnTrace(value TraceEventHandler) {
	g.mu.Lock()
	g.onTrace = value
	g.mu.Unlock()
}

// Open opens the serial port and starts frame synchronization.
func (g *GXThermo) Open() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session != nil {
		return nil
	}
	g.statef(false, gxcommon.MediaStateOpening)
	g.trace(false, gxcommon.TraceTypesInfo, g.p.Sprintf("msg.connecting_to", g.Port))
	if err := openPort(g); err != nil {
		g.trace(false, gxcommon.TraceTypesError, g.p.Sprintf("msg.connect_failed", g.Port, err))
		g.errorf(false, err)
		g.statef(false, gxcommon.MediaStateClosed)
		return err
	}
	g.start(&g.s, portWriter{&g.s})
	g.trace(false, gxcommon.TraceTypesInfo, g.p.Sprintf("msg.connected_to", g.Port))
	g.statef(false, gxcommon.MediaStateOpen)
	return nil
}

// OpenSource opens the media on an already open byte source, for
// example a GXBufferSource replaying a captured stream. If src
// implements io.Writer, Send writes to it.
func (g *GXThermo) OpenSource(src ByteSource) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session != nil {
		return nil
	}
	g.statef(false, gxcommon.MediaStateOpening)
	w, _ := src.(io.Writer)
	g.start(src, w)
	g.trace(false, gxcommon.TraceTypesInfo, g.p.Sprintf("msg.connected_to", g.Port))
	g.statef(false, gxcommon.MediaStateOpen)
	return nil
}

// start creates the session. g.mu must be held.
func (g *GXThermo) start(src ByteSource, w io.Writer) {
	g.writer = w
	g.syncState.Store(int32(SyncStateUnsynced))
	g.session = NewPortSession(&countingSource{src: src, n: &g.bytesReceived}, g.waitTime)
	g.stopCtx, g.cancel = context.WithCancel(context.Background())
	g.async = g.onRecord != nil
	if g.async {
		g.wg.Add(1)
		go g.reader(g.stopCtx, g.session)
	}
}

// ReadNext returns the next thermal record. It blocks until a frame is
// read, ctx is done or the port fails. See PortSession.ReadNext for the
// returned errors. A read interrupted by Close returns ErrClosed.
// ReadNext must not be called from several goroutines at the same time.
func (g *GXThermo) ReadNext(ctx context.Context) (ThermalRecord, error) {
	g.mu.Lock()
	session, stopCtx := g.session, g.stopCtx
	switch {
	case session == nil:
		g.mu.Unlock()
		return ThermalRecord{}, ErrNotOpen
	case g.closing:
		g.mu.Unlock()
		return ThermalRecord{}, ErrClosed
	case g.async:
		g.mu.Unlock()
		return ThermalRecord{}, ErrReaderActive
	}
	// Close waits for this read before it releases the port.
	g.wg.Add(1)
	g.mu.Unlock()
	defer g.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer context.AfterFunc(stopCtx, cancel)()
	rec, err := g.readNext(ctx, session)
	if err != nil && stopCtx.Err() != nil {
		return rec, ErrClosed
	}
	return rec, err
}

func (g *GXThermo) readNext(ctx context.Context, session *PortSession) (ThermalRecord, error) {
	before := session.State()
	rec, err := session.ReadNext(ctx)
	after := session.State()
	g.syncState.Store(int32(after))
	switch {
	case before == SyncStateUnsynced && after == SyncStateSynced:
		g.trace(true, gxcommon.TraceTypesInfo, g.p.Sprintf("msg.frame_synchronized", g.Port))
	case before == SyncStateSynced && after == SyncStateUnsynced:
		g.trace(true, gxcommon.TraceTypesError, g.p.Sprintf("msg.frame_sync_lost", g.Port, err))
	}
	if err == nil {
		g.tracef(true, gxcommon.TraceTypesReceived, "RX: %s", rec)
	} else if errors.Is(err, ErrNoFrame) {
		g.trace(true, gxcommon.TraceTypesInfo, g.p.Sprintf("msg.incomplete_frame", g.Port))
	}
	return rec, err
}

func (g *GXThermo) reader(ctx context.Context, session *PortSession) {
	defer g.wg.Done()
	for {
		rec, err := g.readNext(ctx, session)
		if err == nil {
			g.recordf(rec)
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if IsRetryable(err) {
			continue
		}
		g.trace(true, gxcommon.TraceTypesError, g.p.Sprintf("msg.connection_failed", err))
		g.errorf(true, err)
		return
	}
}

// Send writes data to the device. Send is safe to call while another
// goroutine reads records.
func (g *GXThermo) Send(data any) error {
	tmp, err := gxcommon.ToBytes(data, binary.BigEndian)
	if err != nil {
		return err
	}
	g.mu.RLock()
	w := g.writer
	g.mu.RUnlock()
	if w == nil {
		return ErrNotOpen
	}
	str, err := gxcommon.ToString(data)
	if err != nil {
		return err
	}
	g.tracef(true, gxcommon.TraceTypesSent, "TX: %s", str)
	g.wmu.Lock()
	defer g.wmu.Unlock()
	n, err := w.Write(tmp)
	g.bytesSent.Add(uint64(n))
	return err
}

func (g *GXThermo) recordf(rec ThermalRecord) {
	g.mu.RLock()
	cb := g.onRecord
	g.mu.RUnlock()
	if cb != nil {
		cb(g, rec)
	}
}

func (g *GXThermo) errorf(lock bool, err error) {
	var cb ErrorEventHandler
	if lock {
		g.mu.RLock()
		cb = g.onErr
		g.mu.RUnlock()
	} else {
		cb = g.onErr
	}
	if cb != nil {
		cb(g, err)
	}
}

func (g *GXThermo) tracef(lock bool, traceType gxcommon.TraceTypes, fmtStr string, a ...any) {
	if !g.tracing(lock, traceType) {
		return
	}
	g.trace(lock, traceType, fmt.Sprintf(fmtStr, a...))
}

func (g *GXThermo) tracing(lock bool, traceType gxcommon.TraceTypes) bool {
	if lock {
		g.mu.RLock()
		defer g.mu.RUnlock()
	}
	return g.onTrace != nil && int(g.traceLevel) >= int(traceType)
}

func (g *GXThermo) trace(lock bool, traceType gxcommon.TraceTypes, message string) {
	var cb TraceEventHandler
	trace := false
	if lock {
		g.mu.RLock()
		trace = int(g.traceLevel) >= int(traceType)
		cb = g.onTrace
		g.mu.RUnlock()
	} else {
		trace = int(g.traceLevel) >= int(traceType)
		cb = g.onTrace
	}
	if cb != nil && trace {
		cb(g, *gxcommon.NewTraceEventArgs(traceType, message, ""))
	}
}

func (g *GXThermo) statef(lock bool, state gxcommon.MediaState) {
	var cb MediaStateHandler
	if lock {
		g.mu.RLock()
		cb = g.onState
		g.mu.RUnlock()
	} else {
		cb = g.onState
	}
	if cb != nil {
		cb(g, *gxcommon.NewMediaStateEventArgs(state))
	}
}

// Close stops the readers and closes the port.
func (g *GXThermo) Close() error {
	g.mu.Lock()
	if g.session == nil || g.closing {
		g.mu.Unlock()
		return nil
	}
	g.closing = true
	g.trace(false, gxcommon.TraceTypesInfo, g.p.Sprintf("msg.closing_connection", g.Port))
	g.statef(false, gxcommon.MediaStateClosing)
	g.cancel()
	g.s.wake()
	g.mu.Unlock()

	// The reader calls handlers, so wait without holding the lock.
	g.wg.Wait()

	g.mu.Lock()
	g.wmu.Lock()
	err := g.s.close()
	g.writer = nil
	g.wmu.Unlock()
	g.session = nil
	g.async = false
	g.closing = false
	g.syncState.Store(int32(SyncStateUnsynced))
	g.mu.Unlock()
	g.trace(true, gxcommon.TraceTypesInfo, g.p.Sprintf("msg.connection_closed", g.Port))
	g.statef(true, gxcommon.MediaStateClosed)
	return err
}

// portWriter adapts the OS port to io.Writer.
type portWriter struct {
	p *port
}

func (w portWriter) Write(data []byte) (int, error) {
	return w.p.write(data)
}

// countingSource counts the bytes read through it.
type countingSource struct {
	src ByteSource
	n   *atomic.Uint64
}

func (c *countingSource) Poll(timeout time.Duration) (Readiness, error) {
	return c.src.Poll(timeout)
}

func (c *countingSource) Read(p []byte) (int, error) {
	n, err := c.src.Read(p)
	c.n.Add(uint64(n))
	return n, err
}

//nolint:errcheck
func init() {
	// --- English (default) ---
	message.SetString(language.AmericanEnglish, "msg.closing_connection", "Closing connection to %s")
	message.SetString(language.AmericanEnglish, "msg.connection_closed", "Connection closed to %s")
	message.SetString(language.AmericanEnglish, "msg.connection_failed", "Connection failed: %v")
	message.SetString(language.AmericanEnglish, "msg.connected_to", "Connected to %s")
	message.SetString(language.AmericanEnglish, "msg.connect_failed", "Connect to %s failed: %v")
	message.SetString(language.AmericanEnglish, "msg.connecting_to", "Connecting to %s")
	message.SetString(language.AmericanEnglish, "msg.no_serial_port_selected", "No serial port selected. Please select a serial port.")
	message.SetString(language.AmericanEnglish, "msg.invalid_data_bits", "Invalid data bits %d. Data bits must be between 5 and 8.")
	message.SetString(language.AmericanEnglish, "msg.invalid_wait_time", "Invalid wait time %v.")
	message.SetString(language.AmericanEnglish, "msg.frame_synchronized", "Frame synchronization found on %s")
	message.SetString(language.AmericanEnglish, "msg.frame_sync_lost", "Frame synchronization lost on %s: %v")
	message.SetString(language.AmericanEnglish, "msg.incomplete_frame", "Incomplete frame discarded on %s")

	// --- German (de) ---
	message.SetString(language.German, "msg.closing_connection", "Verbindung zu %s wird geschlossen")
	message.SetString(language.German, "msg.connection_closed", "Verbindung zu %s wurde geschlossen")
	message.SetString(language.German, "msg.connection_failed", "Verbindung fehlgeschlagen: %v")
	message.SetString(language.German, "msg.connected_to", "Verbunden mit %s")
	message.SetString(language.German, "msg.connect_failed", "Verbindung zu %s fehlgeschlagen: %v")
	message.SetString(language.German, "msg.connecting_to", "Verbinde mit %s")
	message.SetString(language.German, "msg.no_serial_port_selected", "Kein serieller Port ausgewählt. Bitte wählen Sie einen seriellen Port aus.")
	message.SetString(language.German, "msg.invalid_data_bits", "Ungültige Datenbits %d. Datenbits müssen zwischen 5 und 8 liegen.")
	message.SetString(language.German, "msg.invalid_wait_time", "Ungültige Wartezeit %v.")
	message.SetString(language.German, "msg.frame_synchronized", "Rahmensynchronisation auf %s gefunden")
	message.SetString(language.German, "msg.frame_sync_lost", "Rahmensynchronisation auf %s verloren: %v")
	message.SetString(language.German, "msg.incomplete_frame", "Unvollständiger Rahmen auf %s verworfen")

	// --- Finnish (fi) ---
	message.SetString(language.Finnish, "msg.closing_connection", "Suljetaan yhteys kohteeseen %s")
	message.SetString(language.Finnish, "msg.connection_closed", "Yhteys suljettu kohteeseen %s")
	message.SetString(language.Finnish, "msg.connection_failed", "Yhteyden muodostus epäonnistui: %v")
	message.SetString(language.Finnish, "msg.connected_to", "Yhdistetty kohteeseen %s")
	message.SetString(language.Finnish, "msg.connect_failed", "Yhteyden muodostus kohteeseen %s epäonnistui: %v")
	message.SetString(language.Finnish, "msg.connecting_to", "Yhdistetään kohteeseen %s")
	message.SetString(language.Finnish, "msg.no_serial_port_selected", "Sarjaporttia ei ole valittu. Valitse sarjaportti.")
	message.SetString(language.Finnish, "msg.invalid_data_bits", "Virheellinen databittien määrä %d. Sallitut arvot ovat 5-8.")
	message.SetString(language.Finnish, "msg.invalid_wait_time", "Virheellinen odotusaika %v.")
	message.SetString(language.Finnish, "msg.frame_synchronized", "Kehystahdistus löytyi kohteesta %s")
	message.SetString(language.Finnish, "msg.frame_sync_lost", "Kehystahdistus menetettiin kohteessa %s: %v")
	message.SetString(language.Finnish, "msg.incomplete_frame", "Vajaa kehys hylättiin kohteessa %s")

	// --- Swedish (sv) ---
	message.SetString(language.Swedish, "msg.closing_connection", "Stänger anslutning till %s")
	message.SetString(language.Swedish, "msg.connection_closed", "Anslutning stängd till %s")
	message.SetString(language.Swedish, "msg.connection_failed", "Anslutningen misslyckades: %v")
	message.SetString(language.Swedish, "msg.connected_to", "Ansluten till %s")
	message.SetString(language.Swedish, "msg.connect_failed", "Anslutning till %s misslyckades: %v")
	message.SetString(language.Swedish, "msg.connecting_to", "Ansluter till %s")
	message.SetString(language.Swedish, "msg.no_serial_port_selected", "Ingen seriell port vald. Välj en seriell port.")
	message.SetString(language.Swedish, "msg.invalid_data_bits", "Ogiltiga databitar %d. Databitar måste vara mellan 5 och 8.")
	message.SetString(language.Swedish, "msg.invalid_wait_time", "Ogiltig väntetid %v.")
	message.SetString(language.Swedish, "msg.frame_synchronized", "Ramsynkronisering hittad på %s")
	message.SetString(language.Swedish, "msg.frame_sync_lost", "Ramsynkronisering förlorad på %s: %v")
	message.SetString(language.Swedish, "msg.incomplete_frame", "Ofullständig ram kasserad på %s")
}

// Localize messages for the specified language.
// No errors is returned if language is not supported.
func (g *GXThermo) Localize(language language.Tag) {
	g.p = message.NewPrinter(language)
}
