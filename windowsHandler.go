//go:build windows

package gxthermo

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unsafe"

	"github.com/Gurux/gxcommon-go"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

type port struct {
	h       windows.Handle
	ovRead  windows.Overlapped
	ovWrite windows.Overlapped
	closing windows.Handle
}

func (p *port) isOpen() bool {
	return p != nil && p.h != 0 && p.h != windows.InvalidHandle
}

// getPortNames retrieves the list of available serial port names on a Windows system by querying the registry.
func getPortNames() ([]string, error) {
	const path = `HARDWARE\DEVICEMAP\SERIALCOMM`

	key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE)
	if err != nil {
		if err == registry.ErrNotExist {
			return []string{}, nil
		}
		return nil, err
	}
	defer func() {
		_ = key.Close()
	}()

	valueNames, err := key.ReadValueNames(-1)
	if err != nil {
		return nil, err
	}

	var ports []string
	for _, name := range valueNames {
		port, _, err := key.GetStringValue(name)
		if err == nil {
			ports = append(ports, port)
		}
	}
	return ports, nil
}

const (
	dcbFBinary         = 1 << 0
	dcbFParity         = 1 << 1
	dcbFOutxCtsFlow    = 1 << 2
	dcbFOutX           = 1 << 8
	dcbFInX            = 1 << 9
	dcbFErrorChar      = 1 << 10
	dcbFNull           = 1 << 11
	dcbFAbortOnError   = 1 << 14
	dcbFDtrControlMask = 0x3 << 4  // bits 4-5
	dcbFRtsControlMask = 0x3 << 12 // bits 12-13
)

// How often the receive queue is checked while polling.
const pollInterval = 5 * time.Millisecond

func (p *port) getCommState() (*windows.DCB, error) {
	if !p.isOpen() {
		return nil, ErrNotOpen
	}
	var d windows.DCB
	d.DCBlength = uint32(unsafe.Sizeof(d))
	if err := windows.GetCommState(p.h, &d); err != nil {
		return nil, fmt.Errorf("GetCommState failed: %w", err)
	}
	return &d, nil
}

func (p *port) setCommState(d *windows.DCB) error {
	if !p.isOpen() {
		return ErrNotOpen
	}
	if err := windows.SetCommState(p.h, d); err != nil {
		return fmt.Errorf("SetCommState failed: %w", err)
	}
	return nil
}

func (p *port) updateSettings(cfg *GXThermo) error {
	d, err := p.getCommState()
	if err != nil {
		return err
	}
	d.BaudRate = uint32(cfg.baudRate)
	d.ByteSize = byte(cfg.dataBits)
	d.Parity = byte(cfg.parity)
	if d.StopBits, err = toStopBits(cfg.stopBits); err != nil {
		return err
	}
	// Binary mode, no flow control, no character replacement.
	d.Flags = dcbFBinary
	if d.Parity != 0 {
		d.Flags |= dcbFParity
	}
	d.Flags &^= dcbFOutxCtsFlow | dcbFOutX | dcbFInX | dcbFErrorChar | dcbFNull | dcbFAbortOnError
	d.Flags &^= dcbFDtrControlMask | dcbFRtsControlMask
	return p.setCommState(d)
}

func toStopBits(value gxcommon.StopBits) (byte, error) {
	switch value {
	case gxcommon.StopBitsOne:
		return 0, nil // ONESTOPBIT
	case gxcommon.StopBitsTwo:
		return 2, nil // TWOSTOPBITS
	default:
		return 0, gxcommon.ErrInvalidArgument
	}
}

func (p *port) setBaudRate(value gxcommon.BaudRate) error {
	d, err := p.getCommState()
	if err != nil {
		return err
	}
	d.BaudRate = uint32(value)
	return p.setCommState(d)
}

func (p *port) setDataBits(value int) error {
	d, err := p.getCommState()
	if err != nil {
		return err
	}
	d.ByteSize = byte(value)
	return p.setCommState(d)
}

func (p *port) setStopBits(value gxcommon.StopBits) error {
	d, err := p.getCommState()
	if err != nil {
		return err
	}
	if d.StopBits, err = toStopBits(value); err != nil {
		return err
	}
	return p.setCommState(d)
}

func (p *port) setParity(value gxcommon.Parity) error {
	d, err := p.getCommState()
	if err != nil {
		return err
	}
	d.Parity = byte(value)
	return p.setCommState(d)
}

func openPort(cfg *GXThermo) error {
	if strings.TrimSpace(cfg.Port) == "" {
		return errors.New("invalid serial port name")
	}

	cfg.s = port{}

	closing, err := windows.CreateEvent(nil, 1, 0, nil) // manual-reset, not signaled
	if err != nil {
		return fmt.Errorf("CreateEvent(closing) failed: %w", err)
	}
	cfg.s.closing = closing

	path := `\\.\` + cfg.Port
	h, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_OVERLAPPED,
		0,
	)
	if err != nil {
		_ = cfg.s.close()
		return fmt.Errorf("failed to open port %q: %w", cfg.Port, err)
	}
	cfg.s.h = h

	er, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		_ = cfg.s.close()
		return fmt.Errorf("CreateEvent(read) failed: %w", err)
	}
	cfg.s.ovRead.HEvent = er

	ew, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		_ = cfg.s.close()
		return fmt.Errorf("CreateEvent(write) failed: %w", err)
	}
	cfg.s.ovWrite.HEvent = ew

	if err := cfg.s.updateSettings(cfg); err != nil {
		_ = cfg.s.close()
		return fmt.Errorf("failed to update serial port settings: %w", err)
	}

	if err := windows.PurgeComm(cfg.s.h,
		windows.PURGE_TXCLEAR|windows.PURGE_TXABORT|windows.PURGE_RXCLEAR|windows.PURGE_RXABORT,
	); err != nil {
		_ = cfg.s.close()
		return fmt.Errorf("PurgeComm failed: %w", err)
	}
	return nil
}

func (p *port) getBytesToWrite() (int, error) {
	if !p.isOpen() {
		return 0, ErrNotOpen
	}
	var flags uint32
	var st windows.ComStat
	if err := windows.ClearCommError(p.h, &flags, &st); err != nil {
		return 0, fmt.Errorf("getBytesToWrite failed: %w", err)
	}
	return int(st.CBOutQue), nil
}

func (p *port) getBytesToRead() (int, error) {
	if !p.isOpen() {
		return 0, ErrNotOpen
	}
	var flags uint32
	var st windows.ComStat
	if err := windows.ClearCommError(p.h, &flags, &st); err != nil {
		return 0, fmt.Errorf("getBytesToRead failed: %w", err)
	}
	return int(st.CBInQue), nil
}

// Poll implements ByteSource. The receive queue is checked until data
// arrives, the port is closed or the timeout expires.
func (p *port) Poll(timeout time.Duration) (Readiness, error) {
	if p.closing == 0 {
		return ReadinessError, ErrClosed
	}
	deadline := time.Now().Add(timeout)
	for {
		count, err := p.getBytesToRead()
		if err != nil {
			if errors.Is(err, windows.ERROR_INVALID_HANDLE) || errors.Is(err, windows.ERROR_ACCESS_DENIED) {
				// Device was removed.
				return ReadinessHangUp, err
			}
			return ReadinessError, err
		}
		if count != 0 {
			return ReadinessReadable, nil
		}
		rem := time.Until(deadline)
		if rem <= 0 {
			return ReadinessTimeout, nil
		}
		if rem > pollInterval {
			rem = pollInterval
		}
		r, err := windows.WaitForSingleObject(p.closing, uint32(rem/time.Millisecond))
		if err != nil {
			return ReadinessError, fmt.Errorf("poll wait failed: %w", err)
		}
		if r == windows.WAIT_OBJECT_0 {
			return ReadinessError, ErrClosed
		}
	}
}

// Read implements ByteSource. Only queued bytes are requested so the
// overlapped read completes without waiting for the line.
func (p *port) Read(buf []byte) (int, error) {
	if !p.isOpen() {
		return 0, ErrNotOpen
	}
	count, err := p.getBytesToRead()
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	if count < len(buf) {
		buf = buf[:count]
	}
	var n uint32
	_ = windows.ResetEvent(p.ovRead.HEvent)
	err = windows.ReadFile(p.h, buf, &n, &p.ovRead)
	if err == nil {
		return int(n), nil
	}
	if !errors.Is(err, windows.ERROR_IO_PENDING) {
		return 0, fmt.Errorf("read failed: %w", err)
	}
	handles := []windows.Handle{p.closing, p.ovRead.HEvent}
	idx, err := windows.WaitForMultipleObjects(handles, false, windows.INFINITE)
	if err != nil {
		return 0, fmt.Errorf("read wait failed: %w", err)
	}
	if idx == windows.WAIT_OBJECT_0 {
		_ = windows.CancelIoEx(p.h, &p.ovRead)
		return 0, ErrClosed
	}
	if err := windows.GetOverlappedResult(p.h, &p.ovRead, &n, true); err != nil {
		if errors.Is(err, windows.ERROR_OPERATION_ABORTED) {
			return 0, ErrClosed
		}
		return 0, fmt.Errorf("read failed: %w", err)
	}
	return int(n), nil
}

func (p *port) write(data []byte) (int, error) {
	if !p.isOpen() {
		return 0, ErrNotOpen
	}
	if len(data) == 0 {
		return 0, nil
	}

	var n uint32
	_ = windows.ResetEvent(p.ovWrite.HEvent)
	err := windows.WriteFile(p.h, data, &n, &p.ovWrite)
	if err == nil {
		return len(data), nil
	}
	if !errors.Is(err, windows.ERROR_IO_PENDING) {
		return 0, fmt.Errorf("write failed: %w", err)
	}
	timeout := uint32((1 * time.Second) / time.Millisecond)
	handles := []windows.Handle{p.closing, p.ovWrite.HEvent}
	idx, werr := windows.WaitForMultipleObjects(handles, false, timeout)
	if werr != nil {
		return 0, fmt.Errorf("write wait failed: %w", werr)
	}
	if idx == windows.WAIT_OBJECT_0 {
		return 0, ErrClosed
	}
	if gerr := windows.GetOverlappedResult(p.h, &p.ovWrite, &n, true); gerr != nil {
		return 0, fmt.Errorf("write failed: %w", gerr)
	}
	return int(n), nil
}

// wake makes a pending or later Poll or Read return ErrClosed. The
// handles stay valid until close.
func (p *port) wake() {
	if p == nil || p.closing == 0 {
		return
	}
	_ = windows.SetEvent(p.closing)
	if p.h != 0 && p.h != windows.InvalidHandle {
		_ = windows.CancelIoEx(p.h, nil)
	}
}

func (p *port) close() error {
	if p == nil {
		return nil
	}
	if p.closing != 0 {
		_ = windows.SetEvent(p.closing)
	}
	if p.h != 0 && p.h != windows.InvalidHandle {
		_ = windows.CancelIoEx(p.h, nil)
	}
	if p.ovRead.HEvent != 0 {
		_ = windows.CloseHandle(p.ovRead.HEvent)
		p.ovRead.HEvent = 0
	}
	if p.ovWrite.HEvent != 0 {
		_ = windows.CloseHandle(p.ovWrite.HEvent)
		p.ovWrite.HEvent = 0
	}
	if p.h != 0 {
		_ = windows.CloseHandle(p.h)
		p.h = 0
	}
	if p.closing != 0 {
		_ = windows.CloseHandle(p.closing)
		p.closing = 0
	}
	return nil
}
