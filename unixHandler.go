//go:build linux || darwin

package gxthermo

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Gurux/gxcommon-go"
	"golang.org/x/sys/unix"
)

type port struct {
	fd int
	// Self-pipe. Writing to wfd wakes up a pending Poll.
	rfd    int
	wfd    int
	opened bool
	closed atomic.Bool
}

func (p *port) isOpen() bool {
	return p != nil && p.opened
}

func (p *port) ensureOpen() error {
	if !p.isOpen() {
		return ErrNotOpen
	}
	return nil
}

func openPort(cfg *GXThermo) error {
	fd, err := unix.Open(cfg.Port, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0666)
	if err != nil {
		return err
	}
	cfg.s = port{fd: fd, rfd: -1, wfd: -1, opened: true}

	t, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		_ = cfg.s.close()
		return err
	}
	// Raw mode.
	t.Cflag |= unix.CLOCAL | unix.CREAD
	t.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHOE | unix.ECHOK | unix.ECHONL | unix.ISIG | unix.IEXTEN
	t.Oflag &^= unix.OPOST | unix.ONLCR | unix.OCRNL
	t.Iflag &^= unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IGNBRK | unix.IXON | unix.IXOFF | unix.IXANY
	t.Cflag &^= unix.CRTSCTS
	// Reads never block. Waiting is done with poll.
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = 0
	if err := applyBaudRate(t, cfg.baudRate); err != nil {
		_ = cfg.s.close()
		return err
	}
	if err := applyDataBits(t, cfg.dataBits); err != nil {
		_ = cfg.s.close()
		return err
	}
	if err := applyStopBits(t, cfg.stopBits); err != nil {
		_ = cfg.s.close()
		return err
	}
	if err := applyParity(t, cfg.parity); err != nil {
		_ = cfg.s.close()
		return err
	}
	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, t); err != nil {
		_ = cfg.s.close()
		return err
	}
	if err := flushInput(fd); err != nil {
		_ = cfg.s.close()
		return err
	}
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		_ = cfg.s.close()
		return err
	}
	cfg.s.rfd, cfg.s.wfd = fds[0], fds[1]
	_ = unix.SetNonblock(cfg.s.rfd, true)
	_ = unix.SetNonblock(cfg.s.wfd, true)
	return nil
}

// wake makes a pending or later Poll return ErrClosed. The descriptors
// stay open until close, so a reader never polls a reused fd number.
func (p *port) wake() {
	if p == nil || !p.opened || p.closed.Swap(true) {
		return
	}
	if p.wfd >= 0 {
		_, _ = unix.Write(p.wfd, []byte{0})
	}
}

// close releases the descriptors. No reader may use the port after it.
func (p *port) close() error {
	if p == nil || !p.opened {
		return nil
	}
	p.wake()
	err := unix.Close(p.fd)
	if p.rfd >= 0 {
		_ = unix.Close(p.rfd)
	}
	if p.wfd >= 0 {
		_ = unix.Close(p.wfd)
	}
	p.opened = false
	p.fd, p.rfd, p.wfd = -1, -1, -1
	return err
}

// Poll implements ByteSource.
func (p *port) Poll(timeout time.Duration) (Readiness, error) {
	if p.closed.Load() {
		return ReadinessError, ErrClosed
	}
	if err := p.ensureOpen(); err != nil {
		return ReadinessError, err
	}
	pfds := []unix.PollFd{
		{Fd: int32(p.fd), Events: unix.POLLIN},
		{Fd: int32(p.rfd), Events: unix.POLLIN},
	}
	ms := int(timeout / time.Millisecond)
	for {
		n, err := unix.Poll(pfds, ms)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return ReadinessError, err
		}
		if p.closed.Load() || pfds[1].Revents != 0 {
			return ReadinessError, ErrClosed
		}
		if n == 0 {
			return ReadinessTimeout, nil
		}
		ev := pfds[0].Revents
		switch {
		case ev&unix.POLLIN != 0:
			return ReadinessReadable, nil
		case ev&unix.POLLHUP != 0:
			return ReadinessHangUp, nil
		case ev&unix.POLLNVAL != 0:
			return ReadinessError, errors.New("invalid serial port descriptor")
		case ev&unix.POLLERR != 0:
			return ReadinessError, errors.New("serial port error")
		}
		return ReadinessTimeout, nil
	}
}

// Read implements ByteSource.
func (p *port) Read(buf []byte) (int, error) {
	if err := p.ensureOpen(); err != nil {
		return 0, err
	}
	for {
		n, err := unix.Read(p.fd, buf)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return 0, nil
		case err != nil:
			return 0, err
		}
		return n, nil
	}
}

func (p *port) write(data []byte) (int, error) {
	if err := p.ensureOpen(); err != nil {
		return 0, err
	}
	written := 0
	for written < len(data) {
		n, err := unix.Write(p.fd, data[written:])
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			pfds := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLOUT}}
			if _, err := unix.Poll(pfds, int(time.Second/time.Millisecond)); err != nil && !errors.Is(err, unix.EINTR) {
				return written, fmt.Errorf("write failed: %w", err)
			}
			continue
		}
		if err != nil {
			return written, fmt.Errorf("write failed: %w", err)
		}
		written += n
	}
	return written, nil
}

func (p *port) getTermios() (*unix.Termios, error) {
	if err := p.ensureOpen(); err != nil {
		return nil, err
	}
	t, err := unix.IoctlGetTermios(p.fd, ioctlReadTermios)
	if err != nil {
		return nil, fmt.Errorf("tcgetattr failed: %w", err)
	}
	return t, nil
}

func (p *port) setTermios(value *unix.Termios) error {
	if err := p.ensureOpen(); err != nil {
		return err
	}
	if err := unix.IoctlSetTermios(p.fd, ioctlWriteTermios, value); err != nil {
		return fmt.Errorf("tcsetattr failed: %w", err)
	}
	return nil
}

func (p *port) update(apply func(t *unix.Termios) error) error {
	t, err := p.getTermios()
	if err != nil {
		return err
	}
	if err := apply(t); err != nil {
		return err
	}
	return p.setTermios(t)
}

func (p *port) setBaudRate(value gxcommon.BaudRate) error {
	return p.update(func(t *unix.Termios) error { return applyBaudRate(t, value) })
}

func (p *port) setDataBits(value int) error {
	return p.update(func(t *unix.Termios) error { return applyDataBits(t, value) })
}

func (p *port) setStopBits(value gxcommon.StopBits) error {
	return p.update(func(t *unix.Termios) error { return applyStopBits(t, value) })
}

func (p *port) setParity(value gxcommon.Parity) error {
	return p.update(func(t *unix.Termios) error { return applyParity(t, value) })
}

func applyDataBits(t *unix.Termios, value int) error {
	t.Cflag &^= unix.CSIZE
	switch value {
	case 5:
		t.Cflag |= unix.CS5
	case 6:
		t.Cflag |= unix.CS6
	case 7:
		t.Cflag |= unix.CS7
	case 8:
		t.Cflag |= unix.CS8
	default:
		return fmt.Errorf("invalid databits %d (must be 5..8)", value)
	}
	return nil
}

func applyStopBits(t *unix.Termios, value gxcommon.StopBits) error {
	switch value {
	case gxcommon.StopBitsOne:
		t.Cflag &^= unix.CSTOPB
	case gxcommon.StopBitsTwo:
		t.Cflag |= unix.CSTOPB
	default:
		return fmt.Errorf("invalid stopbits %v", value)
	}
	return nil
}

func applyParity(t *unix.Termios, value gxcommon.Parity) error {
	t.Iflag &^= unix.INPCK | unix.ISTRIP
	t.Cflag &^= unix.PARENB | unix.PARODD
	if cmspar != 0 {
		t.Cflag &^= cmspar
	}
	switch value {
	case gxcommon.ParityNone:
	case gxcommon.ParityEven:
		t.Cflag |= unix.PARENB
	case gxcommon.ParityOdd:
		t.Cflag |= unix.PARENB | unix.PARODD
	case gxcommon.ParityMark:
		if cmspar == 0 {
			return errors.New("mark parity requested but CMSPAR not supported")
		}
		t.Cflag |= unix.PARENB | cmspar | unix.PARODD
	case gxcommon.ParitySpace:
		if cmspar == 0 {
			return errors.New("space parity requested but CMSPAR not supported")
		}
		t.Cflag |= unix.PARENB | cmspar
	default:
		return errors.New("invalid parity")
	}
	return nil
}

func (p *port) getBytesToWrite() (int, error) {
	if err := p.ensureOpen(); err != nil {
		return 0, err
	}
	n, err := unix.IoctlGetInt(p.fd, unix.TIOCOUTQ)
	if err != nil {
		return 0, fmt.Errorf("getBytesToWrite failed: %w", err)
	}
	return n, nil
}
