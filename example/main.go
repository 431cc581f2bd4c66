package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Gurux/gxcommon-go"
	"github.com/Gurux/gxthermo-go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

var (
	port     = flag.String("S", "", "Port name")
	baudRate = flag.Int("b", 115200, "Baud rate")
	dataBits = flag.Int("d", 8, "DataBits (5, 6, 7, 8)")
	parity   = flag.String("p", "None", "Parity (None, Odd, Even, Mark, Space)")
	t        = flag.String("t", "", "Trace level.")
	w        = flag.Int("w", 100, "WaitTime in milliseconds.")
	lang     = flag.String("lang", "", "Used language.")
	console  = flag.Bool("console", false, "Send lines read from stdin to the device. /quit exits.")
)

// Delay before the port is opened again after a failure.
const reconnectDelay = time.Second

func main() {
	flag.Parse()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()
	if *port == "" {
		flag.PrintDefaults()
		if ret, err := gxthermo.GetPortNames(); err == nil {
			fmt.Fprintln(os.Stderr, "Available serial ports: "+strings.Join(ret, ","))
		}
		return
	}

	p, err := gxcommon.ParityParse(*parity)
	if err != nil {
		log.Error().Err(err).Msg("error parsing parity")
		return
	}
	media := gxthermo.NewGXThermo(*port, gxcommon.BaudRate(*baudRate), *dataBits, p, gxcommon.StopBitsOne)
	if *lang != "" {
		tag, err := language.Parse(*lang)
		if err != nil {
			log.Error().Err(err).Msg("error parsing language")
			return
		}
		media.Localize(tag)
	}
	if err := media.SetWaitTime(time.Duration(*w) * time.Millisecond); err != nil {
		log.Error().Err(err).Msg("invalid wait time")
		return
	}
	if *t != "" {
		tl, err := gxcommon.TraceLevelParse(*t)
		if err != nil {
			log.Error().Err(err).Msg("error parsing trace level")
			return
		}
		_ = media.SetTrace(tl)
	}
	media.SetOnTrace(func(m *gxthermo.GXThermo, e gxcommon.TraceEventArgs) {
		log.Debug().Str("port", m.GetName()).Msg(e.String())
	})
	media.SetOnMediaStateChange(func(m *gxthermo.GXThermo, e gxcommon.MediaStateEventArgs) {
		log.Info().Str("port", m.GetName()).Str("state", e.State().String()).Msg("media state changed")
	})
	if err := media.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid settings")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var lines <-chan string
	if *console {
		lines = readLines(os.Stdin, stop)
	}
	for ctx.Err() == nil {
		err := run(ctx, media, lines, log)
		if ctx.Err() != nil {
			break
		}
		log.Error().Err(err).Dur("retry", reconnectDelay).Msg("session failed")
		select {
		case <-ctx.Done():
		case <-time.After(reconnectDelay):
		}
	}
	log.Info().Uint64("received", media.GetBytesReceived()).Uint64("sent", media.GetBytesSent()).Msg("exit")
}

// run reads records until the port fails or ctx is done.
// Console lines are written to the device by a separate goroutine.
func run(ctx context.Context, media *gxthermo.GXThermo, lines <-chan string, log zerolog.Logger) error {
	if err := media.Open(); err != nil {
		return err
	}
	defer func() {
		if err := media.Close(); err != nil {
			log.Error().Err(err).Msg("close failed")
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			rec, err := media.ReadNext(ctx)
			switch {
			case err == nil:
				log.Info().
					Str("kind", rec.Kind().String()).
					Str("source", fmt.Sprintf("0x%08x", rec.SourceID())).
					Float32("value", rec.Value()).
					Str("unit", rec.Kind().Unit()).
					Msg("record")
			case gxthermo.IsRetryable(err):
				log.Debug().Err(err).Msg("no record")
			default:
				return err
			}
		}
	})
	if lines != nil {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case line, ok := <-lines:
					if !ok {
						return nil
					}
					if err := media.Send(line); err != nil {
						return err
					}
				}
			}
		})
	}
	return g.Wait()
}

// readLines forwards non-empty lines from r. "/quit" calls stop.
func readLines(r io.Reader, stop context.CancelFunc) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "/quit" {
				stop()
				return
			}
			if line != "" {
				ch <- line
			}
		}
	}()
	return ch
}
