package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Gagan-341/NeuraSentinel/pkg/logger"
	"github.com/Gagan-341/NeuraSentinel/pkg/metrics"
	"go.bug.st/serial"
)

// DefaultBaudRate is the firmware's serial speed.
const DefaultBaudRate = 115200

// Port is the minimal serial port surface.
type Port interface {
	io.ReadWriter
	io.Closer
}

// OpenSerial opens a real serial port in 8N1 mode.
func OpenSerial(path string, baud int) (Port, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", path, err)
	}
	return port, nil
}

// SerialOption configures a Serial source.
type SerialOption func(*Serial)

// WithSerialClock overrides time.Now for lines without a timestamp.
func WithSerialClock(now func() time.Time) SerialOption {
	return func(s *Serial) {
		s.stamp = newStamper(now)
	}
}

// Serial reads newline-delimited CSV samples from a port.
type Serial struct {
	port   Port
	stamp  *stamper
	logger logger.Logger
}

// NewSerial wraps an open port.
func NewSerial(port Port, opts ...SerialOption) *Serial {
	s := &Serial{
		port:   port,
		stamp:  newStamper(nil),
		logger: logger.Get().Named("source.serial"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Source.
func (s *Serial) Name() string { return "serial" }

// Reset implements Source.
func (s *Serial) Reset(context.Context) error {
	s.stamp.reset()
	return nil
}

// Run reads lines until EOF, a read error, or ctx is done. The port is
// closed on return.
func (s *Serial) Run(ctx context.Context, push PushFunc) error {
	stop := context.AfterFunc(ctx, func() { _ = s.port.Close() })
	defer stop()
	defer s.port.Close()

	sc := bufio.NewScanner(s.port)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || isHeader(line) {
			continue
		}
		sample, t, ok, err := ParseLine(line)
		if err != nil {
			metrics.RecordMalformedInput(s.Name())
			s.logger.Debug(ctx, "dropping line", logger.String("line", line), logger.Error(err))
			continue
		}
		s.stamp.stamp(&sample, t, ok)
		metrics.RecordSampleIngested(s.Name())
		push(sample)
	}

	if ctx.Err() != nil {
		return nil
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read serial: %w", err)
	}
	return nil
}
