package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Gagan-341/NeuraSentinel/pkg/logger"
	"github.com/Gagan-341/NeuraSentinel/pkg/metrics"
)

const udpBufferSize = 512

// UDPOption configures a UDP source.
type UDPOption func(*UDP)

// WithUDPClock overrides time.Now for sources without a device clock.
func WithUDPClock(now func() time.Time) UDPOption {
	return func(u *UDP) {
		u.stamp = newStamper(now)
	}
}

// UDP receives JSON datagrams or binary frames from a sensor on the LAN and
// answers discovery probes.
type UDP struct {
	addr   string
	stamp  *stamper
	logger logger.Logger

	mu     sync.Mutex
	conn   net.PacketConn
	device net.Addr
	ready  chan struct{}
}

// NewUDP creates a source listening on addr, e.g. ":4210".
func NewUDP(addr string, opts ...UDPOption) *UDP {
	u := &UDP{
		addr:   addr,
		stamp:  newStamper(nil),
		logger: logger.Get().Named("source.udp"),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Name implements Source.
func (u *UDP) Name() string { return "udp" }

// LocalAddr blocks until the socket is bound and returns its address.
func (u *UDP) LocalAddr(ctx context.Context) (net.Addr, error) {
	select {
	case <-u.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn == nil {
		return nil, errors.New("udp source not listening")
	}
	return u.conn.LocalAddr(), nil
}

// Run listens until ctx is done.
func (u *UDP) Run(ctx context.Context, push PushFunc) error {
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", u.addr)
	if err != nil {
		close(u.ready)
		return fmt.Errorf("listen udp %s: %w", u.addr, err)
	}
	u.mu.Lock()
	u.conn = conn
	u.mu.Unlock()
	close(u.ready)

	u.logger.Info(ctx, "udp source listening", logger.String("addr", conn.LocalAddr().String()))

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	buf := make([]byte, udpBufferSize)
	for {
		n, src, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			u.logger.Warn(ctx, "udp read failed", logger.Error(err))
			continue
		}
		if err := u.handle(ctx, conn, buf[:n], src, push); err != nil {
			metrics.RecordMalformedInput(u.Name())
			u.logger.Debug(ctx, "dropping datagram", logger.Error(err), logger.Int("bytes", n))
		}
	}
}

func (u *UDP) handle(ctx context.Context, conn net.PacketConn, b []byte, src net.Addr, push PushFunc) error {
	if len(b) == FrameSize && b[0] != '{' {
		f, err := DecodeFrame(b)
		if err != nil {
			return err
		}
		s, device := f.Sample()
		u.stamp.stamp(&s, device, true)
		u.remember(src)
		metrics.RecordSampleIngested(u.Name())
		push(s)
		return nil
	}

	p, err := DecodeJSON(b)
	if err != nil {
		return err
	}
	switch p.Type {
	case PacketDiscover:
		u.remember(src)
		if _, err := conn.WriteTo([]byte(`{"type":"`+PacketAck+`"}`), src); err != nil {
			u.logger.Warn(ctx, "discovery ack failed", logger.Error(err))
		} else {
			u.logger.Info(ctx, "discovery ack sent", logger.String("device", src.String()))
		}
	case PacketData:
		s, device, ok, err := p.Sample()
		if err != nil {
			return err
		}
		u.stamp.stamp(&s, device, ok)
		u.remember(src)
		metrics.RecordSampleIngested(u.Name())
		push(s)
	case PacketSessionResetAck:
		u.logger.Info(ctx, "device acknowledged session reset")
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPacket, p.Type)
	}
	return nil
}

func (u *UDP) remember(src net.Addr) {
	u.mu.Lock()
	u.device = src
	u.mu.Unlock()
}

// Reset implements Source. It restarts the local clock and asks the device
// to restart its own.
func (u *UDP) Reset(ctx context.Context) error {
	u.stamp.reset()
	return u.ResetDevice(ctx)
}

// ResetDevice asks the last seen device to restart its session clock.
// It is a no-op until a device has been heard from.
func (u *UDP) ResetDevice(context.Context) error {
	u.mu.Lock()
	conn, device := u.conn, u.device
	u.mu.Unlock()
	if conn == nil || device == nil {
		return nil
	}
	if _, err := conn.WriteTo([]byte(`{"type":"`+PacketSessionReset+`"}`), device); err != nil {
		return fmt.Errorf("send session reset: %w", err)
	}
	return nil
}
