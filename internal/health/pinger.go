package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// protocolICMP is the IANA protocol number of ICMP for IPv4.
const protocolICMP = 1

const defaultPingTimeout = 2 * time.Second

// Pinger sends one echo request and reports the round-trip time.
type Pinger interface {
	Ping(ctx context.Context, host string) (time.Duration, error)
}

// ICMPPinger pings with a single ICMP echo. It prefers an unprivileged
// datagram socket (Linux ping_group_range, macOS) and falls back to a raw
// socket, which needs CAP_NET_RAW.
type ICMPPinger struct {
	Timeout time.Duration
	seq     atomic.Uint32
}

var _ Pinger = (*ICMPPinger)(nil)

func (p *ICMPPinger) Ping(ctx context.Context, host string) (time.Duration, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	addr, err := net.ResolveIPAddr("ip4", host)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", host, err)
	}

	conn, privileged, err := listenICMP()
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return 0, fmt.Errorf("set deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	id := os.Getpid() & 0xffff
	seq := int(p.seq.Add(1) & 0xffff)
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Body: &icmp.Echo{ID: id, Seq: seq, Data: []byte("cmm-health")},
	}
	wire, err := msg.Marshal(nil)
	if err != nil {
		return 0, fmt.Errorf("marshal echo: %w", err)
	}

	var dst net.Addr = &net.UDPAddr{IP: addr.IP}
	if privileged {
		dst = addr
	}

	start := time.Now()
	if _, err := conn.WriteTo(wire, dst); err != nil {
		return 0, fmt.Errorf("send echo to %s: %w", host, err)
	}

	buf := make([]byte, 1500)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			return 0, fmt.Errorf("wait for echo reply from %s: %w", host, err)
		}
		reply, err := icmp.ParseMessage(protocolICMP, buf[:n])
		if err != nil || reply.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := reply.Body.(*icmp.Echo)
		if !ok || echo.Seq != seq {
			continue
		}
		// The kernel rewrites the ID of unprivileged echoes.
		if privileged && echo.ID != id {
			continue
		}
		return time.Since(start), nil
	}
}

func listenICMP() (conn *icmp.PacketConn, privileged bool, err error) {
	conn, udpErr := icmp.ListenPacket("udp4", "0.0.0.0")
	if udpErr == nil {
		return conn, false, nil
	}
	conn, rawErr := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if rawErr == nil {
		return conn, true, nil
	}
	return nil, false, fmt.Errorf("open icmp socket: %w", errors.Join(udpErr, rawErr))
}
