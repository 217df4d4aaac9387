// Package netlink brings up the Pico W's WiFi, leases an address and keeps
// the watch clock in sync over NTP.
//
// It wraps a CYW43439 device and a lneto StackAsync. The stack must be
// serviced continuously: start Link.Serve in its own goroutine once Up
// returns.
package netlink

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"runtime"
	"time"

	"github.com/soypat/cyw43439"
	"github.com/soypat/lneto/x/xnet"
)

const (
	mtu      = cyw43439.MTU
	pollTime = 50 * time.Millisecond
)

// Config describes how to join the network.
type Config struct {
	SSID     string
	Password string // empty joins an open network
	Hostname string
	// RequestedAddr is asked for over DHCP and used as a static address
	// if DHCP does not complete.
	RequestedAddr netip.Addr
	MaxTCPPorts   int
	Logger        *slog.Logger
}

// Link is a joined WiFi network with a configured IP stack.
type Link struct {
	s       xnet.StackAsync
	dev     *cyw43439.Device
	log     *slog.Logger
	sendbuf []byte
}

// Up initializes the radio, joins cfg.SSID (retrying until it succeeds) and
// prepares the stack. Call Serve in a goroutine, then Lease.
func Up(cfg Config) (*Link, error) {
	if cfg.Hostname == "" {
		return nil, errors.New("empty hostname")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	start := time.Now()
	dev := cyw43439.NewPicoWDevice()
	dev.SetLogger(logger)
	if err := dev.Init(cyw43439.DefaultWifiConfig()); err != nil {
		return nil, errors.New("wifi init:" + err.Error())
	}
	logger.Info("netlink:radio-up", slog.Duration("duration", time.Since(start)))

	for {
		err := dev.JoinWPA2(cfg.SSID, cfg.Password)
		if err == nil {
			break
		}
		logger.Error("netlink:join-failed", slog.String("ssid", cfg.SSID), slog.String("err", err.Error()))
		time.Sleep(5 * time.Second)
	}

	mac, err := dev.HardwareAddr6()
	if err != nil {
		return nil, errors.New("hardware address:" + err.Error())
	}
	logger.Info("netlink:joined", slog.String("ssid", cfg.SSID), slog.String("mac", net.HardwareAddr(mac[:]).String()))

	l := &Link{
		dev:     dev,
		log:     logger,
		sendbuf: make([]byte, mtu),
	}
	maxTCP := cfg.MaxTCPPorts
	if maxTCP < 1 {
		maxTCP = 1
	}
	err = l.s.Reset(xnet.StackConfig{
		Hostname:        cfg.Hostname,
		MaxTCPConns:     maxTCP,
		RandSeed:        time.Since(start).Nanoseconds(),
		HardwareAddress: mac,
		MTU:             mtu,
	})
	if err != nil {
		return nil, errors.New("stack reset:" + err.Error())
	}
	dev.RecvEthHandle(func(pkt []byte) error {
		return l.s.Demux(pkt, 0)
	})
	return l, nil
}

// Serve moves packets between the radio and the stack forever.
func (l *Link) Serve() {
	for {
		send, recv, _ := l.exchange()
		if send == 0 && recv == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		runtime.Gosched()
	}
}

// exchange polls one incoming packet and sends one outgoing packet.
func (l *Link) exchange() (send, recv int, err error) {
	gotPacket, errRecv := l.dev.PollOne()
	if gotPacket {
		recv = 1
	}
	if errRecv != nil {
		l.log.Error("netlink:poll", slog.String("err", errRecv.Error()))
	}
	send, err = l.s.Encapsulate(l.sendbuf, -1, 0)
	if err != nil {
		l.log.Error("netlink:encapsulate", slog.Int("plen", send), slog.String("err", err.Error()))
	} else {
		err = errRecv
	}
	if send == 0 {
		return send, recv, err
	}
	if err = l.dev.SendEth(l.sendbuf[:send]); err != nil {
		l.log.Error("netlink:send", slog.Int("plen", send), slog.String("err", err.Error()))
	}
	return send, recv, err
}

// Lease configures an address over DHCP, falling back to the requested
// static address.
func (l *Link) Lease(requested netip.Addr) (netip.Addr, error) {
	if !requested.IsValid() {
		requested = netip.AddrFrom4([4]byte{})
	} else if !requested.Is4() {
		return netip.Addr{}, errors.New("only dhcpv4 supported")
	}
	rstack := l.s.StackRetrying(pollTime)

	l.log.Info("netlink:dhcp-start")
	results, err := rstack.DoDHCPv4(requested.As4(), 3*time.Second, 3)
	if err != nil {
		if !requested.IsUnspecified() {
			l.log.Info("netlink:dhcp-static", slog.String("ip", requested.String()))
			l.s.SetIPAddr(requested)
			return requested, nil
		}
		return netip.Addr{}, errors.New("dhcp:" + err.Error())
	}
	if err = l.s.AssimilateDHCPResults(results); err != nil {
		return netip.Addr{}, errors.New("assimilate dhcp:" + err.Error())
	}
	gatewayHW, err := rstack.DoResolveHardwareAddress6(results.Router, 500*time.Millisecond, 4)
	if err != nil {
		return netip.Addr{}, errors.New("resolve gateway:" + err.Error())
	}
	l.s.SetGateway6(gatewayHW)

	l.log.Info("netlink:dhcp-done",
		slog.String("ip", results.AssignedAddr.String()),
		slog.String("router", results.Router.String()),
		slog.Uint64("lease_sec", uint64(results.TLease)),
	)
	return results.AssignedAddr, nil
}

// Stack returns the lneto stack for TCP connections and DNS lookups.
func (l *Link) Stack() *xnet.StackAsync { return &l.s }
