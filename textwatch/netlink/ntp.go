package netlink

import (
	"errors"
	"log/slog"
	"net/netip"
	"runtime"
	"time"
)

// DefaultNTPHost is queried when SyncTime is given an empty host.
const DefaultNTPHost = "pool.ntp.org"

// SyncTime sets the system clock from an NTP server. host may be an IP
// address or a name resolved over DNS.
func (l *Link) SyncTime(host string) error {
	if host == "" {
		host = DefaultNTPHost
	}
	rstack := l.s.StackRetrying(pollTime)

	addr, err := netip.ParseAddr(host)
	if err != nil {
		l.log.Info("ntp:resolving", slog.String("host", host))
		addrs, err := rstack.DoLookupIP(host, 5*time.Second, 3)
		if err != nil {
			return errors.New("ntp dns lookup:" + err.Error())
		}
		if len(addrs) == 0 {
			return errors.New("ntp dns lookup: no addresses returned")
		}
		addr = addrs[0]
	}

	l.log.Info("ntp:request", slog.String("addr", addr.String()))
	offset, err := rstack.DoNTP(addr, 5*time.Second, 3)
	if err != nil {
		return errors.New("ntp:" + err.Error())
	}
	runtime.AdjustTimeOffset(int64(offset))
	l.log.Info("ntp:synced", slog.Duration("offset", offset), slog.Time("now", time.Now()))
	return nil
}
