package net

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_playboard._tcp"

// Advertise announces a live-share host on the local network.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("net: hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, []string{"PlayBoard"})
	if err != nil {
		return nil, fmt.Errorf("net: mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("net: mdns server: %w", err)
	}
	return server, nil
}

// Browse looks for hosts for up to timeout and calls found with each
// host:port address it sees.
func Browse(ctx context.Context, timeout time.Duration, found func(addr string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port))
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		params.Timeout = time.Until(deadline)
	}

	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return fmt.Errorf("net: browse: %w", err)
	}
	return nil
}
