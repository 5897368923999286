// Package discovery locates the image processing service on the local
// network over multicast DNS.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service the processing backend advertises.
const ServiceType = "_inpaint._tcp"

// DefaultTimeout bounds a browse when the caller passes zero.
const DefaultTimeout = 3 * time.Second

// ErrNotFound is returned when no service answered before the timeout.
var ErrNotFound = errors.New("no processing service found on the local network")

// Browse queries the local network for service and returns the base URL
// ("http://ip:port") of the first usable answer.
func Browse(ctx context.Context, service string, timeout time.Duration) (string, error) {
	if service == "" {
		service = ServiceType
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	entries := make(chan *mdns.ServiceEntry, 8)
	params := mdns.DefaultParams(service)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	done := make(chan error, 1)
	go func() {
		done <- mdns.Query(params)
	}()

	for {
		select {
		case e := <-entries:
			if url, ok := endpointFromEntry(e); ok {
				return url, nil
			}
		case err := <-done:
			if err != nil {
				return "", fmt.Errorf("mdns query failed: %w", err)
			}
			// Query has returned; drain anything it delivered last.
			for {
				select {
				case e := <-entries:
					if url, ok := endpointFromEntry(e); ok {
						return url, nil
					}
				default:
					return "", ErrNotFound
				}
			}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// endpointFromEntry turns a service answer into a base URL. Answers
// without an IPv4 address or port are unusable.
func endpointFromEntry(e *mdns.ServiceEntry) (string, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return "", false
	}
	return "http://" + net.JoinHostPort(e.AddrV4.String(), strconv.Itoa(e.Port)), true
}
