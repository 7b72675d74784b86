package network

import (
	"context"
	"fmt"

	"github.com/hanbit-systems/netstock/internal/domain/models"
)

// maxHostOctet caps the enumerated range at the usual /24 host space.
const maxHostOctet = 254

// EnumerateHosts returns the candidate host addresses {base}.1 .. {base}.n
// for the gateway's first three octets, with n capped at 254.
func EnumerateHosts(gatewayIP string, hostRange int) ([]string, error) {
	octets, err := models.ParseIPv4(gatewayIP)
	if err != nil {
		return nil, err
	}
	if hostRange > maxHostOctet {
		hostRange = maxHostOctet
	}

	base := fmt.Sprintf("%d.%d.%d", octets[0], octets[1], octets[2])
	hosts := make([]string, 0, hostRange)
	for n := 1; n <= hostRange; n++ {
		hosts = append(hosts, fmt.Sprintf("%s.%d", base, n))
	}
	return hosts, nil
}

// AvailableIPs partitions each configured gateway's candidate addresses
// against the current assignment snapshot and returns the available last
// octets as zero-padded 3-digit strings, keyed by gateway address.
func (s *Service) AvailableIPs(ctx context.Context) (map[string][]string, error) {
	units, err := s.units.List(ctx)
	if err != nil {
		return nil, err
	}

	assigned := make(map[string]struct{}, len(units))
	for _, unit := range units {
		if unit.IP != "" {
			assigned[unit.IP] = struct{}{}
		}
	}

	available := make(map[string][]string, len(s.gateways))
	for _, gw := range s.gateways {
		candidates, err := EnumerateHosts(gw.IP, gw.Range)
		if err != nil {
			return nil, fmt.Errorf("gateway %q: %w", gw.IP, err)
		}

		free := make([]string, 0, len(candidates))
		for i, addr := range candidates {
			if _, taken := assigned[addr]; !taken {
				free = append(free, fmt.Sprintf("%03d", i+1))
			}
		}
		available[gw.IP] = free
	}
	return available, nil
}
