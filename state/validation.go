package state

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

func AddressValidator(s string) error {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return err
	}
	if host == "" {
		return fmt.Errorf("%s is missing a host", s)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("%s has an invalid port", s)
	}
	return nil
}

func NetworkValidator(s string) error {
	_, err := netip.ParsePrefix(s)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidNetwork, s, err)
	}
	return nil
}

// CostValidator checks a direct link cost. Only the administered network may have cost 0.
func CostValidator(cost int) error {
	if cost < 1 || cost > Infinity {
		return fmt.Errorf("link cost %d must be between 1 and %d", cost, Infinity)
	}
	return nil
}

func NodeConfigValidator(node *NodeCfg) error {
	self := node.Address()
	if err := AddressValidator(self); err != nil {
		return fmt.Errorf("node address: %w", err)
	}
	if err := NetworkValidator(node.Network); err != nil {
		return err
	}
	if node.IntervalSec < 1 {
		return fmt.Errorf("interval must be at least 1 second, got %d", node.IntervalSec)
	}
	for _, addr := range node.Neighbours.Addresses() {
		if err := AddressValidator(addr); err != nil {
			return fmt.Errorf("neighbour %s: %w", addr, err)
		}
		if addr == self {
			return fmt.Errorf("node %s cannot be its own neighbour", addr)
		}
		if err := CostValidator(node.Neighbours[addr]); err != nil {
			return fmt.Errorf("neighbour %s: %w", addr, err)
		}
	}
	return nil
}
