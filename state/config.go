package state

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// NodeCfg represents the configuration of a single router node
type NodeCfg struct {
	Host           string     `yaml:"host,omitempty"`            // host other nodes reach us by, defaults to DefaultHost
	ListenHost     string     `yaml:"listen_host,omitempty"`     // interface the update endpoint binds to, defaults to all interfaces
	Port           uint16     `yaml:"port"`                      // port the update endpoint listens on
	Network        string     `yaml:"network"`                   // the network administered by this router, in CIDR form
	Neighbours     Neighbours `yaml:"neighbours,omitempty"`      // neighbour address -> link cost
	NeighboursFile string     `yaml:"neighbours_file,omitempty"` // csv file with additional neighbours, relative to the config file
	IntervalSec    int        `yaml:"interval,omitempty"`        // advertisement interval in seconds
	Summarize      bool       `yaml:"summarize"`                 // aggregate advertised prefixes
	LogPath        string     `yaml:"log_path,omitempty"`        // if not empty, logs are also written to this file
}

func DefaultNodeCfg() NodeCfg {
	return NodeCfg{
		Host:        DefaultHost,
		ListenHost:  DefaultListenHost,
		Port:        uint16(DefaultPort),
		Neighbours:  make(Neighbours),
		IntervalSec: int(DefaultInterval / time.Second),
		Summarize:   true,
	}
}

// Address is the host:port neighbours use to reach this node, and the next hop of its own network.
func (c *NodeCfg) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}

func (c *NodeCfg) Interval() time.Duration {
	return time.Duration(c.IntervalSec) * time.Second
}

// LoadNodeConfig reads a yaml node config. Neighbours listed in neighbours_file are merged in.
func LoadNodeConfig(path string) (*NodeCfg, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultNodeCfg()
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.Neighbours == nil {
		cfg.Neighbours = make(Neighbours)
	}
	if cfg.NeighboursFile != "" {
		nPath := cfg.NeighboursFile
		if !filepath.IsAbs(nPath) {
			nPath = filepath.Join(filepath.Dir(path), nPath)
		}
		neighs, err := LoadNeighboursCSV(nPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Neighbours.Merge(neighs); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Merge adds the neighbours of other, failing if a neighbour is defined twice with different costs
func (n Neighbours) Merge(other Neighbours) error {
	for addr, cost := range other {
		if old, ok := n[addr]; ok && old != cost {
			return fmt.Errorf("neighbour %s defined with conflicting costs %d and %d", addr, old, cost)
		}
		n[addr] = cost
	}
	return nil
}

var (
	neighbourColumns = []string{"vizinho", "neighbor", "neighbour", "address"}
	costColumns      = []string{"custo", "cost"}
)

func LoadNeighboursCSV(path string) (Neighbours, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open neighbour file: %w", err)
	}
	defer f.Close()
	neighs, err := ParseNeighboursCSV(f)
	if err != nil {
		return nil, fmt.Errorf("invalid neighbour file %s: %w", path, err)
	}
	return neighs, nil
}

// ParseNeighboursCSV reads a csv with a header row naming a neighbour column and a cost column.
func ParseNeighboursCSV(r io.Reader) (Neighbours, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, err
	}
	addrIdx, costIdx := -1, -1
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(col))
		for _, c := range neighbourColumns {
			if col == c {
				addrIdx = i
			}
		}
		for _, c := range costColumns {
			if col == c {
				costIdx = i
			}
		}
	}
	if addrIdx == -1 || costIdx == -1 {
		return nil, fmt.Errorf("header %v must contain a neighbour column and a cost column", header)
	}

	neighs := make(Neighbours)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		addr := strings.TrimSpace(row[addrIdx])
		cost, err := strconv.Atoi(strings.TrimSpace(row[costIdx]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid cost %q", line, row[costIdx])
		}
		if _, ok := neighs[addr]; ok {
			return nil, fmt.Errorf("line %d: duplicate neighbour %s", line, addr)
		}
		neighs[addr] = cost
	}
	return neighs, nil
}
