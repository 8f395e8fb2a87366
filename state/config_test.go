package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseNeighboursCSV(t *testing.T) {
	input := `vizinho,custo
127.0.0.1:5001,1
127.0.0.1:5002, 5
`
	neighs, err := ParseNeighboursCSV(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Equal(t, Neighbours{
		"127.0.0.1:5001": 1,
		"127.0.0.1:5002": 5,
	}, neighs)
}

func TestParseNeighboursCSV_EnglishHeaderReordered(t *testing.T) {
	input := `Cost,Neighbor
2,10.0.0.2:5000
`
	neighs, err := ParseNeighboursCSV(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Equal(t, Neighbours{"10.0.0.2:5000": 2}, neighs)
}

func TestParseNeighboursCSV_HeaderOnly(t *testing.T) {
	neighs, err := ParseNeighboursCSV(strings.NewReader("vizinho,custo\n"))
	assert.NoError(t, err)
	assert.Empty(t, neighs)
}

func TestParseNeighboursCSV_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty", "", "missing header row"},
		{"no cost column", "vizinho,peso\n127.0.0.1:5001,1\n", "must contain"},
		{"no neighbour column", "host,custo\n127.0.0.1:5001,1\n", "must contain"},
		{"bad cost", "vizinho,custo\n127.0.0.1:5001,1\n127.0.0.1:5002,abc\n", "line 3"},
		{"duplicate", "vizinho,custo\n127.0.0.1:5001,1\n127.0.0.1:5001,2\n", "duplicate neighbour"},
		{"ragged row", "vizinho,custo\n127.0.0.1:5001\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNeighboursCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
			if tt.msg != "" {
				assert.ErrorContains(t, err, tt.msg)
			}
		})
	}
}

func TestNeighboursMerge(t *testing.T) {
	n := Neighbours{"a:1": 1}
	assert.NoError(t, n.Merge(Neighbours{"a:1": 1, "b:1": 3}))
	assert.Equal(t, Neighbours{"a:1": 1, "b:1": 3}, n)

	assert.Error(t, n.Merge(Neighbours{"a:1": 2}))
}

func writeFile(t *testing.T, dir, name, content string) string {
	p := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(p, []byte(content), 0600))
	return p
}

func TestLoadNodeConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "neighbours.csv", "vizinho,custo\n127.0.0.1:5003,7\n")
	path := writeFile(t, dir, "node.yaml", `port: 5001
network: 10.0.1.0/24
interval: 2
summarize: false
neighbours:
  "127.0.0.1:5002": 1
neighbours_file: neighbours.csv
`)

	cfg, err := LoadNodeConfig(path)
	assert.NoError(t, err)

	expected := DefaultNodeCfg()
	expected.Port = 5001
	expected.Network = "10.0.1.0/24"
	expected.IntervalSec = 2
	expected.Summarize = false
	expected.NeighboursFile = "neighbours.csv"
	expected.Neighbours = Neighbours{
		"127.0.0.1:5002": 1,
		"127.0.0.1:5003": 7,
	}
	if diff := cmp.Diff(expected, *cfg); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
	assert.NoError(t, NodeConfigValidator(cfg))
	assert.Equal(t, "127.0.0.1:5001", cfg.Address())
}

func TestLoadNodeConfig_ConflictingNeighbourFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "neighbours.csv", "vizinho,custo\n127.0.0.1:5002,3\n")
	path := writeFile(t, dir, "node.yaml", `port: 5001
network: 10.0.1.0/24
neighbours:
  "127.0.0.1:5002": 1
neighbours_file: neighbours.csv
`)
	_, err := LoadNodeConfig(path)
	assert.ErrorContains(t, err, "conflicting costs")
}

func TestLoadNodeConfig_Missing(t *testing.T) {
	_, err := LoadNodeConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadNeighboursCSV_Missing(t *testing.T) {
	_, err := LoadNeighboursCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
