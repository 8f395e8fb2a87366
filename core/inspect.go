package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/encodeous/dvrouter/state"
)

// InspectGet fetches the diagnostic view of the node listening on addr
func InspectGet(addr string) (*Inspection, error) {
	client := &http.Client{Timeout: state.SendTimeout}
	res, err := client.Get(fmt.Sprintf("http://%s/routes", addr))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s responded %s", addr, res.Status)
	}
	ins := &Inspection{}
	if err := json.NewDecoder(res.Body).Decode(ins); err != nil {
		return nil, fmt.Errorf("failed to decode inspection from %s: %w", addr, err)
	}
	return ins, nil
}

func (i *Inspection) String() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Node %s\n", i.Address))
	sb.WriteString(fmt.Sprintf("   Network: %s\n", i.Network))
	sb.WriteString(fmt.Sprintf("   Interval: %ds, summarize: %t\n", i.UpdateInterval, i.Summarize))

	sb.WriteString("\nNeighbours:\n")
	rt := make([]string, 0)
	for _, addr := range i.Neighbours.Addresses() {
		nl := i.Liveness[addr]
		heard := "never"
		if nl.LastHeard != nil {
			heard = fmt.Sprintf("%.2fs ago", time.Since(*nl.LastHeard).Seconds())
		}
		status := "silent"
		if nl.Alive {
			status = "alive"
		}
		rt = append(rt, fmt.Sprintf(" - %s cost %d, %s, last heard %s", addr, i.Neighbours[addr], status, heard))
	}
	if len(rt) == 0 {
		rt = append(rt, "   (none)")
	}
	sb.WriteString(strings.Join(rt, "\n") + "\n")

	sb.WriteString("\nRoute Table:\n")
	rt = make([]string, 0)
	for dst, route := range i.RoutingTable {
		rt = append(rt, fmt.Sprintf(" - %s via %s", dst, route))
	}
	slices.Sort(rt)
	sb.WriteString(strings.Join(rt, "\n") + "\n")
	return sb.String()
}
