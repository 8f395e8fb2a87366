package core

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/encodeous/dvrouter/state"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(t *testing.T) *Router {
	cfg := state.DefaultNodeCfg()
	cfg.Port = 5000
	cfg.Network = "10.0.0.0/24"
	cfg.Neighbours = state.Neighbours{"127.0.0.1:5001": 1}

	ctx, cancel := context.WithCancelCause(context.Background())
	s := &state.State{
		Modules: make(map[string]state.NyModule),
		Env: &state.Env{
			NodeCfg: cfg,
			Context: ctx,
			Cancel:  cancel,
			Log:     discardLog(),
		},
	}
	r := &Router{Sender: newRecordingSender()}
	assert.NoError(t, r.Init(s))
	t.Cleanup(func() {
		cancel(context.Canceled)
		s.Wait()
	})
	return r
}

func serve(r *Router, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	NewHandler(r).ServeHTTP(rec, req)
	return rec
}

func TestReceiveUpdate_Success(t *testing.T) {
	r := newTestRouter(t)
	rec := serve(r, http.MethodPost, "/receive_update", `{
		"sender_address": "127.0.0.1:5001",
		"routing_table": {
			"10.0.1.0/24": {"cost": 0, "next_hop": "127.0.0.1:5001"},
			"10.0.2.0/24": {"cost": 2, "next_hop": "127.0.0.1:5003"}
		}
	}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "success", "message": "Update received"}`, rec.Body.String())

	snap := r.Table.Snapshot()
	assert.Equal(t, state.Route{Cost: 1, NextHop: "127.0.0.1:5001"}, snap["10.0.1.0/24"])
	assert.Equal(t, state.Route{Cost: 3, NextHop: "127.0.0.1:5001"}, snap["10.0.2.0/24"])

	assert.True(t, r.Inspect().Liveness["127.0.0.1:5001"].Alive)
}

func TestReceiveUpdate_UnknownSender(t *testing.T) {
	r := newTestRouter(t)
	before := r.Table.Snapshot()
	rec := serve(r, http.MethodPost, "/receive_update", `{
		"sender_address": "127.0.0.1:9999",
		"routing_table": {"10.0.1.0/24": {"cost": 0, "next_hop": "127.0.0.1:9999"}}
	}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ignored"}`, rec.Body.String())
	assert.Equal(t, before, r.Table.Snapshot())
}

func TestReceiveUpdate_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"sender_address": `},
		{"missing sender", `{"routing_table": {}}`},
		{"missing table", `{"sender_address": "127.0.0.1:5001"}`},
		{"wrong types", `{"sender_address": 5, "routing_table": []}`},
		{"negative cost", `{"sender_address": "127.0.0.1:5001", "routing_table": {"10.0.1.0/24": {"cost": -1}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t)
			before := r.Table.Snapshot()
			rec := serve(r, http.MethodPost, "/receive_update", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var res errorResponse
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.NotEmpty(t, res.Error)
			assert.Equal(t, before, r.Table.Snapshot())
		})
	}
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t)
	rec := serve(r, http.MethodGet, "/routes", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var ins Inspection
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ins))
	assert.Equal(t, "127.0.0.1:5000", ins.Address)
	assert.Equal(t, "10.0.0.0/24", ins.Network)
	assert.Equal(t, state.DefaultNodeCfg().IntervalSec, ins.UpdateInterval)
	assert.Equal(t, state.Table{
		"10.0.0.0/24":    {Cost: 0, NextHop: "127.0.0.1:5000"},
		"127.0.0.1:5001": {Cost: 1, NextHop: "127.0.0.1:5001"},
	}, ins.RoutingTable)
	assert.False(t, ins.Liveness["127.0.0.1:5001"].Alive)
	assert.Contains(t, ins.String(), "127.0.0.1:5001 cost 1, silent, last heard never")
}

func TestLookupEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := serve(r, http.MethodGet, "/lookup?addr=10.0.0.42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prefix": "10.0.0.0/24", "cost": 0, "next_hop": "127.0.0.1:5000"}`, rec.Body.String())

	rec = serve(r, http.MethodGet, "/lookup?addr=192.168.1.1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(r, http.MethodGet, "/lookup?addr=nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	rec := serve(r, http.MethodGet, "/debug/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPSender(t *testing.T) {
	r := newTestRouter(t)
	srv := httptest.NewServer(NewHandler(r))
	defer srv.Close()

	sender := NewHTTPSender(time.Second)
	addr := strings.TrimPrefix(srv.URL, "http://")

	err := sender.Send(context.Background(), addr, state.Advertisement{
		SenderAddress: "127.0.0.1:5001",
		RoutingTable:  state.Table{"10.0.7.0/24": {Cost: 1, NextHop: "127.0.0.1:5001"}},
	})
	assert.NoError(t, err)
	assert.Equal(t, state.Route{Cost: 2, NextHop: "127.0.0.1:5001"}, r.Table.Snapshot()["10.0.7.0/24"])

	// a rejected advertisement is an error
	err = sender.Send(context.Background(), addr, state.Advertisement{SenderAddress: "127.0.0.1:5001"})
	assert.Error(t, err)
}

func TestHTTPSender_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	addr := strings.TrimPrefix(srv.URL, "http://")
	sender := NewHTTPSender(time.Second)

	err := sender.Send(context.Background(), addr, state.Advertisement{SenderAddress: "x:1", RoutingTable: state.Table{}})
	assert.ErrorContains(t, err, "rejected update")

	srv.Close()
	err = sender.Send(context.Background(), addr, state.Advertisement{SenderAddress: "x:1", RoutingTable: state.Table{}})
	assert.Error(t, err)
}
