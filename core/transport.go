package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/encodeous/dvrouter/perf"
	"github.com/encodeous/dvrouter/state"
	"github.com/labstack/echo/v4"
)

// HTTPSender posts advertisements to http://<neighbour>/receive_update
type HTTPSender struct {
	Client *http.Client
}

func NewHTTPSender(timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		Client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPSender) Send(ctx context.Context, neighbour string, adv state.Advertisement) error {
	body, err := json.Marshal(adv)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("http://%s/receive_update", neighbour)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post update to %s: %w", neighbour, err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("neighbour %s rejected update: %s", neighbour, res.Status)
	}
	return nil
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type lookupResponse struct {
	Prefix  string `json:"prefix"`
	Cost    int    `json:"cost"`
	NextHop string `json:"next_hop"`
}

// NewHandler builds the HTTP API of a router
func NewHandler(r *Router) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.POST("/receive_update", func(c echo.Context) error {
		var adv state.Advertisement
		if err := c.Bind(&adv); err != nil {
			perf.AdvertisementsRejected.Add(1)
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		}
		_, err := r.Processor.Process(adv)
		switch {
		case errors.Is(err, state.ErrUnknownSender):
			return c.JSON(http.StatusOK, statusResponse{Status: Ignored.String()})
		case errors.Is(err, state.ErrMalformedAdvertisement):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case err != nil:
			return err
		}
		return c.JSON(http.StatusOK, statusResponse{Status: Applied.String(), Message: "Update received"})
	})

	e.GET("/routes", func(c echo.Context) error {
		return c.JSON(http.StatusOK, r.Inspect())
	})

	e.GET("/lookup", func(c echo.Context) error {
		addr, err := netip.ParseAddr(c.QueryParam("addr"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		prefix, route, ok := r.Table.Lookup(addr)
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: fmt.Sprintf("no route to %s", addr)})
		}
		return c.JSON(http.StatusOK, lookupResponse{
			Prefix:  prefix.String(),
			Cost:    route.Cost,
			NextHop: route.NextHop,
		})
	})

	e.GET("/debug/metrics", echo.WrapHandler(perf.Handler()))
	return e
}

// Transport serves the router's HTTP API on the node's port
type Transport struct {
	*state.State
	echo *echo.Echo
}

func (t *Transport) Init(s *state.State) error {
	s.Log.Debug("init transport")
	t.State = s
	t.echo = NewHandler(Get[*Router](s))

	ln, err := net.Listen("tcp", net.JoinHostPort(s.ListenHost, fmt.Sprint(s.Port)))
	if err != nil {
		return fmt.Errorf("failed to listen for updates: %w", err)
	}
	t.echo.Listener = ln
	s.Log.Info("listening for updates", "addr", ln.Addr().String())

	go func() {
		err := t.echo.Start("")
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Cancel(fmt.Errorf("update server failed: %w", err))
		}
	}()
	return nil
}

func (t *Transport) Cleanup(s *state.State) error {
	if t.echo == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), state.ShutdownTimeout)
	defer cancel()
	return t.echo.Shutdown(ctx)
}
