// Package handlers streams hover state to the frontend over a WebSocket,
// one connection per rendered chart instance.
//
// The client opens the socket, sends an init message naming the chart it
// rendered, then streams pointer moves. The server resolves each move
// against the chart's series and pushes hover frames back; a leave (or
// the socket closing) clears the tooltip.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/prismdash/prism/internal/domain"
	"github.com/prismdash/prism/internal/modules/charts"
	"github.com/prismdash/prism/internal/modules/hover"
)

const (
	writeWait    = 10 * time.Second
	outboundSize = 64
)

// inboundMessage is the single envelope for every client message. It is
// decoded exactly once; the type tag decides which fields matter.
type inboundMessage struct {
	Type    string  `json:"type"`
	Chart   string  `json:"chart"`
	Account string  `json:"account"`
	Period  string  `json:"period"`
	Metric  string  `json:"metric"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	X       float64 `json:"x"`
}

// hoverEvent is the outbound frame for a resolved hover.
type hoverEvent struct {
	Type    string                 `json:"type"`
	Index   int                    `json:"index"`
	X       float64                `json:"x"`
	Y       float64                `json:"y"`
	Payload map[string]interface{} `json:"payload"`
}

// Handler upgrades hover connections and bridges them to hover sessions.
type Handler struct {
	service       *charts.Service
	dims          charts.Dimensions
	frameInterval time.Duration
	log           zerolog.Logger
}

// NewHandler creates a new hover handler
func NewHandler(service *charts.Service, dims charts.Dimensions, frameInterval time.Duration, log zerolog.Logger) *Handler {
	if frameInterval <= 0 {
		frameInterval = hover.DefaultFrameInterval
	}
	return &Handler{
		service:       service,
		dims:          dims,
		frameInterval: frameInterval,
		log:           log.With().Str("handler", "hover").Logger(),
	}
}

// HandleHoverSocket upgrades the connection and runs the message loop
// until the client disconnects.
func (h *Handler) HandleHoverSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	connID := uuid.New().String()
	log := h.log.With().Str("conn", connID).Logger()
	log.Debug().Msg("Hover connection opened")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// All writes go through one goroutine; session callbacks only ever
	// touch the outbound channel.
	outbound := make(chan []byte, outboundSize)
	go writeLoop(ctx, conn, outbound, log)

	var session *hover.Session
	defer func() {
		if session != nil {
			session.PointerLeave()
		}
		conn.Close(websocket.StatusNormalClosure, "")
		log.Debug().Msg("Hover connection closed")
	}()

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				log.Debug().Msg("Hover connection closed by client")
			} else if ctx.Err() == nil {
				log.Warn().Err(err).Msg("Hover read failed")
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Msg("Malformed hover message")
			continue
		}

		switch msg.Type {
		case "init":
			next, points, err := h.newSession(msg, outbound, log)
			if err != nil {
				log.Warn().Err(err).Str("chart", msg.Chart).Msg("Hover init failed")
				send(outbound, map[string]interface{}{"type": "error", "message": err.Error()})
				continue
			}
			if session != nil {
				// Re-init on a live socket: clear the old tooltip first
				session.PointerLeave()
			}
			session = next
			send(outbound, map[string]interface{}{"type": "ready", "chart": msg.Chart, "points": points})

		case "move":
			if session == nil {
				continue
			}
			session.PointerMove(msg.X)

		case "leave":
			if session == nil {
				continue
			}
			session.PointerLeave()

		default:
			log.Warn().Str("type", msg.Type).Msg("Ignoring unknown hover message")
		}
	}
}

// newSession loads the chart named by an init message and builds a hover
// session bound to the connection's outbound channel.
func (h *Handler) newSession(msg inboundMessage, outbound chan []byte, log zerolog.Logger) (*hover.Session, int, error) {
	if msg.Account == "" {
		return nil, 0, fmt.Errorf("account is required")
	}

	values, payload, err := h.chartData(msg)
	if err != nil {
		return nil, 0, err
	}

	width := msg.Width
	if width <= 0 {
		width = h.dims.Width
	}
	height := msg.Height
	if height <= 0 {
		height = h.dims.Height
	}

	session := hover.NewSession(hover.SessionConfig{
		Values:    values,
		Width:     width,
		Height:    height,
		Padding:   h.dims.Padding,
		Scheduler: hover.NewTimerScheduler(h.frameInterval),
		Payload:   payload,
		OnHover: func(state domain.HoverState) {
			send(outbound, hoverEvent{
				Type:    "hover",
				Index:   state.Index,
				X:       state.X,
				Y:       state.Y,
				Payload: state.Payload,
			})
		},
		OnClear: func() {
			send(outbound, map[string]interface{}{"type": "clear"})
		},
		Log: log,
	})

	return session, len(values), nil
}

// chartData fetches the series for the requested chart type and pairs it
// with the matching payload builder.
func (h *Handler) chartData(msg inboundMessage) ([]float64, hover.PayloadFunc, error) {
	switch msg.Chart {
	case "portfolio":
		chart, err := h.service.GetPortfolioChart(msg.Account, msg.Period, charts.Options{})
		if err != nil {
			return nil, nil, err
		}
		values := make([]float64, len(chart.Points))
		for i, p := range chart.Points {
			values[i] = p.Value
		}
		return values, hover.PortfolioPayload(chart.Points), nil

	case "drawdown":
		chart, err := h.service.GetDrawdownChart(msg.Account, msg.Period)
		if err != nil {
			return nil, nil, err
		}
		values := make([]float64, len(chart.Points))
		for i, p := range chart.Points {
			values[i] = p.Drawdown
		}
		return values, hover.DrawdownPayload(chart.Points), nil

	case "allocation":
		chart, err := h.service.GetAllocationChart(msg.Account, msg.Period)
		if err != nil {
			return nil, nil, err
		}
		values := make([]float64, len(chart.Points))
		for i, p := range chart.Points {
			values[i] = p.Total()
		}
		return values, hover.AllocationPayload(chart.Points), nil

	case "metric":
		metric, err := domain.ParseMetric(msg.Metric)
		if err != nil {
			return nil, nil, err
		}
		chart, err := h.service.GetMetricChart(msg.Account, metric, msg.Period)
		if err != nil {
			return nil, nil, err
		}
		values := make([]float64, len(chart.Points))
		for i, p := range chart.Points {
			values[i] = p.Value
		}
		return values, hover.MetricPayload(metric, chart.Points), nil
	}

	return nil, nil, fmt.Errorf("unknown chart type: %s", msg.Chart)
}

// writeLoop owns all writes to the connection.
func writeLoop(ctx context.Context, conn *websocket.Conn, outbound <-chan []byte, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-outbound:
			writeCtx, cancelWrite := context.WithTimeout(ctx, writeWait)
			err := conn.Write(writeCtx, websocket.MessageText, data)
			cancelWrite()
			if err != nil {
				if ctx.Err() == nil {
					log.Debug().Err(err).Msg("Hover write failed")
				}
				return
			}
		}
	}
}

// send never blocks. A client too slow to drain the buffer loses hover
// frames, not the connection.
func send(outbound chan []byte, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case outbound <- data:
	default:
	}
}
