package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/prismdash/prism/internal/domain"
	"github.com/prismdash/prism/internal/modules/charts"
)

type mockAnalytics struct{}

func (m *mockAnalytics) GetPortfolioHistory(accountID, period string) ([]domain.TimeSeriesPoint, error) {
	return []domain.TimeSeriesPoint{
		{Date: "2024-01-01", Value: 50000},
		{Date: "2024-01-02", Value: 48000},
		{Date: "2024-01-03", Value: 49000},
	}, nil
}

func (m *mockAnalytics) GetAllocationHistory(accountID, period string) ([]domain.AllocationRecord, error) {
	return []domain.AllocationRecord{
		{Date: "2024-01-01", Category: "Bitcoin", Share: 100},
	}, nil
}

func (m *mockAnalytics) GetMetricSeries(accountID string, metric domain.Metric, period string) ([]domain.MetricPoint, error) {
	return []domain.MetricPoint{
		{Date: "2024-01-01", Value: 1.8},
		{Date: "2024-01-02", Value: 2.4},
	}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	dims := charts.Dimensions{Width: 800, Height: 400, Padding: 20}
	service := charts.NewService(&mockAnalytics{}, dims, logger)
	handler := NewHandler(service, dims, time.Millisecond, logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func writeMsg(ctx context.Context, t *testing.T, conn *websocket.Conn, v map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func readMsg(ctx context.Context, t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHoverSocketPortfolio(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, srv.URL+"/hover/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	writeMsg(ctx, t, conn, map[string]interface{}{
		"type": "init", "chart": "portfolio", "account": "acct-1", "period": "1M",
		"width": 800.0, "height": 400.0,
	})

	ready := readMsg(ctx, t, conn)
	assert.Equal(t, "ready", ready["type"])
	assert.Equal(t, "portfolio", ready["chart"])
	assert.Equal(t, 3.0, ready["points"])

	// Far right resolves to the last index
	writeMsg(ctx, t, conn, map[string]interface{}{"type": "move", "x": 800.0})

	frame := readMsg(ctx, t, conn)
	assert.Equal(t, "hover", frame["type"])
	assert.Equal(t, 2.0, frame["index"])

	payload := frame["payload"].(map[string]interface{})
	assert.Equal(t, "2024-01-03", payload["date"])
	assert.Equal(t, 49000.0, payload["value"])
	assert.Equal(t, "$49.0k", payload["label"])

	// 780px resolves to the same index, so no frame is emitted for it;
	// the next frame on the wire comes from the move to 0
	writeMsg(ctx, t, conn, map[string]interface{}{"type": "move", "x": 780.0})
	writeMsg(ctx, t, conn, map[string]interface{}{"type": "move", "x": 0.0})

	frame = readMsg(ctx, t, conn)
	assert.Equal(t, "hover", frame["type"])
	assert.Equal(t, 0.0, frame["index"])

	writeMsg(ctx, t, conn, map[string]interface{}{"type": "leave"})

	cleared := readMsg(ctx, t, conn)
	assert.Equal(t, "clear", cleared["type"])
}

func TestHoverSocketMetric(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, srv.URL+"/hover/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	writeMsg(ctx, t, conn, map[string]interface{}{
		"type": "init", "chart": "metric", "metric": "sharpe", "account": "acct-1",
	})

	ready := readMsg(ctx, t, conn)
	require.Equal(t, "ready", ready["type"])
	assert.Equal(t, 2.0, ready["points"])

	writeMsg(ctx, t, conn, map[string]interface{}{"type": "move", "x": 800.0})

	frame := readMsg(ctx, t, conn)
	require.Equal(t, "hover", frame["type"])

	payload := frame["payload"].(map[string]interface{})
	assert.Equal(t, "sharpe", payload["metric"])
	assert.Equal(t, 2.4, payload["value"])
	assert.Equal(t, "Excellent", payload["interpretation"])
}

func TestHoverSocketInitErrors(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, srv.URL+"/hover/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Missing account
	writeMsg(ctx, t, conn, map[string]interface{}{"type": "init", "chart": "portfolio"})

	msg := readMsg(ctx, t, conn)
	assert.Equal(t, "error", msg["type"])
	assert.Contains(t, msg["message"], "account is required")

	// Unknown chart type
	writeMsg(ctx, t, conn, map[string]interface{}{"type": "init", "chart": "sankey", "account": "acct-1"})

	msg = readMsg(ctx, t, conn)
	assert.Equal(t, "error", msg["type"])
	assert.Contains(t, msg["message"], "unknown chart type")
}

func TestHoverSocketMoveBeforeInit(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, srv.URL+"/hover/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Moves without a session are dropped, so the first frame on the
	// wire must be the ready for the init that follows
	writeMsg(ctx, t, conn, map[string]interface{}{"type": "move", "x": 400.0})
	writeMsg(ctx, t, conn, map[string]interface{}{
		"type": "init", "chart": "portfolio", "account": "acct-1",
	})

	msg := readMsg(ctx, t, conn)
	assert.Equal(t, "ready", msg["type"])
}
