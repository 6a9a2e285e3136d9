package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/execution"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/quote"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/swapform"
)

func testMarket() *quote.Market {
	return quote.NewMarket(
		map[string]models.TokenPrice{
			"GALA": {Symbol: "GALA", Price: 0.025},
			"USDC": {Symbol: "USDC", Price: 1},
			"SOL":  {Symbol: "SOL", Price: 100},
		},
		[]models.LiquidityPool{
			{Pair: "GALA/USDC", FeeFraction: 0.003, TVL: 1_000_000},
		},
	)
}

type failingExecutor struct{}

func (failingExecutor) ExecuteSwap(context.Context, swapform.TradeRequest) (*swapform.TradeReceipt, error) {
	return nil, errors.New("rpc unavailable")
}

// fakeTrades delivers a fixed set of trades on subscribe, then blocks.
type fakeTrades struct {
	channels chan string
	trades   []*models.TradeRecord
}

func (f *fakeTrades) Subscribe(ctx context.Context, channel string, handler func(*models.TradeRecord)) error {
	f.channels <- channel
	for _, t := range f.trades {
		handler(t)
	}
	<-ctx.Done()
	return ctx.Err()
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

type testOpts struct {
	executor swapform.TradeExecutor
	trades   TradeSubscriber
	apiKey   string
	maxBps   int
}

func newTestServer(t *testing.T, opts testOpts) *Server {
	t.Helper()
	logger := quietLogger()
	market := testMarket()

	exec := opts.executor
	if exec == nil {
		exec = execution.NewDryRun(logger, 0)
	}

	srv, err := NewServer(ServerDeps{
		Handlers: &Handlers{
			Market: market,
			Forms: swapform.NewRegistry(swapform.Config{
				Market:            market,
				Executor:          exec,
				Logger:            logger,
				MaxPriceImpactBps: opts.maxBps,
			}),
			Trades: opts.trades,
			Logger: logger,
		},
		Config: ServerConfig{Addr: ":0", APIKey: opts.apiKey, SubmitRate: 100},
	})
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := NewServer(ServerDeps{})
	assert.Error(t, err)

	_, err = NewServer(ServerDeps{Handlers: &Handlers{Market: testMarket(), Logger: quietLogger()}})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testOpts{})

	rec := do(t, srv, http.MethodGet, "/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	resp := decode[HealthResponse](t, rec)
	assert.True(t, resp.OK)
	assert.Equal(t, 3, resp.Symbols)
	assert.Equal(t, 1, resp.Pools)
	assert.Equal(t, 0, resp.Forms)
}

func TestPrice(t *testing.T) {
	srv := newTestServer(t, testOpts{})

	rec := do(t, srv, http.MethodGet, "/v1/prices/gala", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[PriceResponse](t, rec)
	assert.Equal(t, "GALA", resp.Token)
	assert.Equal(t, 0.025, resp.Price)

	rec = do(t, srv, http.MethodGet, "/v1/prices/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPools_FeeAsPercent(t *testing.T) {
	srv := newTestServer(t, testOpts{})

	rec := do(t, srv, http.MethodGet, "/v1/pools", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[struct {
		Items []PoolResponse `json:"items"`
	}](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "GALA/USDC", resp.Items[0].Pair)
	assert.InDelta(t, 0.3, resp.Items[0].FeePct, 1e-9)
}

func TestQuote_Forward(t *testing.T) {
	srv := newTestServer(t, testOpts{})

	rec := do(t, srv, http.MethodGet, "/v1/quote?from=gala&to=usdc&amount=10000", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[QuoteResponse](t, rec)
	assert.Equal(t, "GALA", resp.From)
	assert.Equal(t, "USDC", resp.To)
	assert.Equal(t, "249.944000", resp.OutputAmount)
	assert.Equal(t, "248.694280", resp.MinimumReceived)
	assert.Equal(t, "to", resp.SolvedFor)
	assert.InDelta(t, 0.0224, resp.PriceImpactPct, 1e-9)
	assert.InDelta(t, 0.3, resp.FeePct, 1e-9)
	assert.Equal(t, "none", resp.Severity)
	assert.Empty(t, resp.Warning)
	assert.True(t, resp.Converged)
}

func TestQuote_CustomSlippage(t *testing.T) {
	srv := newTestServer(t, testOpts{})

	rec := do(t, srv, http.MethodGet, "/v1/quote?from=GALA&to=USDC&amount=10000&slippage=0.01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "247.444560", decode[QuoteResponse](t, rec).MinimumReceived)
}

func TestQuote_Inverse(t *testing.T) {
	srv := newTestServer(t, testOpts{})

	rec := do(t, srv, http.MethodGet, "/v1/quote?from=GALA&to=USDC&output=249.944", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[QuoteResponse](t, rec)
	assert.Equal(t, "from", resp.SolvedFor)
	assert.Equal(t, "249.944000", resp.OutputAmount)
	in, err := strconv.ParseFloat(resp.InputAmount, 64)
	require.NoError(t, err)
	assert.InDelta(t, 10000, in, 0.01)
}

func TestQuote_ZeroOutput(t *testing.T) {
	srv := newTestServer(t, testOpts{})

	rec := do(t, srv, http.MethodGet, "/v1/quote?from=GALA&to=USDC&output=0", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[QuoteResponse](t, rec)
	assert.Equal(t, "from", resp.SolvedFor)
	assert.Equal(t, "0.000000", resp.InputAmount)
	assert.Equal(t, "0.000000", resp.OutputAmount)
}

func TestQuote_Errors(t *testing.T) {
	srv := newTestServer(t, testOpts{})

	tests := []struct {
		name  string
		query string
		code  int
		field string
	}{
		{"missing from", "to=USDC&amount=1", http.StatusBadRequest, "from"},
		{"missing to", "from=GALA&amount=1", http.StatusBadRequest, "to"},
		{"no amount", "from=GALA&to=USDC", http.StatusBadRequest, "amount"},
		{"both amounts", "from=GALA&to=USDC&amount=1&output=1", http.StatusBadRequest, "amount"},
		{"same token", "from=GALA&to=gala&amount=1", http.StatusBadRequest, "to"},
		{"bad amount", "from=GALA&to=USDC&amount=abc", http.StatusBadRequest, "amount"},
		{"huge exponent", "from=GALA&to=USDC&amount=1e20000000", http.StatusBadRequest, "amount"},
		{"zero amount", "from=GALA&to=USDC&amount=0", http.StatusBadRequest, "amount"},
		{"negative output", "from=GALA&to=USDC&output=-1", http.StatusBadRequest, "output"},
		{"bad slippage", "from=GALA&to=USDC&amount=1&slippage=0.9", http.StatusBadRequest, "slippage"},
		{"unpriced token", "from=GALA&to=NOPRICE&amount=1", http.StatusUnprocessableEntity, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, "/v1/quote?"+tt.query, "")
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.field, resp.Field)
		})
	}
}

func TestForms_Lifecycle(t *testing.T) {
	srv := newTestServer(t, testOpts{})

	rec := do(t, srv, http.MethodPost, "/v1/forms", `{"from":"gala","to":"usdc"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	form := decode[FormResponse](t, rec)
	require.NotEmpty(t, form.ID)
	assert.Equal(t, "GALA", form.FromToken)
	assert.Equal(t, "USDC", form.ToToken)
	assert.InDelta(t, 0.5, form.SlippagePct, 1e-9)
	assert.Equal(t, "idle", form.Phase)
	base := "/v1/forms/" + form.ID

	rec = do(t, srv, http.MethodPost, base+"/amount", `{"field":"from","value":"10000"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	form = decode[FormResponse](t, rec)
	assert.Equal(t, "10000", form.FromAmount)
	assert.Equal(t, "249.944000", form.ToAmount)
	require.NotNil(t, form.Quote)
	assert.InDelta(t, 0.0224, form.Quote.PriceImpactPct, 1e-9)

	rec = do(t, srv, http.MethodPost, base+"/slippage", `{"tolerance":0.01}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 1.0, decode[FormResponse](t, rec).SlippagePct, 1e-9)

	rec = do(t, srv, http.MethodPost, base+"/flip", "")
	require.Equal(t, http.StatusOK, rec.Code)
	form = decode[FormResponse](t, rec)
	assert.Equal(t, "USDC", form.FromToken)
	assert.Equal(t, "249.944000", form.FromAmount)
	assert.Equal(t, "10000", form.ToAmount)

	rec = do(t, srv, http.MethodPost, base+"/flip", "")
	require.Equal(t, http.StatusOK, rec.Code)
	form = decode[FormResponse](t, rec)
	assert.Equal(t, "GALA", form.FromToken)
	assert.Equal(t, "10000", form.FromAmount)

	rec = do(t, srv, http.MethodPost, base+"/submit", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sub := decode[SubmitResponse](t, rec)
	assert.True(t, strings.HasPrefix(sub.ID, "exec_"))
	assert.Empty(t, sub.Form.FromAmount)
	assert.Empty(t, sub.Form.ToAmount)
	assert.Equal(t, "idle", sub.Form.Phase)

	rec = do(t, srv, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GALA", decode[FormResponse](t, rec).FromToken)

	rec = do(t, srv, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, srv, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func createForm(t *testing.T, srv *Server, body string) string {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/v1/forms", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return "/v1/forms/" + decode[FormResponse](t, rec).ID
}

func TestForms_Errors(t *testing.T) {
	srv := newTestServer(t, testOpts{})

	rec := do(t, srv, http.MethodPost, "/v1/forms", `{"from":"GALA","to":"gala"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/v1/forms", `{"from":"","to":"USDC"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/v1/forms", `{"from":"GALA","to":"USDC","slippage":0.9}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "slippageTolerance", decode[ErrorResponse](t, rec).Field)

	rec = do(t, srv, http.MethodPost, "/v1/forms/missing/flip", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	base := createForm(t, srv, `{"from":"GALA","to":"USDC"}`)

	rec = do(t, srv, http.MethodPost, base+"/amount", `{"field":"sideways","value":"1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "field", decode[ErrorResponse](t, rec).Field)

	rec = do(t, srv, http.MethodPost, base+"/token", `{"side":"to","symbol":"GALA"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, base+"/slippage", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "tolerance", decode[ErrorResponse](t, rec).Field)

	rec = do(t, srv, http.MethodPost, base+"/submit", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "fromAmount", decode[ErrorResponse](t, rec).Field)
}

func TestForms_TokenChange(t *testing.T) {
	srv := newTestServer(t, testOpts{})
	base := createForm(t, srv, `{"from":"GALA","to":"USDC"}`)

	rec := do(t, srv, http.MethodPost, base+"/amount", `{"field":"from","value":"1000"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, base+"/token", `{"side":"to","symbol":"sol"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	form := decode[FormResponse](t, rec)
	assert.Equal(t, "SOL", form.ToToken)
	assert.Equal(t, "0.250000", form.ToAmount)
}

func TestForms_SubmitExecutorFailure(t *testing.T) {
	srv := newTestServer(t, testOpts{executor: failingExecutor{}})
	base := createForm(t, srv, `{"from":"GALA","to":"USDC"}`)

	rec := do(t, srv, http.MethodPost, base+"/amount", `{"field":"from","value":"10000"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, base+"/submit", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = do(t, srv, http.MethodGet, base, "")
	form := decode[FormResponse](t, rec)
	assert.Equal(t, "10000", form.FromAmount)
	assert.Equal(t, "249.944000", form.ToAmount)
	assert.False(t, form.IsSubmitting)
}

func TestForms_SubmitImpactGuard(t *testing.T) {
	srv := newTestServer(t, testOpts{maxBps: 2})
	base := createForm(t, srv, `{"from":"GALA","to":"USDC"}`)

	rec := do(t, srv, http.MethodPost, base+"/amount", `{"field":"from","value":"10000"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, base+"/submit", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "priceImpact", decode[ErrorResponse](t, rec).Field)
}

func TestAPIKey(t *testing.T) {
	srv := newTestServer(t, testOpts{apiKey: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, testOpts{})

	rec := do(t, srv, http.MethodGet, "/v2/nothing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, decode[ErrorResponse](t, rec).Code)
}

func TestFlags_NotConfigured(t *testing.T) {
	srv := newTestServer(t, testOpts{})

	rec := do(t, srv, http.MethodGet, "/v1/flags", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTradesLive_NotConfigured(t *testing.T) {
	srv := newTestServer(t, testOpts{})

	rec := do(t, srv, http.MethodGet, "/v1/trades/live", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTradesLive_StreamsTrades(t *testing.T) {
	feed := &fakeTrades{
		channels: make(chan string, 1),
		trades: []*models.TradeRecord{{
			ID:         "exec_1",
			FromToken:  "GALA",
			ToToken:    "USDC",
			FromAmount: "10000",
			ToAmount:   "249.944000",
			RecordedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
	srv := newTestServer(t, testOpts{trades: feed})

	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/trades/live?pair=gala/usdc"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case ch := <-feed.channels:
		assert.Equal(t, constants.PubSubChannelTrades+":pair:GALA/USDC", ch)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not opened")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got models.TradeRecord
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "exec_1", got.ID)
	assert.Equal(t, "249.944000", got.ToAmount)
}
