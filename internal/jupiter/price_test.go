package jupiter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
)

type stubQuoter struct {
	out   map[string]string // input mint -> outAmount
	calls []QuoteRequest
}

func (s *stubQuoter) Quote(_ context.Context, req QuoteRequest) (*QuoteResponse, error) {
	s.calls = append(s.calls, req)
	out, ok := s.out[req.InputMint]
	if !ok {
		return nil, &HTTPError{StatusCode: http.StatusBadRequest}
	}
	return &QuoteResponse{InputMint: req.InputMint, OutputMint: req.OutputMint, InAmount: req.Amount, OutAmount: out}, nil
}

func testTokens() []Token {
	return []Token{
		{Symbol: "USDC", Mint: constants.TokenMints["USDC"], Decimals: 6},
		{Symbol: "SOL", Mint: constants.TokenMints["SOL"], Decimals: 9},
		{Symbol: "JUP", Mint: constants.TokenMints["JUP"], Decimals: 6},
	}
}

func TestNewPriceProvider_Validation(t *testing.T) {
	_, err := NewPriceProvider(nil, testTokens(), nil)
	assert.Error(t, err)

	_, err = NewPriceProvider(&stubQuoter{}, []Token{{Symbol: "USDC", Mint: "not-a-mint"}}, nil)
	assert.Error(t, err)

	_, err = NewPriceProvider(&stubQuoter{}, testTokens()[1:], nil)
	assert.Error(t, err)

	p, err := NewPriceProvider(&stubQuoter{}, DefaultTokens(), nil)
	require.NoError(t, err)
	assert.Len(t, p.tokens, len(constants.TokenMints))
}

func TestPriceProvider_GetTokenPrices(t *testing.T) {
	q := &stubQuoter{out: map[string]string{
		constants.TokenMints["SOL"]: "151250000", // 151.25 USDC
	}}
	p, err := NewPriceProvider(q, testTokens(), logrus.New())
	require.NoError(t, err)
	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	prices, err := p.GetTokenPrices(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, prices["USDC"].Price)
	assert.Equal(t, 151.25, prices["SOL"].Price)
	assert.Equal(t, fixed, prices["SOL"].UpdatedAt)
	_, ok := prices["JUP"]
	assert.False(t, ok, "failed quotes are left out")

	require.Len(t, q.calls, 2)
	assert.Equal(t, "1000000000", q.calls[0].Amount)
	assert.Equal(t, constants.TokenMints["USDC"], q.calls[0].OutputMint)
}

func TestPriceProvider_AllFail(t *testing.T) {
	p, err := NewPriceProvider(&stubQuoter{}, testTokens(), logrus.New())
	require.NoError(t, err)

	_, err = p.GetTokenPrices(context.Background())
	var he *HTTPError
	assert.True(t, errors.As(err, &he))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte(`{"inAmount":"1","outAmount":"2"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k", MaxRetries: 3, RetryBackoff: time.Millisecond})
	res, err := c.Quote(context.Background(), QuoteRequest{InputMint: "a", OutputMint: "b", Amount: "1"})
	require.NoError(t, err)
	assert.Equal(t, "2", res.OutAmount)
	assert.Equal(t, 3, attempts)
}

func TestClient_NoRetryOnBadRequest(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad mint"))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 3, RetryBackoff: time.Millisecond})
	_, err := c.Quote(context.Background(), QuoteRequest{InputMint: "a", OutputMint: "b", Amount: "1"})

	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.StatusCode)
	assert.Contains(t, err.Error(), "bad mint")
	assert.Equal(t, 1, attempts)
}
