package jupiter

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/storage"
)

// Quoter is the part of Client the price provider needs.
type Quoter interface {
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error)
}

// PriceProvider derives USD prices by quoting one whole unit of every token
// against the quote stablecoin. Tokens whose quote fails are left out of the
// snapshot; the call only fails when nothing could be priced.
type PriceProvider struct {
	client Quoter
	quote  Token
	tokens []Token
	logger *logrus.Logger
	now    func() time.Time
}

var _ storage.PriceSource = (*PriceProvider)(nil)

// DefaultTokens builds the token table from the constants package.
func DefaultTokens() []Token {
	out := make([]Token, 0, len(constants.TokenMints))
	for sym, mint := range constants.TokenMints {
		out = append(out, Token{Symbol: sym, Mint: mint, Decimals: constants.TokenDecimals[sym]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// NewPriceProvider validates every mint address up front. The table must
// contain constants.QuoteSymbol.
func NewPriceProvider(client Quoter, tokens []Token, logger *logrus.Logger) (*PriceProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("jupiter client is nil")
	}
	if logger == nil {
		logger = logrus.New()
	}

	p := &PriceProvider{client: client, logger: logger, now: time.Now}
	for _, t := range tokens {
		t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
		if _, err := solana.PublicKeyFromBase58(t.Mint); err != nil {
			return nil, fmt.Errorf("token %s: invalid mint %q: %w", t.Symbol, t.Mint, err)
		}
		if t.Symbol == constants.QuoteSymbol {
			p.quote = t
		}
		p.tokens = append(p.tokens, t)
	}
	if p.quote.Mint == "" {
		return nil, fmt.Errorf("token table has no %s entry", constants.QuoteSymbol)
	}
	return p, nil
}

// GetTokenPrices quotes every token and returns symbol -> price.
func (p *PriceProvider) GetTokenPrices(ctx context.Context) (map[string]models.TokenPrice, error) {
	now := p.now().UTC()
	out := make(map[string]models.TokenPrice, len(p.tokens))
	out[p.quote.Symbol] = models.TokenPrice{Symbol: p.quote.Symbol, Price: 1, UpdatedAt: now}

	var lastErr error
	for _, t := range p.tokens {
		if t.Symbol == p.quote.Symbol {
			continue
		}
		price, err := p.priceOf(ctx, t)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			p.logger.WithError(err).WithField("token", t.Symbol).Warn("failed to price token")
			continue
		}
		out[t.Symbol] = models.TokenPrice{Symbol: t.Symbol, Price: price, UpdatedAt: now}
	}

	if len(out) == 1 && lastErr != nil {
		return nil, fmt.Errorf("no token could be priced: %w", lastErr)
	}
	return out, nil
}

func (p *PriceProvider) priceOf(ctx context.Context, t Token) (float64, error) {
	one := decimal.New(1, int32(t.Decimals))
	direct := true

	res, err := p.client.Quote(ctx, QuoteRequest{
		InputMint:        t.Mint,
		OutputMint:       p.quote.Mint,
		Amount:           one.String(),
		SwapMode:         "ExactIn",
		OnlyDirectRoutes: &direct,
	})
	if err != nil {
		return 0, err
	}

	out, err := decimal.NewFromString(res.OutAmount)
	if err != nil {
		return 0, fmt.Errorf("invalid outAmount %q: %w", res.OutAmount, err)
	}
	price, _ := out.Shift(-int32(p.quote.Decimals)).Float64()
	if price <= 0 {
		return 0, fmt.Errorf("non-positive price for %s", t.Symbol)
	}
	return price, nil
}
