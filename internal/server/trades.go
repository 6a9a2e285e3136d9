package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/cache"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPingInterval = 30 * time.Second
	wsSendBuffer   = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// TradesLive streams recorded trades over a websocket.
// ?pair=GALA/USDC narrows the stream to one pair.
func (h *Handlers) TradesLive(c echo.Context) error {
	if h.Trades == nil {
		return h.err(c, http.StatusServiceUnavailable, "live trades are not configured", nil)
	}

	channel := constants.PubSubChannelTrades
	if pair := strings.ToUpper(strings.TrimSpace(c.QueryParam("pair"))); pair != "" {
		channel = cache.PairChannel(pair)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.Logger.WithError(err).Debug("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Reader: only used to notice the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	trades := make(chan *models.TradeRecord, wsSendBuffer)
	go func() {
		defer cancel()
		err := h.Trades.Subscribe(ctx, channel, func(t *models.TradeRecord) {
			select {
			case trades <- t:
			default:
				h.Logger.WithField("channel", channel).Warn("websocket client too slow, dropping trade")
			}
		})
		if err != nil && ctx.Err() == nil {
			h.Logger.WithError(err).WithField("channel", channel).Error("trade subscription ended")
		}
	}()

	h.Logger.WithField("channel", channel).Info("websocket client connected")

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteTimeout))
			h.Logger.WithField("channel", channel).Info("websocket client disconnected")
			return nil
		case t := <-trades:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(t); err != nil {
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return nil
			}
		}
	}
}
