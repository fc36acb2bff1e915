package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bloomery/backend/internal/cart"
)

type cartQuoteRequest struct {
	Items []cart.Line `json:"items"`
}

type cartQuoteResponse struct {
	cart.Quote
	Display cartDisplay `json:"display"`
}

type cartDisplay struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

func (a *App) quoteCart(c *gin.Context) {
	var req cartQuoteRequest
	if !mustJSON(c, &req) {
		return
	}

	quote, err := cart.Price(req.Items)
	switch {
	case errors.Is(err, cart.ErrUnknownBouquet), errors.Is(err, cart.ErrQuantityTooHigh):
		writeError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		a.logger.Error("cart quote failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, cartQuoteResponse{
		Quote: quote,
		Display: cartDisplay{
			Subtotal: cart.FormatCents(quote.Subtotal),
			Tax:      cart.FormatCents(quote.Tax),
			Shipping: cart.FormatCents(quote.Shipping),
			Total:    cart.FormatCents(quote.Total),
		},
	})
}
