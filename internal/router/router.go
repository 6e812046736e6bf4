// Package router maps a parsed request onto its handler. There is a
// single hard-coded route; anything else is not found.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tixx/currency-converter/internal/httperr"
	"github.com/tixx/currency-converter/internal/oxr"
	"github.com/tixx/currency-converter/internal/request"
	"github.com/tixx/currency-converter/internal/response"
)

const convertPrefix = "/convert/"

type Router struct {
	provider oxr.Provider
	target   string
	log      *zap.Logger
}

// New builds a router whose convert route quotes rates into the given
// target currency symbol.
func New(provider oxr.Provider, targetCurrency string, logger *zap.Logger) *Router {
	return &Router{
		provider: provider,
		target:   targetCurrency,
		log:      logger,
	}
}

// Route dispatches req to its handler. Protocol failures come back as
// *httperr.Error; anything else is an internal fault for the server to
// mask as a 500.
func (rt *Router) Route(req *request.Request) (*response.Response, error) {
	if req.Method == "GET" && strings.HasPrefix(req.Path, convertPrefix) {
		return rt.handleConvert(req, strings.TrimPrefix(req.Path, convertPrefix))
	}
	return nil, httperr.New(404, "Not Found", "")
}

type conversion struct {
	Timestamp      int64   `json:"timestamp"`
	BaseCurrency   string  `json:"base_currency"`
	BaseAmount     float64 `json:"base_amount"`
	TargetCurrency string  `json:"target_currency"`
	TargetAmount   float64 `json:"target_amount"`
}

func acceptsJSON(req *request.Request) bool {
	accept, ok := req.Headers.Get("Accept")
	if !ok {
		return false
	}
	return strings.Contains(accept, "application/json") || strings.Contains(accept, "*/*")
}

func (rt *Router) handleConvert(req *request.Request, rawAmount string) (*response.Response, error) {
	amount, err := strconv.ParseFloat(rawAmount, 64)
	if err != nil {
		return nil, httperr.New(400, "Bad Request", "Amount value must be float")
	}

	if !acceptsJSON(req) {
		rt.log.Error("unacceptable media type requested")
		return &response.Response{Status: 406, Reason: "Not Acceptable"}, nil
	}

	res, err := rt.provider.Latest(context.Background(), "", []string{rt.target})
	if err != nil {
		return nil, fmt.Errorf("fetching latest rates: %w", err)
	}

	// The provider is asked for exactly one symbol, so the single key in
	// the rate map is the target currency.
	if len(res.Rates) != 1 {
		return nil, fmt.Errorf("provider returned %d rates, want exactly 1", len(res.Rates))
	}
	var targetCurrency string
	var rate float64
	for symbol, r := range res.Rates {
		targetCurrency, rate = symbol, r
	}

	body, err := json.Marshal(conversion{
		Timestamp:      res.Timestamp,
		BaseCurrency:   res.Base,
		BaseAmount:     amount,
		TargetCurrency: targetCurrency,
		TargetAmount:   rate * amount,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding conversion: %w", err)
	}

	resp := response.New(200)
	resp.Headers.Add("Content-Type", "application/json; charset=utf-8")
	resp.Headers.Add("Content-Length", strconv.Itoa(len(body)))
	resp.Body = body

	rt.log.Info("conversion served",
		zap.Float64("amount", amount),
		zap.String("target", targetCurrency))
	return resp, nil
}
