package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tokenlens/tokenlens/internal/apperror"
	"github.com/tokenlens/tokenlens/internal/token"
)

// priceResponse is the JSON shape of a resolved quote. Null price fields
// mean no pool/oracle data was found, not a zero price.
type priceResponse struct {
	Token                 string    `json:"token"`
	Symbol                string    `json:"symbol,omitempty"`
	PriceInReferenceAsset *float64  `json:"priceInReferenceAsset"`
	PriceInFiat           *float64  `json:"priceInFiat"`
	Timestamp             time.Time `json:"timestamp"`
}

type rateResponse struct {
	ReferenceFiatRate float64   `json:"referenceFiatRate"`
	Timestamp         time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.StartSpanFromContext(r.Context(), "api.price")
	defer span.End()

	raw := mux.Vars(r)["address"]
	if !common.IsHexAddress(raw) {
		s.sendError(w, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("not a valid token address: "+raw)))
		return
	}
	addr := common.HexToAddress(raw)
	span.SetAttributes(attribute.String("token", addr.Hex()))

	quote, err := s.pricing.GetPrice(ctx, addr)
	if err != nil {
		s.logger.Warn(ctx, "price request failed", "token", addr.Hex(), "error", err)
		s.sendError(w, err)
		return
	}

	resp := priceResponse{
		Token:                 quote.Token.Hex(),
		PriceInReferenceAsset: quote.PriceInReference,
		PriceInFiat:           quote.PriceInFiat,
		Timestamp:             quote.Timestamp,
	}
	if info, ok := token.Lookup(addr); ok {
		resp.Symbol = info.Symbol
	}

	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.StartSpanFromContext(r.Context(), "api.rate")
	defer span.End()

	rate, err := s.pricing.ReferenceFiatRate(ctx)
	if err != nil {
		s.logger.Warn(ctx, "rate request failed", "error", err)
		s.sendError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, rateResponse{
		ReferenceFiatRate: rate,
		Timestamp:         time.Now(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error(context.Background(), "error writing response", "error", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := apperror.CodeUnknownError
	message := "internal error"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode
		code = appErr.Code
		message = appErr.Message
		if appErr.Context != "" {
			message += ": " + appErr.Context
		}
	}

	var resp errorResponse
	resp.Error.Code = string(code)
	resp.Error.Message = message
	s.sendJSON(w, status, resp)
}
