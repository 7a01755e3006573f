package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Mazzz-zzz/voca.fi/pkg/swap"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type resolveResponse struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

type moveRequest struct {
	Index int `json:"index"`
}

type executeResponse struct {
	TxHash string `json:"tx_hash"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(c echo.Context) error {
	if s.cfg.Session == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "chat is not configured"})
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "message is required"})
	}

	reply, err := s.cfg.Session.HandleMessage(c.Request().Context(), req.Message)
	if err != nil {
		s.log.WithError(err).Error("chat request failed")
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, chatResponse{Reply: reply})
}

func (s *Server) handleTokens(c echo.Context) error {
	tokens, err := s.cfg.Enso.GetTokens(c.Request().Context(), s.cfg.ChainID)
	if err != nil {
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, tokens)
}

func (s *Server) handleResolve(c echo.Context) error {
	symbol := c.QueryParam("symbol")
	if symbol == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "symbol is required"})
	}

	tok, err := s.cfg.Resolver.Resolve(c.Request().Context(), symbol)
	if err != nil {
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
	if tok == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "no token matches " + symbol})
	}
	return c.JSON(http.StatusOK, resolveResponse{
		Address:  tok.Address,
		Symbol:   tok.Symbol,
		Decimals: tok.Decimals,
	})
}

// handleQuote prepares a swap without queuing it. amount is in base units.
func (s *Server) handleQuote(c echo.Context) error {
	amount := c.QueryParam("amount")
	symbol := c.QueryParam("symbol")
	if amount == "" || symbol == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "amount and symbol are required"})
	}

	prepared, err := s.cfg.Preparer.PrepareSwap(c.Request().Context(), amount, symbol)
	if err != nil {
		var notFound *swap.TokenNotFoundError
		if errors.As(err, &notFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, prepared)
}

func (s *Server) handleQueueList(c echo.Context) error {
	return c.JSON(http.StatusOK, s.cfg.Queue.List())
}

func (s *Server) handleQueueDelete(c echo.Context) error {
	err := s.cfg.Queue.Delete(c.Param("id"))
	if errors.Is(err, swap.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleQueueMove(c echo.Context) error {
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	err := s.cfg.Queue.Reorder(c.Param("id"), req.Index)
	switch {
	case errors.Is(err, swap.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, swap.ErrNotPending):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleQueueExecute(c echo.Context) error {
	if s.cfg.Executor == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no wallet configured"})
	}

	hash, err := s.cfg.Queue.Execute(c.Request().Context(), c.Param("id"), s.cfg.Executor)
	switch {
	case errors.Is(err, swap.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, swap.ErrNotPending):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case err != nil:
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, executeResponse{TxHash: hash})
}

func (s *Server) handleQueueExecuteAll(c echo.Context) error {
	if s.cfg.Executor == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no wallet configured"})
	}

	hash, err := s.cfg.Queue.ExecuteAll(c.Request().Context(), s.cfg.Executor)
	switch {
	case errors.Is(err, swap.ErrNothingPending):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case err != nil:
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, executeResponse{TxHash: hash})
}
