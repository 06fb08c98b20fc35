package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vietddude/ethscan"
)

// maxBodyBytes bounds request bodies; 1 MiB holds about 20k addresses.
const maxBodyBytes = 1 << 20

type balancesRequest struct {
	Addresses []string `json:"addresses"`
	Token     string   `json:"token"`
	Owner     string   `json:"owner"`
	Tokens    []string `json:"tokens"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func decimals(m ethscan.BalanceMap) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.String()
	}
	return out
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (balancesRequest, bool) {
	var req balancesRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return req, false
	}
	return req, true
}

// statusOf maps scanner errors to HTTP status codes.
func statusOf(err error) int {
	var decodeErr *ethscan.DecodeError
	switch {
	case errors.Is(err, ethscan.ErrInvalidAddress), errors.Is(err, ethscan.ErrInvalidBatchSize):
		return http.StatusBadRequest
	case errors.Is(err, ethscan.ErrCallFailed), errors.As(err, &decodeErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("Balance query failed", "path", r.URL.Path, "error", err)
	} else {
		s.log.Debug("Balance query rejected", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func (s *Server) handleEther(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	balances, err := ethscan.GetEtherBalances(r.Context(), s.caller, req.Addresses, &s.opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decimals(balances))
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	balances, err := ethscan.GetTokenBalances(r.Context(), s.caller, req.Addresses, req.Token, &s.opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decimals(balances))
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	balances, err := ethscan.GetTokensBalance(r.Context(), s.caller, req.Owner, req.Tokens, &s.opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decimals(balances))
}

func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	balances, err := ethscan.GetTokensBalances(r.Context(), s.caller, req.Addresses, req.Tokens, &s.opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make(map[string]map[string]string, len(balances))
	for holder, m := range balances {
		out[holder] = decimals(m)
	}
	writeJSON(w, http.StatusOK, out)
}
