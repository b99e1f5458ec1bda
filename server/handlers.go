package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rustyeddy/pitlane/ledger"
	"github.com/rustyeddy/pitlane/market"
	"github.com/rustyeddy/pitlane/sim"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"scenario": s.engine.Scenario().Name,
		"ticks":    s.engine.Ticks(),
	})
}

// GET /api/instruments?q=
func (s *Server) handleInstruments(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Search(r.URL.Query().Get("q")))
}

// GET /api/instruments/{id}
func (s *Server) handleInstrument(w http.ResponseWriter, r *http.Request) {
	d, err := s.engine.Detail(chi.URLParam(r, "id"))
	if errors.Is(err, market.ErrUnknownInstrument) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

type tradeRequest struct {
	InstrumentID string      `json:"instrument_id"`
	Side         ledger.Side `json:"side"`
	Quantity     int64       `json:"quantity"`
}

type tradeResponse struct {
	Success     bool                `json:"success"`
	Error       string              `json:"error,omitempty"`
	Transaction *ledger.Transaction `json:"transaction,omitempty"`
}

// POST /api/trades
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := decode(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, tradeResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	side := ledger.Side(strings.ToLower(string(req.Side)))
	if side != ledger.Buy && side != ledger.Sell {
		s.writeJSON(w, http.StatusBadRequest, tradeResponse{Error: "side must be buy or sell"})
		return
	}

	tx, err := s.engine.Trade(side, req.InstrumentID, req.Quantity)
	if err != nil {
		s.writeJSON(w, statusFor(err), tradeResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, tradeResponse{Success: true, Transaction: &tx})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrUnknownInstrument),
		errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrInsufficientShares),
		errors.Is(err, ledger.ErrInsufficientHoldings):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Portfolio())
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.engine.Transactions()
	if txs == nil {
		txs = []ledger.Transaction{}
	}
	s.writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleLeague(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Standings())
}

// GET /api/news?limit=
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	limit := sim.NewsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	news := s.engine.News(limit)
	if news == nil {
		news = []market.FeedItem{}
	}
	s.writeJSON(w, http.StatusOK, news)
}

type scenarioResponse struct {
	Current   market.Scenario       `json:"current"`
	Available []market.ScenarioName `json:"available"`
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, scenarioResponse{
		Current:   s.engine.Scenario(),
		Available: market.ScenarioNames(),
	})
}

type scenarioRequest struct {
	Scenario string `json:"scenario"`
}

// PUT /api/scenario
func (s *Server) handleSetScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	sc, err := s.engine.SetScenario(req.Scenario)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, scenarioResponse{Current: sc, Available: market.ScenarioNames()})
}

// GET /api/snapshot
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeNegotiated(w, r, s.engine.Snapshot())
}

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	if s.clock == nil {
		s.writeError(w, http.StatusServiceUnavailable, "clock not running")
		return
	}
	s.writeJSON(w, http.StatusOK, s.clock.State())
}

// POST /api/clock/{pause|resume|toggle|step}
func (s *Server) handleClockAction(w http.ResponseWriter, r *http.Request) {
	if s.clock == nil {
		s.writeError(w, http.StatusServiceUnavailable, "clock not running")
		return
	}

	switch action := chi.URLParam(r, "action"); action {
	case "pause":
		s.clock.Pause()
	case "resume":
		if err := s.clock.Resume(); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	case "toggle":
		if _, err := s.clock.Toggle(); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	case "step":
		res, err := s.clock.Step(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, res)
		return
	default:
		s.writeError(w, http.StatusBadRequest, "unknown clock action "+strconv.Quote(action))
		return
	}
	s.writeJSON(w, http.StatusOK, s.clock.State())
}

type intervalRequest struct {
	Interval   string `json:"interval,omitempty"`
	IntervalMS int64  `json:"interval_ms,omitempty"`
}

// PUT /api/clock/interval
func (s *Server) handleClockInterval(w http.ResponseWriter, r *http.Request) {
	if s.clock == nil {
		s.writeError(w, http.StatusServiceUnavailable, "clock not running")
		return
	}

	var req intervalRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	d := time.Duration(req.IntervalMS) * time.Millisecond
	if req.Interval != "" {
		var err error
		if d, err = time.ParseDuration(req.Interval); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := s.clock.SetInterval(d); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.clock.State())
}
