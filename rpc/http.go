package rpc

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gigchain/core"
	"gigchain/observability/metrics"
)

const maxRequestBytes = 1 << 20 // 1 MiB

// Server exposes the dispatcher over JSON-RPC, plus a websocket event stream
// and Prometheus metrics.
type Server struct {
	node           *core.Node
	log            *slog.Logger
	eventBuffer    int
	metricsEnabled bool
}

// NewServer wires a server in front of the node.
func NewServer(node *core.Node, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{node: node, log: log, metricsEnabled: true}
}

// SetEventBuffer sets the per-subscriber buffer used by the websocket event
// stream. Zero or negative keeps the bus default.
func (s *Server) SetEventBuffer(n int) { s.eventBuffer = n }

// SetMetricsEnabled toggles the /metrics endpoint.
func (s *Server) SetMetricsEnabled(enabled bool) { s.metricsEnabled = enabled }

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/", s.handle)
	r.Get("/ws/events", s.handleEventsWS)
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return otelhttp.NewHandler(r, "gigchain-rpc")
}

// Start serves the RPC surface on addr, blocking until the listener fails.
func (s *Server) Start(addr string) error {
	s.log.Info("starting JSON-RPC server", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj})
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "unable to read request body", nil)
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	status := "ok"
	defer func() {
		metrics.RPCRequestsTotal.WithLabelValues(req.Method, status).Inc()
	}()

	switch req.Method {
	case "chain_submitAction":
		s.handleSubmitAction(w, &req)
	case "chain_getReceipt":
		s.handleGetReceipt(w, &req)
	case "token_mint", "token_transfer", "token_approve", "token_transferFrom":
		s.handleTokenWrite(w, &req)
	case "token_getBalance":
		s.handleTokenBalance(w, &req)
	case "token_getAllowance":
		s.handleTokenAllowance(w, &req)
	case "bounty_create":
		s.handleBountyCreate(w, &req)
	case "bounty_submit":
		s.handleBountySubmit(w, &req)
	case "bounty_selectWinners":
		s.handleBountySelectWinners(w, &req)
	case "bounty_cancel":
		s.handleBountyCancel(w, &req)
	case "bounty_get":
		s.handleBountyGet(w, &req)
	case "bounty_listSubmissions":
		s.handleBountySubmissions(w, &req)
	case "bounty_count":
		writeResult(w, req.ID, s.node.BountyCount())
	case "gig_post":
		s.handleGigPost(w, &req)
	case "gig_submitProposal":
		s.handleGigSubmitProposal(w, &req)
	case "gig_withdrawProposal":
		s.handleGigWithdrawProposal(w, &req)
	case "gig_selectProposal":
		s.handleGigSelectProposal(w, &req)
	case "gig_depositStake":
		s.handleGigDepositStake(w, &req)
	case "gig_complete":
		s.handleGigComplete(w, &req)
	case "gig_cancel":
		s.handleGigCancel(w, &req)
	case "gig_get":
		s.handleGigGet(w, &req)
	case "gig_listProposals":
		s.handleGigProposals(w, &req)
	case "gig_count":
		writeResult(w, req.ID, s.node.GigCount())
	default:
		status = "method_not_found"
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
	}
}

// decodeParams unmarshals the single params object every write method
// expects.
func decodeParams(w http.ResponseWriter, req *RPCRequest, out interface{}) bool {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", "exactly one parameter object expected")
		return false
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return false
	}
	return true
}

// submitAction runs the action through the dispatcher and writes either the
// pending receipt or the mapped failure (with the failed receipt attached).
func (s *Server) submitAction(w http.ResponseWriter, req *RPCRequest, action core.Action) {
	receipt, err := s.node.SubmitAction(action)
	if err != nil {
		data := map[string]interface{}{"receipt": receipt}
		writeError(w, http.StatusBadRequest, req.ID, errorCode(err), err.Error(), data)
		return
	}
	writeResult(w, req.ID, receipt)
}

func (s *Server) handleSubmitAction(w http.ResponseWriter, req *RPCRequest) {
	var action core.Action
	if !decodeParams(w, req, &action) {
		return
	}
	s.submitAction(w, req, action)
}

type receiptParams struct {
	Hash string `json:"hash"`
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, req *RPCRequest) {
	var params receiptParams
	if !decodeParams(w, req, &params) {
		return
	}
	receipt, ok := s.node.GetReceipt(params.Hash)
	if !ok {
		writeResult(w, req.ID, nil)
		return
	}
	writeResult(w, req.ID, receipt)
}
