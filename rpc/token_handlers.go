package rpc

import (
	"net/http"

	"gigchain/core"
	"gigchain/core/types"
)

type tokenWriteParams struct {
	From    string `json:"from"`
	To      string `json:"to,omitempty"`
	Owner   string `json:"owner,omitempty"`
	Spender string `json:"spender,omitempty"`
	Amount  string `json:"amount"`
}

func (s *Server) handleTokenWrite(w http.ResponseWriter, req *RPCRequest) {
	var params tokenWriteParams
	if !decodeParams(w, req, &params) {
		return
	}
	var action core.Action
	switch req.Method {
	case "token_mint":
		action = core.Action{Name: core.ActionTokenMint, From: params.From, Args: []string{params.To, params.Amount}}
	case "token_transfer":
		action = core.Action{Name: core.ActionTokenTransfer, From: params.From, Args: []string{params.To, params.Amount}}
	case "token_approve":
		action = core.Action{Name: core.ActionTokenApprove, From: params.From, Args: []string{params.Spender, params.Amount}}
	case "token_transferFrom":
		action = core.Action{Name: core.ActionTokenTransferFrom, From: params.From, Args: []string{params.Owner, params.To, params.Amount}}
	}
	s.submitAction(w, req, action)
}

type balanceParams struct {
	Address string `json:"address"`
}

func (s *Server) handleTokenBalance(w http.ResponseWriter, req *RPCRequest) {
	var params balanceParams
	if !decodeParams(w, req, &params) {
		return
	}
	addr, err := types.ParseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	balance, err := s.node.BalanceOf(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]string{"address": addr.Hex(), "balance": balance.String()})
}

type allowanceParams struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
}

func (s *Server) handleTokenAllowance(w http.ResponseWriter, req *RPCRequest) {
	var params allowanceParams
	if !decodeParams(w, req, &params) {
		return
	}
	owner, err := types.ParseAddress(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	spender, err := types.ParseAddress(params.Spender)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	allowance, err := s.node.AllowanceOf(owner, spender)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]string{"owner": owner.Hex(), "spender": spender.Hex(), "allowance": allowance.String()})
}
