package rpc

import (
	"net/http"
	"strconv"

	"gigchain/core"
	"gigchain/native/gig"
)

type gigPostParams struct {
	Poster           string `json:"poster"`
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	DetailsURI       string `json:"detailsUri"`
	Budget           string `json:"budget"`
	Stake            string `json:"stake"`
	Duration         int64  `json:"duration"`
	ProposalDuration int64  `json:"proposalDuration"`
}

func (s *Server) handleGigPost(w http.ResponseWriter, req *RPCRequest) {
	var params gigPostParams
	if !decodeParams(w, req, &params) {
		return
	}
	s.submitAction(w, req, core.Action{
		Name: core.ActionGigPost,
		From: params.Poster,
		Args: []string{
			params.Title,
			params.ShortDescription,
			params.DetailsURI,
			params.Budget,
			params.Stake,
			strconv.FormatInt(params.Duration, 10),
			strconv.FormatInt(params.ProposalDuration, 10),
		},
	})
}

type gigProposalParams struct {
	GigID       uint64 `json:"gigId"`
	Freelancer  string `json:"freelancer"`
	ProposalURI string `json:"proposalUri"`
}

func (s *Server) handleGigSubmitProposal(w http.ResponseWriter, req *RPCRequest) {
	var params gigProposalParams
	if !decodeParams(w, req, &params) {
		return
	}
	s.submitAction(w, req, core.Action{
		Name: core.ActionGigSubmitProposal,
		From: params.Freelancer,
		Args: []string{strconv.FormatUint(params.GigID, 10), params.ProposalURI},
	})
}

type gigIndexedParams struct {
	GigID  uint64 `json:"gigId"`
	Index  uint64 `json:"proposalIndex"`
	Caller string `json:"caller"`
}

func (s *Server) handleGigWithdrawProposal(w http.ResponseWriter, req *RPCRequest) {
	var params gigIndexedParams
	if !decodeParams(w, req, &params) {
		return
	}
	s.submitAction(w, req, core.Action{
		Name: core.ActionGigWithdrawProposal,
		From: params.Caller,
		Args: []string{strconv.FormatUint(params.GigID, 10), strconv.FormatUint(params.Index, 10)},
	})
}

func (s *Server) handleGigSelectProposal(w http.ResponseWriter, req *RPCRequest) {
	var params gigIndexedParams
	if !decodeParams(w, req, &params) {
		return
	}
	s.submitAction(w, req, core.Action{
		Name: core.ActionGigSelectProposal,
		From: params.Caller,
		Args: []string{strconv.FormatUint(params.GigID, 10), strconv.FormatUint(params.Index, 10)},
	})
}

type gigActorParams struct {
	GigID  uint64 `json:"gigId"`
	Caller string `json:"caller"`
}

func (s *Server) handleGigDepositStake(w http.ResponseWriter, req *RPCRequest) {
	var params gigActorParams
	if !decodeParams(w, req, &params) {
		return
	}
	s.submitAction(w, req, core.Action{
		Name: core.ActionGigDepositStake,
		From: params.Caller,
		Args: []string{strconv.FormatUint(params.GigID, 10)},
	})
}

func (s *Server) handleGigComplete(w http.ResponseWriter, req *RPCRequest) {
	var params gigActorParams
	if !decodeParams(w, req, &params) {
		return
	}
	s.submitAction(w, req, core.Action{
		Name: core.ActionGigComplete,
		From: params.Caller,
		Args: []string{strconv.FormatUint(params.GigID, 10)},
	})
}

func (s *Server) handleGigCancel(w http.ResponseWriter, req *RPCRequest) {
	var params gigActorParams
	if !decodeParams(w, req, &params) {
		return
	}
	s.submitAction(w, req, core.Action{
		Name: core.ActionGigCancel,
		From: params.Caller,
		Args: []string{strconv.FormatUint(params.GigID, 10)},
	})
}

type gigIDParams struct {
	GigID uint64 `json:"gigId"`
}

type gigJSON struct {
	ID               uint64 `json:"id"`
	Poster           string `json:"poster"`
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	DetailsURI       string `json:"detailsUri"`
	Budget           string `json:"budget"`
	Stake            string `json:"stake"`
	Duration         int64  `json:"duration"`
	ProposalDuration int64  `json:"proposalDuration"`
	Status           uint8  `json:"status"`
	StatusLabel      string `json:"statusLabel"`
	ProposalCount    uint64 `json:"proposalCount"`
	SelectedProposal int64  `json:"selectedProposal"`
	PostedAt         int64  `json:"postedAt"`
	Deadline         int64  `json:"deadline"`
}

func gigToJSON(g *gig.Gig) gigJSON {
	return gigJSON{
		ID:               g.ID,
		Poster:           g.Poster.Hex(),
		Title:            g.Title,
		ShortDescription: g.ShortDescription,
		DetailsURI:       g.DetailsURI,
		Budget:           g.Budget.String(),
		Stake:            g.Stake.String(),
		Duration:         g.Duration,
		ProposalDuration: g.ProposalDuration,
		Status:           uint8(g.Status),
		StatusLabel:      g.Status.String(),
		ProposalCount:    g.ProposalCount,
		SelectedProposal: g.SelectedProposal,
		PostedAt:         g.PostedAt,
		Deadline:         g.Deadline,
	}
}

func (s *Server) handleGigGet(w http.ResponseWriter, req *RPCRequest) {
	var params gigIDParams
	if !decodeParams(w, req, &params) {
		return
	}
	g, ok := s.node.GetGig(params.GigID)
	if !ok {
		writeResult(w, req.ID, nil)
		return
	}
	writeResult(w, req.ID, gigToJSON(g))
}

type proposalJSON struct {
	GigID       uint64 `json:"gigId"`
	Index       uint64 `json:"index"`
	Freelancer  string `json:"freelancer"`
	ProposalURI string `json:"proposalUri"`
	SubmittedAt int64  `json:"submittedAt"`
	IsWithdrawn bool   `json:"isWithdrawn"`
	IsExpired   bool   `json:"isAutoExpired"`
}

func (s *Server) handleGigProposals(w http.ResponseWriter, req *RPCRequest) {
	var params gigIDParams
	if !decodeParams(w, req, &params) {
		return
	}
	props := s.node.GetGigProposals(params.GigID)
	out := make([]proposalJSON, 0, len(props))
	for _, prop := range props {
		out = append(out, proposalJSON{
			GigID:       prop.GigID,
			Index:       prop.Index,
			Freelancer:  prop.Freelancer.Hex(),
			ProposalURI: prop.ProposalURI,
			SubmittedAt: prop.SubmittedAt,
			IsWithdrawn: prop.Withdrawn,
			IsExpired:   prop.AutoExpired,
		})
	}
	writeResult(w, req.ID, out)
}
