package rpc

import (
	"net/http"
	"strconv"
	"strings"

	"gigchain/core"
	"gigchain/native/bounty"
)

type bountyCreateParams struct {
	Creator     string `json:"creator"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    uint32 `json:"category"`
	Deadline    int64  `json:"deadline"`
	TotalReward string `json:"totalReward"`
}

func (s *Server) handleBountyCreate(w http.ResponseWriter, req *RPCRequest) {
	var params bountyCreateParams
	if !decodeParams(w, req, &params) {
		return
	}
	s.submitAction(w, req, core.Action{
		Name: core.ActionBountyCreate,
		From: params.Creator,
		Args: []string{
			params.Name,
			params.Description,
			strconv.FormatUint(uint64(params.Category), 10),
			strconv.FormatInt(params.Deadline, 10),
			params.TotalReward,
		},
	})
}

type bountySubmitParams struct {
	BountyID     uint64   `json:"bountyId"`
	Submitter    string   `json:"submitter"`
	MainURI      string   `json:"mainUri"`
	EvidenceURIs []string `json:"evidenceUris,omitempty"`
}

func (s *Server) handleBountySubmit(w http.ResponseWriter, req *RPCRequest) {
	var params bountySubmitParams
	if !decodeParams(w, req, &params) {
		return
	}
	args := append([]string{strconv.FormatUint(params.BountyID, 10), params.MainURI}, params.EvidenceURIs...)
	s.submitAction(w, req, core.Action{Name: core.ActionBountySubmit, From: params.Submitter, Args: args})
}

type bountySelectWinnersParams struct {
	BountyID    uint64   `json:"bountyId"`
	Caller      string   `json:"caller"`
	Winners     []string `json:"winners"`
	Percentages []uint32 `json:"percentages"`
}

func (s *Server) handleBountySelectWinners(w http.ResponseWriter, req *RPCRequest) {
	var params bountySelectWinnersParams
	if !decodeParams(w, req, &params) {
		return
	}
	pcts := make([]string, 0, len(params.Percentages))
	for _, pct := range params.Percentages {
		pcts = append(pcts, strconv.FormatUint(uint64(pct), 10))
	}
	s.submitAction(w, req, core.Action{
		Name: core.ActionBountySelectWinners,
		From: params.Caller,
		Args: []string{
			strconv.FormatUint(params.BountyID, 10),
			strings.Join(params.Winners, ","),
			strings.Join(pcts, ","),
		},
	})
}

type bountyActorParams struct {
	BountyID uint64 `json:"bountyId"`
	Caller   string `json:"caller"`
}

func (s *Server) handleBountyCancel(w http.ResponseWriter, req *RPCRequest) {
	var params bountyActorParams
	if !decodeParams(w, req, &params) {
		return
	}
	s.submitAction(w, req, core.Action{
		Name: core.ActionBountyCancel,
		From: params.Caller,
		Args: []string{strconv.FormatUint(params.BountyID, 10)},
	})
}

type bountyIDParams struct {
	BountyID uint64 `json:"bountyId"`
}

type bountyJSON struct {
	ID              uint64 `json:"id"`
	Creator         string `json:"creator"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Category        uint8  `json:"category"`
	Deadline        int64  `json:"deadline"`
	TotalReward     string `json:"totalReward"`
	Status          uint8  `json:"status"`
	StatusLabel     string `json:"statusLabel"`
	SubmissionCount uint64 `json:"submissionCount"`
	CreatedAt       int64  `json:"createdAt"`
}

func bountyToJSON(b *bounty.Bounty) bountyJSON {
	return bountyJSON{
		ID:              b.ID,
		Creator:         b.Creator.Hex(),
		Name:            b.Name,
		Description:     b.Description,
		Category:        uint8(b.Category),
		Deadline:        b.Deadline,
		TotalReward:     b.TotalReward.String(),
		Status:          uint8(b.Status),
		StatusLabel:     b.Status.String(),
		SubmissionCount: b.SubmissionCount,
		CreatedAt:       b.CreatedAt,
	}
}

func (s *Server) handleBountyGet(w http.ResponseWriter, req *RPCRequest) {
	var params bountyIDParams
	if !decodeParams(w, req, &params) {
		return
	}
	bty, ok := s.node.GetBounty(params.BountyID)
	if !ok {
		writeResult(w, req.ID, nil)
		return
	}
	writeResult(w, req.ID, bountyToJSON(bty))
}

type submissionJSON struct {
	BountyID     uint64   `json:"bountyId"`
	Submitter    string   `json:"submitter"`
	MainURI      string   `json:"mainUri"`
	EvidenceURIs []string `json:"evidenceUris,omitempty"`
	SubmittedAt  int64    `json:"submittedAt"`
}

func (s *Server) handleBountySubmissions(w http.ResponseWriter, req *RPCRequest) {
	var params bountyIDParams
	if !decodeParams(w, req, &params) {
		return
	}
	subs := s.node.GetBountySubmissions(params.BountyID)
	out := make([]submissionJSON, 0, len(subs))
	for _, sub := range subs {
		out = append(out, submissionJSON{
			BountyID:     sub.BountyID,
			Submitter:    sub.Submitter.Hex(),
			MainURI:      sub.MainURI,
			EvidenceURIs: sub.EvidenceURIs,
			SubmittedAt:  sub.SubmittedAt,
		})
	}
	writeResult(w, req.ID, out)
}
