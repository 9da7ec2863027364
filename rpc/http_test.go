package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gigchain/core"
	"gigchain/storage"
)

func newTestServer(t *testing.T) (*Server, *int64) {
	t.Helper()
	node, err := core.NewNode(storage.NewMemDB(), core.Params{PlatformFeeBps: 250, StakeGracePeriod: 100})
	require.NoError(t, err)
	clock := int64(1_000)
	node.SetNowFunc(func() int64 { return clock })
	return NewServer(node, nil), &clock
}

func call(t *testing.T, s *Server, method string, params interface{}) (*RPCResponse, int) {
	t.Helper()
	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		req["params"] = []interface{}{params}
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))

	var resp RPCResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return &resp, rec.Code
}

func mustResult(t *testing.T, s *Server, method string, params interface{}) map[string]interface{} {
	t.Helper()
	resp, code := call(t, s, method, params)
	require.Nil(t, resp.Error, "method %s", method)
	require.Equal(t, http.StatusOK, code)
	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok, "method %s result %T", method, resp.Result)
	return result
}

func addrHex(fill byte) string {
	return "0x" + strings.Repeat(fmt.Sprintf("%02x", fill), 20)
}

func TestMethodNotFound(t *testing.T) {
	server, _ := newTestServer(t)
	resp, code := call(t, server, "chain_blockNumber", nil)
	require.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestParseError(t *testing.T) {
	server, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json")))
	var resp RPCResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, codeParseError, resp.Error.Code)
}

func TestParamsMustBeSingleObject(t *testing.T) {
	server, _ := newTestServer(t)
	body := `{"jsonrpc":"2.0","id":1,"method":"token_getBalance","params":[{"address":"` + addrHex(0x01) + `"},{}]}`
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	var resp RPCResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestTokenMintAndBalance(t *testing.T) {
	server, _ := newTestServer(t)
	alice := addrHex(0x01)

	receipt := mustResult(t, server, "token_mint", map[string]interface{}{
		"from": alice, "to": alice, "amount": "750",
	})
	require.Equal(t, "pending", receipt["status"])
	require.NotEmpty(t, receipt["hash"])

	balance := mustResult(t, server, "token_getBalance", map[string]interface{}{"address": alice})
	require.Equal(t, "750", balance["balance"])
	require.Equal(t, alice, balance["address"])
}

func TestReceiptQueryRoundTrip(t *testing.T) {
	server, _ := newTestServer(t)
	alice := addrHex(0x01)

	receipt := mustResult(t, server, "token_mint", map[string]interface{}{
		"from": alice, "to": alice, "amount": "10",
	})
	hash, _ := receipt["hash"].(string)
	require.NotEmpty(t, hash)

	require.Eventually(t, func() bool {
		stored := mustResult(t, server, "chain_getReceipt", map[string]interface{}{"hash": hash})
		return stored["status"] == "confirmed"
	}, time.Second, 5*time.Millisecond)

	// Unknown hashes resolve to null, not an error.
	resp, code := call(t, server, "chain_getReceipt", map[string]interface{}{"hash": "0xdeadbeef"})
	require.Equal(t, http.StatusOK, code)
	require.Nil(t, resp.Error)
	require.Nil(t, resp.Result)
}

func TestBountyRoundTrip(t *testing.T) {
	server, clock := newTestServer(t)
	creator := addrHex(0x01)
	hunter := addrHex(0x02)

	mustResult(t, server, "token_mint", map[string]interface{}{
		"from": creator, "to": creator, "amount": "1000",
	})
	mustResult(t, server, "bounty_create", map[string]interface{}{
		"creator":     creator,
		"name":        "logo design",
		"description": "vector logo",
		"category":    4,
		"deadline":    *clock + 3_600,
		"totalReward": "500",
	})

	bty := mustResult(t, server, "bounty_get", map[string]interface{}{"bountyId": 1})
	require.Equal(t, "open", bty["statusLabel"])
	require.Equal(t, "500", bty["totalReward"])
	require.Equal(t, creator, bty["creator"])

	mustResult(t, server, "bounty_submit", map[string]interface{}{
		"bountyId": 1, "submitter": hunter, "mainUri": "ipfs://entry",
	})
	resp, _ := call(t, server, "bounty_listSubmissions", map[string]interface{}{"bountyId": 1})
	require.Nil(t, resp.Error)
	subs, ok := resp.Result.([]interface{})
	require.True(t, ok)
	require.Len(t, subs, 1)

	mustResult(t, server, "bounty_selectWinners", map[string]interface{}{
		"bountyId": 1, "caller": creator, "winners": []string{hunter}, "percentages": []uint32{70},
	})
	balance := mustResult(t, server, "token_getBalance", map[string]interface{}{"address": hunter})
	require.Equal(t, "350", balance["balance"])

	bty = mustResult(t, server, "bounty_get", map[string]interface{}{"bountyId": 1})
	require.Equal(t, "closed", bty["statusLabel"])
}

func TestBountyGetMissing(t *testing.T) {
	server, _ := newTestServer(t)
	resp, code := call(t, server, "bounty_get", map[string]interface{}{"bountyId": 9})
	require.Equal(t, http.StatusOK, code)
	require.Nil(t, resp.Error)
	require.Nil(t, resp.Result)
}

func TestGigRoundTrip(t *testing.T) {
	server, clock := newTestServer(t)
	poster := addrHex(0x01)
	worker := addrHex(0x02)

	mustResult(t, server, "token_mint", map[string]interface{}{
		"from": poster, "to": poster, "amount": "200",
	})
	mustResult(t, server, "token_mint", map[string]interface{}{
		"from": worker, "to": worker, "amount": "50",
	})
	mustResult(t, server, "gig_post", map[string]interface{}{
		"poster":           poster,
		"title":            "api build",
		"shortDescription": "rest api",
		"detailsUri":       "ipfs://gig",
		"budget":           "200",
		"stake":            "50",
		"duration":         500,
		"proposalDuration": 100,
	})

	*clock += 10
	mustResult(t, server, "gig_submitProposal", map[string]interface{}{
		"gigId": 0, "freelancer": worker, "proposalUri": "ipfs://proposal",
	})
	mustResult(t, server, "gig_selectProposal", map[string]interface{}{
		"gigId": 0, "proposalIndex": 0, "caller": poster,
	})
	mustResult(t, server, "gig_depositStake", map[string]interface{}{
		"gigId": 0, "caller": worker,
	})
	mustResult(t, server, "gig_complete", map[string]interface{}{
		"gigId": 0, "caller": poster,
	})

	g := mustResult(t, server, "gig_get", map[string]interface{}{"gigId": 0})
	require.Equal(t, "completed", g["statusLabel"])

	balance := mustResult(t, server, "token_getBalance", map[string]interface{}{"address": worker})
	require.Equal(t, "245", balance["balance"])
}

func TestErrorCodeMapping(t *testing.T) {
	server, clock := newTestServer(t)
	creator := addrHex(0x01)
	stranger := addrHex(0x02)

	mustResult(t, server, "token_mint", map[string]interface{}{
		"from": creator, "to": creator, "amount": "1000",
	})
	mustResult(t, server, "bounty_create", map[string]interface{}{
		"creator": creator, "name": "task", "category": 0,
		"deadline": *clock + 60, "totalReward": "100",
	})

	// Not the creator: unauthorized, with the failed receipt attached.
	resp, code := call(t, server, "bounty_cancel", map[string]interface{}{
		"bountyId": 1, "caller": stranger,
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeUnauthorized, resp.Error.Code)
	data, ok := resp.Error.Data.(map[string]interface{})
	require.True(t, ok)
	receipt, ok := data["receipt"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "failed", receipt["status"])

	// Unknown identifiers map to the not-found code.
	resp, _ = call(t, server, "bounty_cancel", map[string]interface{}{
		"bountyId": 42, "caller": creator,
	})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeNotFound, resp.Error.Code)

	// Unfunded escrow maps to insufficient funds.
	resp, _ = call(t, server, "token_transfer", map[string]interface{}{
		"from": stranger, "to": creator, "amount": "5",
	})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeInsufficientFunds, resp.Error.Code)
}

func TestSubmitRawAction(t *testing.T) {
	server, _ := newTestServer(t)
	alice := addrHex(0x01)

	receipt := mustResult(t, server, "chain_submitAction", map[string]interface{}{
		"action": "token_mint",
		"from":   alice,
		"args":   []string{alice, "25"},
	})
	require.Equal(t, "pending", receipt["status"])

	resp, _ := call(t, server, "chain_submitAction", map[string]interface{}{
		"action": "token_burn", "from": alice, "args": []string{},
	})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeUnrecognizedAction, resp.Error.Code)
}
