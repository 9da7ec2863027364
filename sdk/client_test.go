package sdk

import (
	"context"
	"errors"
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"gigchain/core"
	"gigchain/core/types"
	"gigchain/rpc"
	"gigchain/storage"
)

func newTestClient(t *testing.T) (*Client, *int64) {
	t.Helper()
	node, err := core.NewNode(storage.NewMemDB(), core.Params{PlatformFeeBps: 250, StakeGracePeriod: 100})
	require.NoError(t, err)
	clock := int64(1_000)
	node.SetNowFunc(func() int64 { return clock })

	server := httptest.NewServer(rpc.NewServer(node, nil).Handler())
	t.Cleanup(server.Close)

	client, err := New(server.URL)
	require.NoError(t, err)
	return client, &clock
}

func hexAddr(fill byte) string {
	var addr types.Address
	for i := range addr {
		addr[i] = fill
	}
	return addr.Hex()
}

func TestNewRequiresEndpoint(t *testing.T) {
	_, err := New("  ")
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	alice := hexAddr(0x01)
	bob := hexAddr(0x02)

	receipt, err := client.Mint(ctx, alice, big.NewInt(100))
	require.NoError(t, err)
	require.Equal(t, types.ReceiptPending, receipt.Status)

	_, err = client.Transfer(ctx, alice, bob, big.NewInt(40))
	require.NoError(t, err)

	balance, err := client.BalanceOf(ctx, bob)
	require.NoError(t, err)
	require.Zero(t, balance.Cmp(big.NewInt(40)))

	stored, err := client.GetReceipt(ctx, receipt.Hash)
	require.NoError(t, err)
	require.NotNil(t, stored)

	missing, err := client.GetReceipt(ctx, "0xdeadbeef")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestBountyLifecycle(t *testing.T) {
	client, clock := newTestClient(t)
	ctx := context.Background()
	creator := hexAddr(0x01)
	hunter := hexAddr(0x02)

	_, err := client.Mint(ctx, creator, big.NewInt(1_000))
	require.NoError(t, err)

	_, err = client.CreateBounty(ctx, CreateBountyRequest{
		Creator:     creator,
		Name:        "logo design",
		Category:    4,
		Deadline:    *clock + 3_600,
		TotalReward: "500",
	})
	require.NoError(t, err)

	count, err := client.BountyCount(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	_, err = client.SubmitBountyEntry(ctx, 1, hunter, "ipfs://entry", "ipfs://extra")
	require.NoError(t, err)
	subs, err := client.ListBountySubmissions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, []string{"ipfs://extra"}, subs[0].EvidenceURIs)

	_, err = client.SelectBountyWinners(ctx, 1, creator, []string{hunter}, []uint32{70})
	require.NoError(t, err)

	bty, err := client.GetBounty(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, bty)
	require.Equal(t, "closed", bty.StatusLabel)
	reward, ok := bty.RewardOf()
	require.True(t, ok)
	require.Zero(t, reward.Cmp(big.NewInt(500)))

	balance, err := client.BalanceOf(ctx, hunter)
	require.NoError(t, err)
	require.Zero(t, balance.Cmp(big.NewInt(350)))
}

func TestGigLifecycle(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	poster := hexAddr(0x01)
	worker := hexAddr(0x02)

	_, err := client.Mint(ctx, poster, big.NewInt(200))
	require.NoError(t, err)
	_, err = client.Mint(ctx, worker, big.NewInt(50))
	require.NoError(t, err)

	_, err = client.PostGig(ctx, PostGigRequest{
		Poster:           poster,
		Title:            "api build",
		Budget:           "200",
		Stake:            "50",
		Duration:         500,
		ProposalDuration: 100,
	})
	require.NoError(t, err)

	_, err = client.SubmitGigProposal(ctx, 0, worker, "ipfs://proposal")
	require.NoError(t, err)
	_, err = client.SelectGigProposal(ctx, 0, 0, poster)
	require.NoError(t, err)
	_, err = client.DepositGigStake(ctx, 0, worker)
	require.NoError(t, err)
	_, err = client.CompleteGig(ctx, 0, poster)
	require.NoError(t, err)

	g, err := client.GetGig(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, g)
	require.Equal(t, "completed", g.StatusLabel)

	balance, err := client.BalanceOf(ctx, worker)
	require.NoError(t, err)
	require.Zero(t, balance.Cmp(big.NewInt(245)))
}

func TestErrorSurfacesCode(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.CancelBounty(ctx, 42, hexAddr(0x01))
	require.Error(t, err)
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, -32040, rpcErr.Code)
}

func TestSubmitRawAction(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	alice := hexAddr(0x01)

	receipt, err := client.SubmitAction(ctx, core.Action{
		Name: core.ActionTokenMint,
		From: alice,
		Args: []string{alice, "25"},
	})
	require.NoError(t, err)
	require.Equal(t, types.ReceiptPending, receipt.Status)

	_, err = client.SubmitAction(ctx, core.Action{Name: "token_burn", From: alice})
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, -32045, rpcErr.Code)
}
