package sdk

import (
	"context"
	"math/big"

	"gigchain/core/types"
)

// Mint credits freshly minted funds to an account.
func (c *Client) Mint(ctx context.Context, to string, amount *big.Int) (*types.Receipt, error) {
	var receipt types.Receipt
	params := map[string]string{"from": to, "to": to, "amount": amount.String()}
	if err := c.call(ctx, "token_mint", params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// Transfer moves funds between accounts.
func (c *Client) Transfer(ctx context.Context, from, to string, amount *big.Int) (*types.Receipt, error) {
	var receipt types.Receipt
	params := map[string]string{"from": from, "to": to, "amount": amount.String()}
	if err := c.call(ctx, "token_transfer", params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// Approve sets the spender's allowance over the caller's funds. Repeated
// approvals replace the previous value.
func (c *Client) Approve(ctx context.Context, from, spender string, amount *big.Int) (*types.Receipt, error) {
	var receipt types.Receipt
	params := map[string]string{"from": from, "spender": spender, "amount": amount.String()}
	if err := c.call(ctx, "token_approve", params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// TransferFrom spends an allowance on behalf of its owner.
func (c *Client) TransferFrom(ctx context.Context, spender, owner, to string, amount *big.Int) (*types.Receipt, error) {
	var receipt types.Receipt
	params := map[string]string{"from": spender, "owner": owner, "to": to, "amount": amount.String()}
	if err := c.call(ctx, "token_transferFrom", params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// BalanceOf returns the ledger balance of an account.
func (c *Client) BalanceOf(ctx context.Context, address string) (*big.Int, error) {
	var result struct {
		Balance string `json:"balance"`
	}
	if err := c.call(ctx, "token_getBalance", map[string]string{"address": address}, &result); err != nil {
		return nil, err
	}
	balance, ok := new(big.Int).SetString(result.Balance, 10)
	if !ok {
		return nil, &Error{Code: -32000, Message: "malformed balance in response"}
	}
	return balance, nil
}

// AllowanceOf returns the allowance granted by owner to spender.
func (c *Client) AllowanceOf(ctx context.Context, owner, spender string) (*big.Int, error) {
	var result struct {
		Allowance string `json:"allowance"`
	}
	params := map[string]string{"owner": owner, "spender": spender}
	if err := c.call(ctx, "token_getAllowance", params, &result); err != nil {
		return nil, err
	}
	allowance, ok := new(big.Int).SetString(result.Allowance, 10)
	if !ok {
		return nil, &Error{Code: -32000, Message: "malformed allowance in response"}
	}
	return allowance, nil
}
