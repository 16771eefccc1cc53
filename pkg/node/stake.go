package node

import (
	"context"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"
)

// EnsureRegistered makes the node's account a registered validator, minting
// test tokens from the faucet when the balance cannot cover the minimum
// stake. Already-registered accounts are left untouched.
func (n *Node) EnsureRegistered(ctx context.Context) error {
	addr := n.submitter.Address()

	val, err := n.gateway.Validator(ctx, addr)
	if err != nil {
		return fmt.Errorf("reading validator record: %w", err)
	}
	if val.IsActive {
		n.emit(ctx, zerolog.InfoLevel, fmt.Sprintf(
			"Validator already registered. Stake: %s APDX", toWhole(val.Stake)))
		return nil
	}

	n.emit(ctx, zerolog.InfoLevel, "Validator not registered. Registering...")

	balance, err := n.gateway.TokenBalance(ctx, addr)
	if err != nil {
		return fmt.Errorf("reading token balance: %w", err)
	}
	if balance.Cmp(n.minStake) < 0 {
		n.emit(ctx, zerolog.InfoLevel, "Balance low, requesting from faucet...")
		if _, err := n.submitter.Submit(ctx, n.calls.Faucet()); err != nil {
			return fmt.Errorf("faucet request: %w", err)
		}
	}

	// An approval that reverts (e.g. an allowance already in place) must
	// not block registration; the register call fails on its own if the
	// allowance really is short.
	if _, err := n.submitter.Submit(ctx, n.calls.Approve(n.minStake)); err != nil {
		n.emit(ctx, zerolog.WarnLevel, fmt.Sprintf("Approve skipped: %s", err))
	}

	if _, err := n.submitter.Submit(ctx, n.calls.RegisterValidator(n.minStake)); err != nil {
		return fmt.Errorf("registering validator: %w", err)
	}
	n.emit(ctx, zerolog.InfoLevel, fmt.Sprintf(
		"Registered with stake of %s APDX.", toWhole(n.minStake)))
	return nil
}

// IncreaseStake tops up the node's bonded stake by amount wei, granting a
// spending allowance first when the current one cannot cover it.
func (n *Node) IncreaseStake(ctx context.Context, amount *big.Int) error {
	addr := n.submitter.Address()

	allowance, err := n.gateway.Allowance(ctx, addr)
	if err != nil {
		return fmt.Errorf("reading allowance: %w", err)
	}
	if allowance.Cmp(amount) < 0 {
		if _, err := n.submitter.Submit(ctx, n.calls.Approve(amount)); err != nil {
			return fmt.Errorf("approving stake transfer: %w", err)
		}
	}
	if _, err := n.submitter.Submit(ctx, n.calls.IncreaseStake(amount)); err != nil {
		return fmt.Errorf("increasing stake: %w", err)
	}
	n.emit(ctx, zerolog.InfoLevel, fmt.Sprintf("Stake increased by %s APDX.", toWhole(amount)))
	return nil
}

// DecreaseStake unbonds amount wei. The ledger rejects withdrawals that
// would take the validator under the network minimum.
func (n *Node) DecreaseStake(ctx context.Context, amount *big.Int) error {
	if _, err := n.submitter.Submit(ctx, n.calls.DecreaseStake(amount)); err != nil {
		n.emit(ctx, zerolog.ErrorLevel, "Decrease failed (check minimum stake?)")
		return fmt.Errorf("decreasing stake: %w", err)
	}
	n.emit(ctx, zerolog.InfoLevel, fmt.Sprintf("Stake decreased by %s APDX.", toWhole(amount)))
	return nil
}

// ExitNetwork withdraws the full stake and deregisters, then stops the
// session: a deregistered account has no business polling for work.
func (n *Node) ExitNetwork(ctx context.Context) error {
	if _, err := n.submitter.Submit(ctx, n.calls.ExitNetwork()); err != nil {
		return fmt.Errorf("exiting network: %w", err)
	}
	n.emit(ctx, zerolog.InfoLevel, "Exited the network, stake withdrawn.")
	n.Stop()
	return nil
}
