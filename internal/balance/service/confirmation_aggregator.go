package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ConfirmationAggregator keeps account snapshots at 0, 3 and 6 confirmations in step with
// transaction and block notifications.
type ConfirmationAggregator struct {
	accounts  AccountRepository
	resolver  TransactionResolver
	balances  BalanceSource
	publisher BalancePublisher
	metrics   AggregatorMetrics
	logger    *zap.Logger
}

func NewConfirmationAggregator(
	accounts AccountRepository,
	resolver TransactionResolver,
	balances BalanceSource,
	publisher BalancePublisher,
	metrics AggregatorMetrics,
	logger *zap.Logger,
) *ConfirmationAggregator {
	return &ConfirmationAggregator{
		accounts:  accounts,
		resolver:  resolver,
		balances:  balances,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.Named("aggregator"),
	}
}

// HandleTransactionEvent applies every transaction of the event the account has not seen yet.
// Stale writes are dropped silently; unknown transactions are skipped and reported together.
func (a *ConfirmationAggregator) HandleTransactionEvent(ctx context.Context, event model.TransactionEvent) (err error) {
	started := time.Now()
	defer func() {
		a.metrics.ObserveTransactionEvent(err, len(event.Txs), started)
	}()

	if event.Address == "" {
		return fmt.Errorf("transaction event without address: %w", model.ErrMalformedPayload)
	}

	account, err := a.accounts.FindByAddress(ctx, event.Address)
	switch {
	case errors.Is(err, model.ErrNotFound):
		account = model.Account{Address: event.Address}
	case err != nil:
		return fmt.Errorf("load account %s: %w", event.Address, err)
	}

	logger := a.logger.With(zap.String("address", event.Address))
	var skipped error
	for _, txid := range account.LastTxs.Unseen(event.Txs) {
		applyErr := a.applyTransaction(ctx, event.Address, txid)
		switch {
		case applyErr == nil:
		case errors.Is(applyErr, model.ErrStaleWrite):
			logger.Debug("newer reconciliation already stored", zap.String("txid", txid))
			a.metrics.ObserveSkipped(skipStaleWrite)
		case errors.Is(applyErr, model.ErrNotFound):
			logger.Warn("transaction skipped", zap.String("txid", txid), zap.Error(applyErr))
			a.metrics.ObserveSkipped(skipNotFound)
			skipped = multierr.Append(skipped, applyErr)
		default:
			return multierr.Append(skipped, fmt.Errorf("apply transaction %s: %w", txid, applyErr))
		}
	}

	logger.Info("balance updated", zap.Int("txs", len(event.Txs)))
	return skipped
}

func (a *ConfirmationAggregator) applyTransaction(ctx context.Context, address, txid string) error {
	tx, err := a.resolver.Resolve(ctx, txid)
	if err != nil {
		return err
	}

	fresh, err := a.balances.FreshBalance(ctx, address)
	if err != nil {
		return fmt.Errorf("fresh balance of %s: %w", address, err)
	}

	tx.Confirmations = tx.ConfirmationsAt(fresh.LastBlockCheck)
	patch := model.NewBalancePatch(tx.Confirmations, fresh.Balance)
	saved, err := a.accounts.ApplyTransactionUpdate(ctx, address, patch, fresh.LastBlockCheck, model.TrackedTx{
		TxID:        tx.Hash,
		BlockHeight: tx.Block,
	})
	if err != nil {
		return err
	}

	return a.publish(ctx, address, saved.Balances, *tx)
}

// HandleBlockEvent re-snapshots accounts whose tracked transactions reach exactly 3 or 6
// confirmations at the new height, then moves every open account's window to that height.
func (a *ConfirmationAggregator) HandleBlockEvent(ctx context.Context, event model.BlockEvent) (err error) {
	started := time.Now()
	accounts := 0
	defer func() {
		a.metrics.ObserveBlockEvent(err, accounts, started)
	}()

	if event.Block < 0 {
		return fmt.Errorf("block event height %d: %w", event.Block, model.ErrMalformedPayload)
	}

	open, err := a.accounts.ListOpenAccounts(ctx, event.Block)
	if err != nil {
		return fmt.Errorf("list open accounts below %d: %w", event.Block, err)
	}
	accounts = len(open)

	var skipped error
	for _, account := range open {
		advanceErr := a.advanceAccount(ctx, account, event.Block)
		if advanceErr == nil {
			continue
		}
		if !errors.Is(advanceErr, model.ErrNotFound) {
			return multierr.Append(skipped, fmt.Errorf("advance account %s: %w", account.Address, advanceErr))
		}
		skipped = multierr.Append(skipped, advanceErr)
	}

	a.logger.Info("block processed", zap.Int64("block", event.Block), zap.Int("accounts", accounts))
	return skipped
}

// advanceAccount returns model.ErrNotFound only after the window was moved.
func (a *ConfirmationAggregator) advanceAccount(ctx context.Context, account model.Account, height int64) error {
	logger := a.logger.With(zap.String("address", account.Address), zap.Int64("block", height))

	var skipped error
	milestones := account.LastTxs.Milestones(height)
	if len(milestones) > 0 {
		fresh, err := a.balances.FreshBalance(ctx, account.Address)
		if err != nil {
			return fmt.Errorf("fresh balance: %w", err)
		}

		for _, tracked := range milestones {
			tx, err := a.resolver.Resolve(ctx, tracked.TxID)
			if errors.Is(err, model.ErrNotFound) {
				logger.Warn("milestone skipped", zap.String("txid", tracked.TxID), zap.Error(err))
				a.metrics.ObserveSkipped(skipNotFound)
				skipped = multierr.Append(skipped, err)
				continue
			}
			if err != nil {
				return err
			}

			tx.Confirmations = height - tracked.BlockHeight
			saved, err := a.accounts.ApplyPatch(ctx, account.Address, model.NewBalancePatch(tx.Confirmations, fresh.Balance))
			if err != nil {
				return fmt.Errorf("apply milestone %s: %w", tracked.TxID, err)
			}
			if err := a.publish(ctx, account.Address, saved.Balances, *tx); err != nil {
				return err
			}
		}
	}

	if err := a.accounts.CloseWindow(ctx, account.Address, height); err != nil {
		return fmt.Errorf("close window: %w", err)
	}
	return skipped
}

func (a *ConfirmationAggregator) publish(ctx context.Context, address string, balances model.Balances, tx model.ResolvedTransaction) error {
	if err := a.publisher.PublishBalance(ctx, model.BalanceUpdate{
		Address:  address,
		Balances: balances,
		Tx:       tx,
	}); err != nil {
		return fmt.Errorf("publish balance of %s: %w", address, err)
	}
	a.metrics.ObservePublished()
	return nil
}
