package bitcoin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cenkalti/backoff/v4"
	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

const (
	defaultRetryDelay = 1500 * time.Millisecond
	defaultMaxRetries = 3
)

// NodeClient reads transactions, heights and address coins from a node.
type NodeClient struct {
	client     RPCClient
	decoder    *ScriptDecoder
	limiter    ratelimit.Limiter
	logger     *zap.Logger
	retryDelay time.Duration
	maxRetries uint64
}

// NewNodeClient wraps client with rate limiting, bounded retries and model conversion.
func NewNodeClient(client RPCClient, decoder *ScriptDecoder, limiter ratelimit.Limiter, logger *zap.Logger) *NodeClient {
	return &NodeClient{
		client:     client,
		decoder:    decoder,
		limiter:    limiter,
		logger:     logger.Named("node_client"),
		retryDelay: defaultRetryDelay,
		maxRetries: defaultMaxRetries,
	}
}

// GetBlockCount returns the height of the node's best chain.
func (c *NodeClient) GetBlockCount(ctx context.Context) (int64, error) {
	var count int64
	err := c.call(ctx, "getblockcount", func() (err error) {
		count, err = c.client.GetBlockCount()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("get block count: %w", err)
	}
	return count, nil
}

// GetTransaction fetches a transaction with its block height, -1 while it sits in the mempool.
func (c *NodeClient) GetTransaction(ctx context.Context, txid string) (*model.RawTransaction, error) {
	txHash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return nil, fmt.Errorf("parse txid %q: %w", txid, model.ErrNotFound)
	}

	var raw *btcjson.TxRawResult
	err = c.call(ctx, "getrawtransaction", func() (err error) {
		raw, err = c.client.GetRawTransactionVerbose(txHash)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", txid, err)
	}

	block := model.UnconfirmedHeight
	if raw.BlockHash != "" {
		block, err = c.blockHeight(ctx, raw.BlockHash)
		if err != nil {
			return nil, fmt.Errorf("get transaction %s: %w", txid, err)
		}
	}

	tx, err := BuildRawTransaction(*raw, block, c.decoder)
	if err != nil {
		return nil, fmt.Errorf("convert transaction %s: %w", txid, err)
	}
	return &tx, nil
}

// GetCoinsByAddress lists the unspent outputs the node's address index holds for address.
func (c *NodeClient) GetCoinsByAddress(ctx context.Context, address string) ([]model.NodeCoin, error) {
	param, err := json.Marshal(address)
	if err != nil {
		return nil, fmt.Errorf("encode address: %w", err)
	}

	var payload json.RawMessage
	err = c.call(ctx, "getcoinsbyaddress", func() (err error) {
		payload, err = c.client.RawRequest("getcoinsbyaddress", []json.RawMessage{param})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get coins by address %s: %w", address, err)
	}

	var coins []model.NodeCoin
	if err := json.Unmarshal(payload, &coins); err != nil {
		return nil, fmt.Errorf("decode coins of %s: %w", address, err)
	}
	return coins, nil
}

func (c *NodeClient) blockHeight(ctx context.Context, blockHash string) (int64, error) {
	hash, err := chainhash.NewHashFromStr(blockHash)
	if err != nil {
		return 0, fmt.Errorf("parse block hash %q: %w", blockHash, err)
	}
	var header *btcjson.GetBlockHeaderVerboseResult
	err = c.call(ctx, "getblockheader", func() (err error) {
		header, err = c.client.GetBlockHeaderVerbose(hash)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("get block header %s: %w", blockHash, err)
	}
	return int64(header.Height), nil
}

// call runs fn under the rate limit, retrying transport failures with a constant delay.
// RPC error replies are not retried; code -5 maps to model.ErrNotFound.
func (c *NodeClient) call(ctx context.Context, method string, fn func() error) error {
	attempt := 0
	permanent := false
	operation := func() error {
		if err := ctx.Err(); err != nil {
			permanent = true
			return backoff.Permanent(err)
		}
		c.limiter.Take()
		attempt++

		err := fn()
		if err == nil {
			return nil
		}
		var rpcErr *btcjson.RPCError
		if errors.As(err, &rpcErr) {
			permanent = true
			if rpcErr.Code == btcjson.ErrRPCInvalidAddressOrKey {
				return backoff.Permanent(fmt.Errorf("%s: %w: %s", method, model.ErrNotFound, rpcErr.Message))
			}
			return backoff.Permanent(fmt.Errorf("%s: %w", method, err))
		}
		c.logger.Warn("node call failed",
			zap.String("method", method),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), c.maxRetries),
		ctx,
	)
	err := backoff.Retry(operation, policy)
	if err == nil || permanent || ctx.Err() != nil {
		return err
	}
	return fmt.Errorf("%s after %d attempts: %w: %v", method, attempt, model.ErrUpstreamUnavailable, err)
}
