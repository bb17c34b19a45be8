// Package bitcoin implements Bitcoin-specific node access and address handling.
package bitcoin

import (
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
)

// BtcToSatoshis converts a BTC amount to satoshis.
func BtcToSatoshis(value float64) (int64, error) {
	amt, err := btcutil.NewAmount(value)
	if err != nil {
		return 0, err
	}
	if amt < 0 {
		return 0, fmt.Errorf("negative amount: %d", amt)
	}
	return int64(amt), nil
}

// BuildRawTransaction maps a verbose node transaction to model.RawTransaction.
// Coinbase inputs are mapped to the all-zero prevout.
func BuildRawTransaction(src btcjson.TxRawResult, block int64, decoder *ScriptDecoder) (model.RawTransaction, error) {
	tx := model.RawTransaction{
		Hash:    src.Txid,
		Block:   block,
		Inputs:  make([]model.RawInput, 0, len(src.Vin)),
		Outputs: make([]model.Output, 0, len(src.Vout)),
	}

	for _, vin := range src.Vin {
		if vin.IsCoinBase() {
			tx.Inputs = append(tx.Inputs, model.RawInput{
				Prevout: model.Prevout{Hash: model.CoinbasePrevoutHash, Index: ^uint32(0)},
				Script:  vin.Coinbase,
			})
			continue
		}
		in := model.RawInput{Prevout: model.Prevout{Hash: vin.Txid, Index: vin.Vout}}
		if vin.ScriptSig != nil {
			in.Script = vin.ScriptSig.Hex
		}
		tx.Inputs = append(tx.Inputs, in)
	}

	for _, vout := range src.Vout {
		value, err := BtcToSatoshis(vout.Value)
		if err != nil {
			return model.RawTransaction{}, fmt.Errorf("tx %s vout %d value: %w", src.Txid, vout.N, err)
		}
		address, err := decoder.DecodeAddress(vout)
		if err != nil {
			return model.RawTransaction{}, fmt.Errorf("tx %s vout %d address: %w", src.Txid, vout.N, err)
		}
		tx.Outputs = append(tx.Outputs, model.Output{
			Value:   value,
			Address: address,
			Script:  vout.ScriptPubKey.Hex,
		})
	}

	return tx, nil
}
