package bitcoin

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// AddressForms derives every encoding the same key can be paid to.
type AddressForms struct {
	params *chaincfg.Params
}

// NewAddressForms builds AddressForms for params.
func NewAddressForms(params *chaincfg.Params) *AddressForms {
	return &AddressForms{params: params}
}

// Forms returns address followed by its P2PKH and P2WPKH siblings.
// A hex public key (P2PK) expands to both hashes; unknown forms match only themselves.
func (f *AddressForms) Forms(address string) []string {
	forms := []string{address}
	add := func(a btcutil.Address, err error) {
		if err != nil {
			return
		}
		encoded := a.EncodeAddress()
		for _, known := range forms {
			if known == encoded {
				return
			}
		}
		forms = append(forms, encoded)
	}

	decoded, err := btcutil.DecodeAddress(address, f.params)
	if err != nil || !decoded.IsForNet(f.params) {
		return forms
	}
	switch a := decoded.(type) {
	case *btcutil.AddressPubKey:
		hash := btcutil.Hash160(a.ScriptAddress())
		add(btcutil.NewAddressPubKeyHash(hash, f.params))
		add(btcutil.NewAddressWitnessPubKeyHash(hash, f.params))
	case *btcutil.AddressPubKeyHash:
		add(btcutil.NewAddressWitnessPubKeyHash(a.ScriptAddress(), f.params))
	case *btcutil.AddressWitnessPubKeyHash:
		add(btcutil.NewAddressPubKeyHash(a.ScriptAddress(), f.params))
	}
	return forms
}
