package keystore

import (
	"math/big"

	"github.com/vaultsandbox/toyrsa/internal/codec"
)

func parseDecimals(values ...string) ([]*big.Int, error) {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		n, err := codec.ParseDecimal(v)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
