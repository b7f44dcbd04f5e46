package decoder

import (
	"fmt"
	"math/big"
	"strings"
)

const tokenDecimals = 18

var weiPerToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(tokenDecimals), nil)

// FormatTokenAmount converts a raw 18-decimal token amount to a whole-token
// decimal string. The division is exact integer arithmetic, so amounts larger
// than float64 can represent survive the conversion unchanged.
func FormatTokenAmount(raw *big.Int) string {
	quo, rem := new(big.Int).QuoRem(raw, weiPerToken, new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}

	frac := fmt.Sprintf("%0*s", tokenDecimals, rem.String())
	frac = strings.TrimRight(frac, "0")
	return quo.String() + "." + frac
}
