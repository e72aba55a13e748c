package dto

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)
	uintRe       = regexp.MustCompile(`^[0-9]{1,78}$`)
	maxUint256   = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
		_ = v.RegisterValidation("eth_address", validateEthAddress)
		_ = v.RegisterValidation("uint256", validateUint256)
		_ = v.RegisterValidation("hexdata", validateHexData)
		_ = v.RegisterValidation("usd_amount", validateUSDAmount)
	}
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

// validateEthAddress accepts 0x-prefixed 20-byte hex addresses.
func validateEthAddress(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// validateUint256 accepts a base-10 integer that fits in a uint256.
func validateUint256(fl validator.FieldLevel) bool {
	n, ok := ParseUint256(fl.Field().String())
	return ok && n != nil
}

// validateHexData accepts 0x-prefixed hex with an even number of digits.
func validateHexData(fl validator.FieldLevel) bool {
	_, err := hexutil.Decode(fl.Field().String())
	return err == nil
}

// validateUSDAmount accepts a positive decimal with at most two places.
func validateUSDAmount(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive() && d.Exponent() >= -2
}

// ParseUint256 parses a base-10 uint256. Empty input yields (nil, true).
func ParseUint256(s string) (*big.Int, bool) {
	if s == "" {
		return nil, true
	}
	if !uintRe.MatchString(s) {
		return nil, false
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Cmp(maxUint256) > 0 {
		return nil, false
	}
	return n, true
}
