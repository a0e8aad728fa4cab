// Package math implements the pure arithmetic used by the pool engines:
// decimal normalization, rounding-directed constant-product conversions,
// fee computation, and integer square roots for initial share minting.
//
// All intermediates run in 256-bit precision so that products of two u64
// reserve values scaled by sys_decimal_value never wrap. Every function
// returns an explicit error instead of saturating silently.
package math

import (
	"github.com/holiman/uint256"

	"github.com/lugondev/go-ammcore/internal/errors"
)

// RoundDirection selects which party rounding favors. Callers choose per
// call site: Ceiling when the result is owed to the pool, Floor when it is
// owed to the user.
type RoundDirection int

const (
	// Floor rounds the quotient down.
	Floor RoundDirection = iota

	// Ceiling rounds the quotient up.
	Ceiling
)

func (d RoundDirection) String() string {
	switch d {
	case Floor:
		return "floor"
	case Ceiling:
		return "ceiling"
	default:
		return "unknown"
	}
}

// pow10 holds the powers of ten representable in a u64 (10^0 .. 10^19).
var pow10 = func() [20]uint64 {
	var t [20]uint64
	t[0] = 1
	for i := 1; i < len(t); i++ {
		t[i] = t[i-1] * 10
	}
	return t
}()

// tenPow returns 10^decimals or an error when the exponent exceeds u64 range.
func tenPow(decimals uint8) (uint64, error) {
	if int(decimals) >= len(pow10) {
		return 0, errors.ErrConversionFailure.WithDetails(map[string]any{
			"decimals": decimals,
		})
	}
	return pow10[decimals], nil
}

// mulDiv computes a*b/c in 256-bit precision with the requested rounding
// and converts the result back to u64.
func mulDiv(a, b, c uint64, direction RoundDirection) (uint64, error) {
	if c == 0 {
		return 0, errors.ErrCheckedDivOverflow
	}
	var num, den, q, rem uint256.Int
	num.Mul(uint256.NewInt(a), uint256.NewInt(b))
	den.SetUint64(c)
	q.DivMod(&num, &den, &rem)
	if direction == Ceiling && !rem.IsZero() {
		q.AddUint64(&q, 1)
	}
	if !q.IsUint64() {
		return 0, errors.ErrConversionFailure
	}
	return q.Uint64(), nil
}

// Normalize rescales amount from its native decimal base to the pool's
// common scale: amount * sysScale / 10^decimals.
func Normalize(amount uint64, decimals uint8, sysScale uint64) (uint64, error) {
	base, err := tenPow(decimals)
	if err != nil {
		return 0, err
	}
	return mulDiv(amount, sysScale, base, Floor)
}

// Restore is the inverse of Normalize: amount * 10^decimals / sysScale.
func Restore(amount uint64, decimals uint8, sysScale uint64) (uint64, error) {
	if sysScale == 0 {
		return 0, errors.ErrCheckedDivOverflow
	}
	base, err := tenPow(decimals)
	if err != nil {
		return 0, err
	}
	return mulDiv(amount, base, sysScale, Floor)
}

// Exchange evaluates the constant-product output for a given net input:
//
//	output = totalOutput - (totalInput * totalOutput) / (totalInput + input)
//
// rounded per direction. totalInput and totalOutput are the reserves of the
// input and output legs respectively.
func Exchange(input, totalInput, totalOutput uint64, direction RoundDirection) (uint64, error) {
	if totalInput == 0 || totalOutput == 0 {
		return 0, errors.ErrCheckedEmptyFunds
	}
	var denom uint256.Int
	denom.AddUint64(uint256.NewInt(totalInput), input)
	if denom.IsZero() {
		return 0, errors.ErrCheckedDivOverflow
	}

	// The direction applies to the kept-back quotient: Ceiling rounds it
	// up, which shrinks the output in the pool's favor.
	var num, q, rem uint256.Int
	num.Mul(uint256.NewInt(totalInput), uint256.NewInt(totalOutput))
	q.DivMod(&num, &denom, &rem)
	if direction == Ceiling && !rem.IsZero() {
		q.AddUint64(&q, 1)
	}

	out := uint256.NewInt(totalOutput)
	if out.Lt(&q) {
		return 0, errors.ErrCheckedSubOverflow
	}
	out.Sub(out, &q)
	if !out.IsUint64() {
		return 0, errors.ErrConversionFailure
	}
	return out.Uint64(), nil
}

// ExchangeBaseOut solves the constant-product formula for the required net
// input given a desired output:
//
//	input = (totalInput * totalOutput) / (totalOutput - output) - totalInput
//
// It rejects output >= totalOutput: the pool cannot be drained to (or past)
// zero on either leg.
func ExchangeBaseOut(output, totalInput, totalOutput uint64, direction RoundDirection) (uint64, error) {
	if totalInput == 0 || totalOutput == 0 {
		return 0, errors.ErrCheckedEmptyFunds
	}
	if output >= totalOutput {
		return 0, errors.ErrInsufficientFunds.WithDetails(map[string]any{
			"output":       output,
			"total_output": totalOutput,
		})
	}
	required, err := mulDiv(totalInput, totalOutput, totalOutput-output, direction)
	if err != nil {
		return 0, err
	}
	if required < totalInput {
		return 0, errors.ErrCheckedSubOverflow
	}
	return required - totalInput, nil
}

// ShareMintAmount converts a contribution into LP shares proportional to the
// pool's current reserve of the same leg.
func ShareMintAmount(contributed, totalContributed, totalShares uint64, direction RoundDirection) (uint64, error) {
	if totalContributed == 0 {
		return 0, errors.ErrCheckedEmptyFunds
	}
	return mulDiv(contributed, totalShares, totalContributed, direction)
}

// ShareRedeemAmount converts LP shares into the reserve amount they redeem.
func ShareRedeemAmount(shares, totalShares, totalReserve uint64, direction RoundDirection) (uint64, error) {
	if totalShares == 0 {
		return 0, errors.ErrCheckedEmptyFunds
	}
	return mulDiv(shares, totalReserve, totalShares, direction)
}

// ApplyRatio computes amount * numerator / denominator with the requested
// rounding.
func ApplyRatio(amount, numerator, denominator uint64, direction RoundDirection) (uint64, error) {
	return mulDiv(amount, numerator, denominator, direction)
}

// Fee computes ceil(amount * numerator / denominator). Fees always round in
// the protocol's favor.
func Fee(amount, numerator, denominator uint64) (uint64, error) {
	return mulDiv(amount, numerator, denominator, Ceiling)
}

// InitialShares returns floor(sqrt(reserveA * reserveB)), the share supply
// minted by the very first liquidity provision.
func InitialShares(reserveA, reserveB uint64) (uint64, error) {
	var prod, root uint256.Int
	prod.Mul(uint256.NewInt(reserveA), uint256.NewInt(reserveB))
	root.Sqrt(&prod)
	if !root.IsUint64() {
		return 0, errors.ErrConversionFailure
	}
	return root.Uint64(), nil
}

// PnlBaseline rescales the stored baseline (bx, by) to the current price
// implied by the reserves (x1, y1):
//
//	x2 = sqrt(bx*by * x1/y1)
//	y2 = x2 * y1 / x1
//
// The caller has already verified x1*y1 >= bx*by; the returned point lies on
// the baseline's invariant curve at the current price, so (x1-x2, y1-y2) is
// the profit attributable to fees since the last reconciliation.
func PnlBaseline(x1, y1, bx, by uint64) (x2, y2 uint64, err error) {
	if x1 == 0 || y1 == 0 {
		return 0, 0, errors.ErrCheckedEmptyFunds
	}
	var prod, scaled, root uint256.Int
	prod.Mul(uint256.NewInt(bx), uint256.NewInt(by))
	scaled.Mul(&prod, uint256.NewInt(x1))
	scaled.Div(&scaled, uint256.NewInt(y1))
	root.Sqrt(&scaled)
	if !root.IsUint64() {
		return 0, 0, errors.ErrConversionFailure
	}
	x2 = root.Uint64()
	y2, err = mulDiv(x2, y1, x1, Floor)
	if err != nil {
		return 0, 0, err
	}
	return x2, y2, nil
}

// ProductGE reports whether x1*y1 >= x2*y2, in 256-bit precision.
func ProductGE(x1, y1, x2, y2 uint64) bool {
	var p1, p2 uint256.Int
	p1.Mul(uint256.NewInt(x1), uint256.NewInt(y1))
	p2.Mul(uint256.NewInt(x2), uint256.NewInt(y2))
	return !p1.Lt(&p2)
}

// CheckedAdd returns a+b or an overflow error.
func CheckedAdd(a, b uint64) (uint64, error) {
	s := a + b
	if s < a {
		return 0, errors.ErrCheckedAddOverflow
	}
	return s, nil
}

// CheckedSub returns a-b or an underflow error.
func CheckedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, errors.ErrCheckedSubOverflow.WithDetails(map[string]any{
			"minuend":    a,
			"subtrahend": b,
		})
	}
	return a - b, nil
}

// CheckedMul returns a*b or an overflow error.
func CheckedMul(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if p/a != b {
		return 0, errors.ErrCheckedMulOverflow
	}
	return p, nil
}
