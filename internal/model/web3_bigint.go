package model

import (
	"math"
	"math/big"
)

type Web3BigInt struct {
	Value   string `json:"value"`
	Decimal int    `json:"decimal"`
}

func (w *Web3BigInt) BigInt() (*big.Int, bool) {
	return new(big.Int).SetString(w.Value, 10)
}

func (w *Web3BigInt) ToFloat() float64 {
	num := new(big.Int)
	num.SetString(w.Value, 10)

	floatNum := new(big.Float).SetInt(num)

	divisor := new(big.Float).SetFloat64(math.Pow(10, float64(w.Decimal)))

	floatNum.Quo(floatNum, divisor)

	result, _ := floatNum.Float64()
	return result
}

func (w *Web3BigInt) Add(number *Web3BigInt) *Web3BigInt {
	num1 := new(big.Int)
	num1.SetString(w.Value, 10)

	num2 := new(big.Int)
	num2.SetString(number.Value, 10)

	result := new(big.Int)
	result.Add(num1, num2)

	return &Web3BigInt{
		Value:   result.String(),
		Decimal: w.Decimal,
	}
}

func (w *Web3BigInt) Sub(number *Web3BigInt) *Web3BigInt {
	num1 := new(big.Int)
	num1.SetString(w.Value, 10)

	num2 := new(big.Int)
	num2.SetString(number.Value, 10)

	result := new(big.Int)
	result.Sub(num1, num2)

	return &Web3BigInt{
		Value:   result.String(),
		Decimal: w.Decimal,
	}
}

// Cmp returns -1, 0 or 1 like big.Int.Cmp. Values that fail to parse
// compare as zero; callers validate with IsPositive first.
func (w *Web3BigInt) Cmp(number *Web3BigInt) int {
	num1, ok1 := new(big.Int).SetString(w.Value, 10)
	num2, ok2 := new(big.Int).SetString(number.Value, 10)
	if !ok1 || !ok2 {
		return 0
	}
	return num1.Cmp(num2)
}

// IsPositive reports whether the value parses as a base-10 integer > 0.
func (w *Web3BigInt) IsPositive() bool {
	num, ok := new(big.Int).SetString(w.Value, 10)
	return ok && num.Sign() > 0
}
