package service

import (
	"errors"
)

// Пределы учёта. Любая сумма не больше MaxAmount, поэтому сложение двух сумм не переполняет int64.
const (
	MaxAmount   int64 = 1_000_000_000_000
	MaxQuantity int64 = 1_000_000
)

var ErrAmountTooLarge = errors.New("amount too large")

// lineSum цена * количество с проверкой предела
func lineSum(price, qty int64) (int64, error) {
	if price < 0 || qty < 0 || price > MaxAmount || qty > MaxQuantity {
		return 0, ErrInvalidInput
	}
	if price > 0 && qty > MaxAmount/price {
		return 0, ErrAmountTooLarge
	}
	return price * qty, nil
}

// addAmount a + b, оба в пределах [0, MaxAmount]
func addAmount(a, b int64) (int64, error) {
	if a < 0 || b < 0 || a > MaxAmount || b > MaxAmount {
		return 0, ErrInvalidInput
	}
	if a > MaxAmount-b {
		return 0, ErrAmountTooLarge
	}
	return a + b, nil
}

// percentOf доля percent/100 от v без промежуточного переполнения
func percentOf(v, percent int64) int64 {
	return v/100*percent + v%100*percent/100
}
