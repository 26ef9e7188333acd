package strategy

import "math"

// CalculateMaxQuantity calculates the largest quantity a balance can buy at
// the given price once proportional commission is included.
func CalculateMaxQuantity(balance, price, commissionRate float64) float64 {
	if price <= 0 || balance <= 0 {
		return 0
	}

	maxQty := balance / price

	// Iteratively refine by accounting for commission; converges quickly.
	for i := 0; i < 10; i++ {
		totalCost := maxQty*price + maxQty*price*commissionRate
		if totalCost <= balance {
			break
		}
		maxQty *= balance / totalCost
	}

	return maxQty
}

// CalculateOrderQuantityByPercentage sizes an order to a percentage of the
// balance, commission included.
func CalculateOrderQuantityByPercentage(balance, price, commissionRate, percentage float64) float64 {
	return CalculateMaxQuantity(balance*percentage, price, commissionRate)
}

// RoundToDecimalPrecision truncates a quantity to the given number of
// decimal places so orders never exceed the sized amount.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int) float64 {
	multiplier := math.Pow10(decimalPrecision)

	return math.Floor(quantity*multiplier) / multiplier
}
