// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pricing

import "fmt"

// Breakdown is the cost of a token volume at a given rate.
type Breakdown struct {
	InputCost  float64 `json:"inputCost"`
	OutputCost float64 `json:"outputCost"`
	Total      float64 `json:"total"`
	Currency   string  `json:"currency"`
}

// Calculate prices requests calls that each consume inputTokens and
// produce outputTokens. The arithmetic is linear in requests, so
// doubling requests exactly doubles every field.
func Calculate(rate Rate, requests, inputTokens, outputTokens float64) Breakdown {
	currency := rate.Currency
	if currency == "" {
		currency = "USD"
	}
	in := (requests * inputTokens / 1000) * rate.InputPerKTokens
	out := (requests * outputTokens / 1000) * rate.OutputPerKTokens
	return Breakdown{
		InputCost:  in,
		OutputCost: out,
		Total:      in + out,
		Currency:   currency,
	}
}

// FormatCost formats an amount for display, e.g. "$0.0045".
func FormatCost(amount float64, currency string) string {
	if currency == "" || currency == "USD" {
		return fmt.Sprintf("$%.4f", amount)
	}
	return fmt.Sprintf("%.4f %s", amount, currency)
}

// FormatTokens formats a token count with units.
func FormatTokens(tokens int) string {
	if tokens >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(tokens)/1_000_000.0)
	}
	if tokens >= 1_000 {
		return fmt.Sprintf("%.1fK", float64(tokens)/1_000.0)
	}
	return fmt.Sprintf("%d", tokens)
}
