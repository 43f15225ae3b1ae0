// Package pricing models the inputs and outputs of price computation.
//
// The package includes:
//   - Configuration: rates, fee and markup percentages, the minimum job price and
//     the peak windows, with literal defaults for anything not configured
//   - Step and StepKind: one recorded adjustment of the running job price
//   - Breakdown: the final job price, customer price and platform fee together with
//     every step that produced them
//
// All amounts are github.com/shopspring/decimal values. Final prices are rounded to
// two decimal places, half away from zero.
package pricing
