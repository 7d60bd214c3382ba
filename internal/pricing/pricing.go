// Package pricing computes order totals with volume discounts and delivery
// fees. The engine is a pure calculator over the configured tiers; it keeps
// no state between calls.
package pricing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/config"
)

// Breakdown is the full pricing of one order.
type Breakdown struct {
	Bundles               int
	UnitPrice             float64
	Subtotal              float64
	DiscountPercent       float64
	DiscountAmount        float64
	SubtotalAfterDiscount float64
	DeliveryFee           float64
	Total                 float64
}

// Engine calculates order pricing. Fields are exported so tests can build
// engines with known values directly.
type Engine struct {
	UnitPrice      float64
	CurrencySymbol string
	DeliveryFee    float64
	Tiers          []config.DiscountTier // sorted ascending by threshold
}

// New builds an engine from the loaded configuration.
func New(cfg *config.Config) *Engine {
	tiers := make([]config.DiscountTier, len(cfg.VolumeDiscounts))
	copy(tiers, cfg.VolumeDiscounts)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Threshold < tiers[j].Threshold })

	return &Engine{
		UnitPrice:      cfg.PricePerBundle,
		CurrencySymbol: cfg.CurrencySymbol,
		DeliveryFee:    cfg.DeliveryFee,
		Tiers:          tiers,
	}
}

// DiscountPercent returns the discount for a bundle count: the percent of
// the greatest configured threshold not exceeding it, or zero.
func (e *Engine) DiscountPercent(bundles int) float64 {
	percent := 0.0
	for _, tier := range e.Tiers {
		if bundles >= tier.Threshold {
			percent = tier.Percent
		}
	}
	return percent
}

// Calculate produces the complete pricing breakdown for a bundle count.
func (e *Engine) Calculate(bundles int) Breakdown {
	subtotal := float64(bundles) * e.UnitPrice
	discountPercent := e.DiscountPercent(bundles)
	discountAmount := subtotal * (discountPercent / 100)
	afterDiscount := subtotal - discountAmount

	return Breakdown{
		Bundles:               bundles,
		UnitPrice:             e.UnitPrice,
		Subtotal:              subtotal,
		DiscountPercent:       discountPercent,
		DiscountAmount:        discountAmount,
		SubtotalAfterDiscount: afterDiscount,
		DeliveryFee:           e.DeliveryFee,
		Total:                 afterDiscount + e.DeliveryFee,
	}
}

// FormatPrice renders an amount with the configured currency symbol.
func (e *Engine) FormatPrice(amount float64) string {
	return fmt.Sprintf("%s%.2f", e.CurrencySymbol, amount)
}

// Summary renders the WhatsApp pricing breakdown message for a bundle count.
func (e *Engine) Summary(bundles int) string {
	b := e.Calculate(bundles)

	lines := []string{
		"💰 *Pricing Breakdown*",
		fmt.Sprintf("• %d bundles × %s = %s", b.Bundles, e.FormatPrice(b.UnitPrice), e.FormatPrice(b.Subtotal)),
	}

	if b.DiscountPercent > 0 {
		lines = append(lines,
			fmt.Sprintf("• Volume discount (%.0f%% off): -%s", b.DiscountPercent, e.FormatPrice(b.DiscountAmount)),
			fmt.Sprintf("• Subtotal: %s", e.FormatPrice(b.SubtotalAfterDiscount)))
	}
	if b.DeliveryFee > 0 {
		lines = append(lines, fmt.Sprintf("• Delivery fee: %s", e.FormatPrice(b.DeliveryFee)))
	}

	lines = append(lines, fmt.Sprintf("• *TOTAL: %s*", e.FormatPrice(b.Total)))
	return strings.Join(lines, "\n")
}

// DiscountInfo renders the configured tier list for the help text, or an
// empty string when no discounts are configured.
func (e *Engine) DiscountInfo() string {
	if len(e.Tiers) == 0 {
		return ""
	}

	lines := []string{"💡 *Volume Discounts Available:*"}
	for _, tier := range e.Tiers {
		lines = append(lines, fmt.Sprintf("• %d+ bundles: %.0f%% off!", tier.Threshold, tier.Percent))
	}
	return strings.Join(lines, "\n")
}
