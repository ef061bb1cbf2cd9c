package pricing

import "github.com/shopspring/decimal"

// サイズ区分ごとの基本価格とcm単価（PHP）。
type sizeTier struct {
	Base      decimal.Decimal
	PerCm     decimal.Decimal
	MinLength decimal.Decimal
	MaxLength decimal.Decimal
}

const DefaultSize = "Medium"

var defaultLength = decimal.NewFromInt(20)

var five = decimal.NewFromInt(5)

var sizeTiers = map[string]sizeTier{
	"Small":           tier(15, 1.2, 12, 16),
	"Medium":          tier(20, 1.5, 17, 22),
	"Large":           tier(35, 1.8, 23, 26),
	"Extra Large":     tier(50, 2.0, 27, 32),
	"Premium Large":   tier(40, 1.9, 23, 26),
	"Premium XL":      tier(55, 2.1, 27, 32),
	"Organic Large":   tier(45, 1.95, 23, 26),
	"Organic XL":      tier(60, 2.2, 27, 32),
	"Organic Jumbo":   tier(70, 2.3, 27, 32),
	"Standard Large":  tier(32, 1.6, 21, 24),
	"Standard Medium": tier(18, 1.4, 19, 21),
	"Standard Small":  tier(14, 1.1, 13, 17),
	"Economy":         tier(12, 0.9, 12, 16),
}

// 品質グレードの倍率。未設定・未知のグレードは1.0。
var qualityMultipliers = map[string]decimal.Decimal{
	"Premium": decimal.NewFromFloat(1.25),
	"Grade A": decimal.NewFromFloat(1.15),
	"Grade B": decimal.NewFromFloat(1.0),
	"Grade C": decimal.NewFromFloat(0.85),
}

func tier(base, perCm, minLen, maxLen float64) sizeTier {
	return sizeTier{
		Base:      decimal.NewFromFloat(base),
		PerCm:     decimal.NewFromFloat(perCm),
		MinLength: decimal.NewFromFloat(minLen),
		MaxLength: decimal.NewFromFloat(maxLen),
	}
}

// UnitPrice は1本あたりの予測価格を返す。
// base + length×perCm に品質倍率を掛け、5の倍数へ丸める。副作用なし。
func UnitPrice(size string, length decimal.Decimal, qualityGrade string) decimal.Decimal {
	t, ok := sizeTiers[size]
	if !ok {
		t = sizeTiers[DefaultSize]
	}

	if length.IsZero() {
		length = defaultLength
	}

	price := t.Base.Add(length.Mul(t.PerCm))

	if qualityGrade != "" {
		if m, ok := qualityMultipliers[qualityGrade]; ok {
			price = price.Mul(m)
		}
	}

	// 市場向けに5の倍数へ丸める
	return price.Div(five).Round(0).Mul(five)
}

// IsKnownSize はサイズ区分が価格表に載っているかを返す。
func IsKnownSize(size string) bool {
	_, ok := sizeTiers[size]
	return ok
}

// IsKnownQualityGrade は品質グレードが倍率表に載っているかを返す。
func IsKnownQualityGrade(grade string) bool {
	_, ok := qualityMultipliers[grade]
	return ok
}

// LengthRange はサイズ区分の有効な長さ範囲（cm）を返す。
func LengthRange(size string) (decimal.Decimal, decimal.Decimal) {
	t, ok := sizeTiers[size]
	if !ok {
		t = sizeTiers[DefaultSize]
	}
	return t.MinLength, t.MaxLength
}

// BulkDiscountRate は合計数量に対する段階的な割引率を返す。
func BulkDiscountRate(totalQuantity int64) decimal.Decimal {
	switch {
	case totalQuantity >= 100:
		return decimal.NewFromFloat(0.20)
	case totalQuantity >= 50:
		return decimal.NewFromFloat(0.15)
	case totalQuantity >= 20:
		return decimal.NewFromFloat(0.10)
	case totalQuantity >= 10:
		return decimal.NewFromFloat(0.05)
	default:
		return decimal.Zero
	}
}

type Line struct {
	Size         string
	Length       decimal.Decimal
	QualityGrade string
	Quantity     int64
}

type Breakdown struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountRate   decimal.Decimal `json:"bulk_discount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	TotalQuantity  int64           `json:"total_quantity"`
}

// OrderTotal は全明細の小計から一括割引を引いた金額を計算する。
func OrderTotal(lines []Line) Breakdown {
	subtotal := decimal.Zero
	var totalQty int64

	for _, l := range lines {
		unit := UnitPrice(l.Size, l.Length, l.QualityGrade)
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(l.Quantity)))
		totalQty += l.Quantity
	}

	rate := BulkDiscountRate(totalQty)
	discount := subtotal.Mul(rate)

	return Breakdown{
		Subtotal:       subtotal,
		DiscountRate:   rate,
		DiscountAmount: discount,
		Total:          subtotal.Sub(discount),
		TotalQuantity:  totalQty,
	}
}
