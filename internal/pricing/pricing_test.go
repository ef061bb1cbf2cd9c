package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestUnitPrice_MediumBaseline(t *testing.T) {
	// base 20 + 20cm×1.5 = 50
	got := UnitPrice("Medium", d(20), "")
	assert.True(t, d(50).Equal(got), "got %s", got)
}

func TestUnitPrice_QualityMultipliers(t *testing.T) {
	cases := []struct {
		grade string
		want  int64
	}{
		{"Premium", 65}, // 50×1.25=62.5 → 65
		{"Grade A", 60}, // 50×1.15=57.5 → 60
		{"Grade B", 50},
		{"Grade C", 45}, // 50×0.85=42.5 → 45
		{"Unknown", 50}, // 未知グレードは倍率なし
	}

	for _, tc := range cases {
		got := UnitPrice("Medium", d(20), tc.grade)
		assert.True(t, d(tc.want).Equal(got), "grade %s: want %d got %s", tc.grade, tc.want, got)
	}
}

func TestUnitPrice_UnknownSizeFallsBackToMedium(t *testing.T) {
	got := UnitPrice("Colossal", d(20), "")
	want := UnitPrice("Medium", d(20), "")
	assert.True(t, want.Equal(got))
}

func TestUnitPrice_ZeroLengthUsesDefault(t *testing.T) {
	got := UnitPrice("Medium", decimal.Zero, "")
	want := UnitPrice("Medium", d(20), "")
	assert.True(t, want.Equal(got))
}

func TestUnitPrice_AlwaysMultipleOfFive(t *testing.T) {
	sizes := []string{
		"Small", "Medium", "Large", "Extra Large", "Premium Large",
		"Premium XL", "Organic Large", "Organic XL", "Organic Jumbo",
		"Standard Large", "Standard Medium", "Standard Small", "Economy",
	}
	grades := []string{"", "Premium", "Grade A", "Grade B", "Grade C"}

	for _, size := range sizes {
		min, max := LengthRange(size)
		for _, grade := range grades {
			for _, length := range []decimal.Decimal{min, max, min.Add(max).Div(d(2))} {
				price := UnitPrice(size, length, grade)
				rem := price.Mod(d(5))
				assert.True(t, rem.IsZero(), "size=%s grade=%s length=%s price=%s", size, grade, length, price)
				assert.True(t, price.IsPositive())
			}
		}
	}
}

func TestBulkDiscountRate_Boundaries(t *testing.T) {
	cases := []struct {
		qty  int64
		want float64
	}{
		{1, 0}, {9, 0},
		{10, 0.05}, {19, 0.05},
		{20, 0.10}, {49, 0.10},
		{50, 0.15}, {99, 0.15},
		{100, 0.20}, {500, 0.20},
	}

	for _, tc := range cases {
		got := BulkDiscountRate(tc.qty)
		assert.True(t, decimal.NewFromFloat(tc.want).Equal(got), "qty=%d want=%v got=%s", tc.qty, tc.want, got)
	}
}

func TestOrderTotal_TwelveMediumUnits(t *testing.T) {
	// 50×12=600、5%割引=30、合計570
	b := OrderTotal([]Line{{Size: "Medium", Length: d(20), Quantity: 12}})

	assert.True(t, d(600).Equal(b.Subtotal), "subtotal %s", b.Subtotal)
	assert.True(t, decimal.NewFromFloat(0.05).Equal(b.DiscountRate))
	assert.True(t, d(30).Equal(b.DiscountAmount), "discount %s", b.DiscountAmount)
	assert.True(t, d(570).Equal(b.Total), "total %s", b.Total)
	assert.Equal(t, int64(12), b.TotalQuantity)
}

func TestOrderTotal_DiscountUsesCombinedQuantity(t *testing.T) {
	//明細ごとでは割引未満でも、合計数量で割引が決まる
	b := OrderTotal([]Line{
		{Size: "Medium", Length: d(20), Quantity: 6},
		{Size: "Medium", Length: d(20), Quantity: 6},
	})

	assert.Equal(t, int64(12), b.TotalQuantity)
	assert.True(t, decimal.NewFromFloat(0.05).Equal(b.DiscountRate))
	assert.True(t, d(570).Equal(b.Total))
}

func TestOrderTotal_NoLines(t *testing.T) {
	b := OrderTotal(nil)
	assert.True(t, b.Subtotal.IsZero())
	assert.True(t, b.Total.IsZero())
	assert.Equal(t, int64(0), b.TotalQuantity)
}

func TestLengthRange(t *testing.T) {
	min, max := LengthRange("Small")
	assert.True(t, d(12).Equal(min))
	assert.True(t, d(16).Equal(max))
}

func TestIsKnownSize(t *testing.T) {
	assert.True(t, IsKnownSize("Economy"))
	assert.False(t, IsKnownSize("economy"))
	assert.False(t, IsKnownSize(""))
}

func TestIsKnownQualityGrade(t *testing.T) {
	assert.True(t, IsKnownQualityGrade("Premium"))
	assert.False(t, IsKnownQualityGrade("premium"))
}
