package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskCategoryForScore(t *testing.T) {
	intPtr := func(n int) *int { return &n }

	tests := []struct {
		name  string
		score *int
		want  RiskCategory
	}{
		{"missing score", nil, RiskUnknown},
		{"below range", intPtr(299), RiskInvalid},
		{"above range", intPtr(851), RiskInvalid},
		{"way above range", intPtr(900), RiskInvalid},
		{"lower bound", intPtr(300), RiskPoor},
		{"poor upper boundary", intPtr(649), RiskPoor},
		{"fair lower boundary", intPtr(650), RiskFair},
		{"fair upper boundary", intPtr(699), RiskFair},
		{"good lower boundary", intPtr(700), RiskGood},
		{"good upper boundary", intPtr(749), RiskGood},
		{"excellent lower boundary", intPtr(750), RiskExcellent},
		{"upper bound", intPtr(850), RiskExcellent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RiskCategoryForScore(tt.score))
		})
	}
}

func TestApplicationFlagsAny(t *testing.T) {
	assert.False(t, ApplicationFlags{}.Any())
	assert.True(t, ApplicationFlags{PostalCodeInvalid: true}.Any())
	assert.True(t, ApplicationFlags{ApplicationIDNull: true, SystemSizeInvalid: true}.Any())
}
