package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "экология", Fold("ЭКОЛОГИЯ"))
	assert.Equal(t, "помощь детям", Fold("Помощь Детям"))
	assert.Equal(t, "hello", Fold("HeLLo"))
}

func TestFoldJoin(t *testing.T) {
	got := FoldJoin("Зелёный Город", "", "  ", "Саров", "ecology")
	assert.Equal(t, "зелёный город саров ecology", got)
	assert.Empty(t, FoldJoin("", " "))
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"эколог", "%эколог%"},
		{"100%", `%100!%%`},
		{"a_b", `%a!_b%`},
		{"wow!", `%wow!!%`},
		{`c:\x`, `%c:\x%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LikePattern(tt.in), tt.in)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"latin", "How to Start Volunteering!", "how-to-start-volunteering"},
		{"cyrillic", "Как стать волонтёром", "kak-stat-volonterom"},
		{"soft sign dropped", "Помощь детям", "pomosch-detyam"},
		{"mixed with digits", "Экология 2024: итоги", "ekologiya-2024-itogi"},
		{"trims dashes", "  --Hello--  ", "hello"},
		{"only symbols", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
