package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlaces(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"공학관 301호", []string{"공학관 301호"}},
		{"공학관 301호 강의실", []string{"공학관 301호"}},
		{"강의실 공학관 301호(실습)", []string{"공학관 301호"}},
		{"본관 101호 (대형), 신관 202호", []string{"본관 101호", "신관 202호"}},
		{"본관 101호、신관 202호 / 체육관; 음악관（소강당）", []string{"본관 101호", "신관 202호", "체육관", "음악관"}},
		{"온라인", []string{"온라인"}},
		{"(원격)", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePlaces(tt.in), tt.in)
	}
}

func TestPlaceText(t *testing.T) {
	assert.Equal(t, "본관 101호, 신관 202호", PlaceText([]string{"본관 101호", "신관 202호"}))
	assert.Equal(t, "", PlaceText([]string{"미지정"}))
	assert.Equal(t, "", PlaceText(nil))
}
