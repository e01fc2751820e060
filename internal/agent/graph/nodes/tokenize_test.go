package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "ascii words lowercased, single chars dropped",
			in:   "The App X UI SLOW",
			want: []string{"app", "ui", "slow"},
		},
		{
			name: "han bigrams",
			in:   "出貨速度",
			want: []string{"出貨", "貨速", "速度"},
		},
		{
			name: "isolated han char survives",
			in:   "a 貴 b",
			want: []string{"貴"},
		},
		{
			name: "stopwords removed",
			in:   "很 好用 and the price",
			want: []string{"好用", "price"},
		},
		{
			name: "mixed script splits at boundary",
			in:   "客服email回覆",
			want: []string{"客服", "email", "回覆"},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.in))
		})
	}
}

func TestTermFrequencies(t *testing.T) {
	freqs := termFrequencies([]string{"shipping slow", "shipping damaged"})
	assert.Equal(t, 2, freqs["shipping"])
	assert.Equal(t, 1, freqs["slow"])
	assert.Equal(t, 1, freqs["damaged"])
}

func TestTopTerms(t *testing.T) {
	freqs := map[string]int{"beta": 3, "alpha": 3, "gamma": 5, "delta": 1}
	assert.Equal(t, []string{"gamma", "alpha", "beta"}, topTerms(freqs, 3))
	assert.Equal(t, []string{"gamma", "alpha", "beta", "delta"}, topTerms(freqs, 10))
}
