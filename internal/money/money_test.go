package money

import (
	"errors"
	"testing"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      float64
		wantToken string
		wantErr   bool
	}{
		{name: "thousands and decimal", input: "paguei 1.234,56 no mercado", want: 1234.56, wantToken: "1.234,56"},
		{name: "integer", input: "gastei 50 no mercado", want: 50, wantToken: "50"},
		{name: "decimal comma", input: "uber 23,90", want: 23.9, wantToken: "23,90"},
		{name: "dot is a thousands separator", input: "paguei 12.5", want: 125, wantToken: "12.5"},
		{name: "first number wins", input: "gastei 30 e depois 40", want: 30, wantToken: "30"},
		{name: "no digits", input: "sem numero", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractAmount(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoAmount) {
					t.Fatalf("expected ErrNoAmount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Float() != tt.want {
				t.Errorf("value = %v, want %v", got.Float(), tt.want)
			}
			if got.Token != tt.wantToken {
				t.Errorf("token = %q, want %q", got.Token, tt.wantToken)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{input: "5000", want: 5000},
		{input: "12.5", want: 12.5},
		{input: "1.500,75", want: 1500.75},
		{input: "R$ 300", want: 300},
		{input: "abc", want: 0},
		{input: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseNumber(tt.input); got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{input: 0, want: "R$ 0,00"},
		{input: 50, want: "R$ 50,00"},
		{input: 1234.56, want: "R$ 1.234,56"},
		{input: 1000000, want: "R$ 1.000.000,00"},
		{input: -12, want: "-R$ 12,00"},
		{input: 0.005, want: "R$ 0,01"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatBRL(tt.input); got != tt.want {
				t.Errorf("FormatBRL(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{input: 2.5, want: 3},
		{input: 2.49, want: 2},
		{input: -2.5, want: -2},
		{input: 16, want: 16},
	}
	for _, tt := range tests {
		if got := Round(tt.input); got != tt.want {
			t.Errorf("Round(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
	if got := Round2(10.456); got != 10.46 {
		t.Errorf("Round2 = %v", got)
	}
	if got := ClampPercent(140); got != 100 {
		t.Errorf("ClampPercent = %v", got)
	}
}
