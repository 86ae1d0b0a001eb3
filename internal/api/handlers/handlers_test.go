package handlers

import (
	"encoding/json"
	"testing"
)

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Number
	}{
		{`12.5`, 12.5},
		{`"1.234,56"`, 1234.56},
		{`"R$ 30"`, 30},
		{`"abc"`, 0},
		{`null`, 0},
		{`true`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got struct {
				N Number `json:"n"`
			}
			if err := json.Unmarshal([]byte(`{"n":`+tt.in+`}`), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got.N != tt.want {
				t.Errorf("Number(%s) = %v, want %v", tt.in, got.N, tt.want)
			}
		})
	}
}
