package llm

import (
	"testing"

	"github.com/talgya/bazaar/internal/oracle"
)

func TestParseJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  bool
		want     oracle.PricingDecision
	}{
		{
			name:     "bare object",
			response: `{"price": 95, "quantity": 40, "reasoning": "steady"}`,
			want:     oracle.PricingDecision{Price: 95, Quantity: 40, Reasoning: "steady"},
		},
		{
			name:     "code fenced",
			response: "```json\n{\"price\": 88, \"quantity\": 120}\n```",
			want:     oracle.PricingDecision{Price: 88, Quantity: 120},
		},
		{
			name:     "wrapped in prose",
			response: `Here is my decision: {"price": 102, "quantity": 15} Let me know.`,
			want:     oracle.PricingDecision{Price: 102, Quantity: 15},
		},
		{
			name:     "no object",
			response: "I will lower my price tomorrow.",
			wantErr:  true,
		},
		{
			name:     "malformed object",
			response: `{"price": 95, "quantity":}`,
			wantErr:  true,
		},
		{
			name:     "reversed braces",
			response: `} not json {`,
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got oracle.PricingDecision
			err := parseJSONObject(tt.response, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
