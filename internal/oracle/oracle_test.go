package oracle

import "testing"

func TestValidateNegotiation(t *testing.T) {
	tests := []struct {
		name    string
		dec     NegotiationDecision
		wantErr bool
	}{
		{"offer", NegotiationDecision{Action: ActionOffer, Price: 60, Quantity: 300}, false},
		{"counteroffer", NegotiationDecision{Action: ActionCounteroffer, Price: 65, Quantity: 250}, false},
		{"accept without terms", NegotiationDecision{Action: ActionAccept}, false},
		{"reject", NegotiationDecision{Action: ActionReject}, false},
		{"zero price offer", NegotiationDecision{Action: ActionOffer, Price: 0, Quantity: 10}, false},
		{"unknown action", NegotiationDecision{Action: "barter", Price: 60, Quantity: 300}, true},
		{"empty action", NegotiationDecision{Price: 60, Quantity: 300}, true},
		{"negative price", NegotiationDecision{Action: ActionOffer, Price: -1, Quantity: 300}, true},
		{"negative quantity", NegotiationDecision{Action: ActionOffer, Price: 60, Quantity: -5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNegotiation(tt.dec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNegotiation(%+v) = %v, wantErr %v", tt.dec, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePricing(t *testing.T) {
	tests := []struct {
		name    string
		dec     PricingDecision
		wantErr bool
	}{
		{"normal", PricingDecision{Price: 95, Quantity: 40}, false},
		{"zero quantity sit-out", PricingDecision{Price: 95, Quantity: 0}, false},
		{"free units", PricingDecision{Price: 0, Quantity: 10}, false},
		{"negative price", PricingDecision{Price: -10, Quantity: 40}, true},
		{"negative quantity", PricingDecision{Price: 95, Quantity: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePricing(tt.dec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePricing(%+v) = %v, wantErr %v", tt.dec, err, tt.wantErr)
			}
		})
	}
}
