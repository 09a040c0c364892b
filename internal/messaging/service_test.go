package messaging

import "testing"

func TestCanonicalizePhone(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"+1234567890", "1234567890", false},
		{"1234567890", "1234567890", false},
		{"whatsapp:+1 (234) 567-890", "1234567890", false},
		{"+254 712 345 678", "254712345678", false},
		{"", "", true},
		{"not-a-number", "", true},
		{"12345", "", true}, // too short
	}
	for _, tc := range cases {
		got, err := canonicalizePhone(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("canonicalizePhone(%q) = %q, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("canonicalizePhone(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("canonicalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestServicesShareCanonicalizationRules(t *testing.T) {
	wa := NewWhatsAppService(nil)
	tw := NewTwilioService(nil)

	const raw = "whatsapp:+1234567890"
	waGot, waErr := wa.ValidateAndCanonicalizeRecipient(raw)
	twGot, twErr := tw.ValidateAndCanonicalizeRecipient(raw)
	if waErr != nil || twErr != nil {
		t.Fatalf("unexpected errors: %v, %v", waErr, twErr)
	}
	if waGot != twGot {
		t.Errorf("transports disagree on canonical form: %q vs %q", waGot, twGot)
	}
}
