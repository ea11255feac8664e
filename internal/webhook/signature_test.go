package webhook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	secret := []byte("test-secret")
	body := []byte(`{"eventId":"evt-1","eventType":"refund.created","payload":{"payment_id":"p1","amount":500}}`)

	var tests = []struct {
		name      string
		body      []byte
		signature string
		secret    []byte
		expected  bool
	}{
		{
			name:      "valid signature",
			body:      body,
			signature: Sign(body, secret),
			secret:    secret,
			expected:  true,
		},
		{
			name:      "tampered body",
			body:      []byte(`{"eventId":"evt-1","eventType":"refund.created","payload":{"payment_id":"p1","amount":9999}}`),
			signature: Sign(body, secret),
			secret:    secret,
			expected:  false,
		},
		{
			name:      "wrong secret",
			body:      body,
			signature: Sign(body, []byte("other-secret")),
			secret:    secret,
			expected:  false,
		},
		{
			name:      "missing prefix",
			body:      body,
			signature: "deadbeef",
			secret:    secret,
			expected:  false,
		},
		{
			name:      "not hex",
			body:      body,
			signature: "sha512=zzzz",
			secret:    secret,
			expected:  false,
		},
		{
			name:      "empty signature",
			body:      body,
			signature: "",
			secret:    secret,
			expected:  false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.expected, VerifySignature(tt.body, tt.signature, tt.secret))
		})
	}
}
