package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/guide-store/internal/config"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload produces a Stripe-Signature header value for the payload,
// matching the scheme the webhook package verifies: an HMAC-SHA256 over
// "<timestamp>.<payload>" keyed with the endpoint secret.
func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func checkoutCompletedPayload() []byte {
	return []byte(`{
        "id": "evt_1",
        "object": "event",
        "type": "checkout.session.completed",
        "data": {
            "object": {
                "id": "cs_test_1",
                "object": "checkout.session",
                "amount_total": 1999,
                "currency": "usd",
                "payment_intent": "pi_123",
                "metadata": {"userId": "u1", "guideId": "g1"}
            }
        }
    }`)
}

func newTestGateway() Gateway {
	return NewStripeGateway(config.StripeConfig{
		SecretKey:     "sk_test_key",
		WebhookSecret: testWebhookSecret,
		Currency:      "usd",
	})
}

func TestVerifyNotificationExtractsCheckoutFields(t *testing.T) {
	payload := checkoutCompletedPayload()
	gateway := newTestGateway()

	notification, err := gateway.VerifyNotification(payload, signPayload(payload, testWebhookSecret))
	require.NoError(t, err)

	assert.Equal(t, EventCheckoutCompleted, notification.Type)
	assert.Equal(t, "pi_123", notification.PaymentID)
	assert.Equal(t, int64(1999), notification.Amount)
	assert.Equal(t, "usd", notification.Currency)
	assert.Equal(t, "u1", notification.Metadata["userId"])
	assert.Equal(t, "g1", notification.Metadata["guideId"])
}

func TestVerifyNotificationRejectsWrongSecret(t *testing.T) {
	payload := checkoutCompletedPayload()
	gateway := newTestGateway()

	_, err := gateway.VerifyNotification(payload, signPayload(payload, "whsec_other"))
	assert.Error(t, err)
}

func TestVerifyNotificationRejectsTamperedPayload(t *testing.T) {
	payload := checkoutCompletedPayload()
	signature := signPayload(payload, testWebhookSecret)
	gateway := newTestGateway()

	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = 'X'
	_, err := gateway.VerifyNotification(tampered, signature)
	assert.Error(t, err)
}

func TestVerifyNotificationRejectsMalformedHeader(t *testing.T) {
	gateway := newTestGateway()
	_, err := gateway.VerifyNotification(checkoutCompletedPayload(), "not-a-signature")
	assert.Error(t, err)
}

func TestVerifyNotificationPassesThroughOtherEventTypes(t *testing.T) {
	payload := []byte(`{"id":"evt_2","object":"event","type":"payment_intent.created","data":{"object":{}}}`)
	gateway := newTestGateway()

	notification, err := gateway.VerifyNotification(payload, signPayload(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.created", notification.Type)
	assert.Empty(t, notification.PaymentID)
}
