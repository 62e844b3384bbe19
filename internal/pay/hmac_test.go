package pay

import "testing"

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event_id":"evt_1","status":"succeeded"}`)
	secret := "webhook-secret"

	sig := Sign(body, secret)
	if !VerifySignature(body, sig, secret) {
		t.Fatal("expected signature to be valid")
	}
	if VerifySignature(body, "deadbeef", secret) {
		t.Fatal("unexpected valid signature")
	}
	if VerifySignature(body, sig, "wrong-secret") {
		t.Fatal("signature must not verify under a different secret")
	}
	if VerifySignature(append(body, ' '), sig, secret) {
		t.Fatal("signature must not verify for a tampered body")
	}
	if VerifySignature(body, "not-hex", secret) {
		t.Fatal("non-hex signature must be rejected")
	}
}
