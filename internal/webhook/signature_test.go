package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignAndVerify(t *testing.T) {
	body := []byte(`{"reference":"txn_123","status":"success","amount":1050}`)
	sig := Sign("shh", body)

	assert.NoError(t, Verify("shh", body, sig))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	body := []byte(`{"reference":"txn_123"}`)
	sig := Sign("shh", body)

	assert.ErrorIs(t, Verify("other", body, sig), ErrInvalidSignature)
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	body := []byte(`{"reference":"txn_123","amount":1050}`)
	sig := Sign("shh", body)

	tampered := []byte(`{"reference":"txn_123","amount":9050}`)
	assert.ErrorIs(t, Verify("shh", tampered, sig), ErrInvalidSignature)
}

func TestVerifyRejectsMissingOrMalformedSignature(t *testing.T) {
	body := []byte(`{}`)

	assert.ErrorIs(t, Verify("shh", body, ""), ErrMissingSignature)
	assert.ErrorIs(t, Verify("shh", body, "not-hex!"), ErrInvalidSignature)
}
