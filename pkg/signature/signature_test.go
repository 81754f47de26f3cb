package signature

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	payload := []byte(`{"tx_ref":"tx1"}`)
	sig := Sign(payload, "s")

	assert.Len(t, sig, 64)
	assert.True(t, Verify(payload, sig, "s"))
	assert.True(t, Verify(payload, strings.ToUpper(sig), "s"))

	assert.False(t, Verify(payload, sig, "other"))
	assert.False(t, Verify([]byte(`{"tx_ref":"tx2"}`), sig, "s"))
	assert.False(t, Verify(payload, "", "s"))
	assert.False(t, Verify(payload, sig, ""))
	assert.False(t, Verify(payload, "deadbeef", "s"))
}
