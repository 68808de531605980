package coinbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veiloq/coinbase-connector/pkg/exchanges/interfaces"
)

func TestDecodeSecret(t *testing.T) {
	key, err := DecodeSecret("c2Vrcml0")
	require.NoError(t, err)
	assert.Equal(t, []byte("sekrit"), key)

	_, err = DecodeSecret("not base64!!!")
	require.Error(t, err)
	assert.Equal(t, interfaces.KindInternal, interfaces.KindOf(err))
}

func TestSignGolden(t *testing.T) {
	secret := []byte("sekrit")

	sig := Sign(secret, "1614838499", "GET", "/accounts", "")
	assert.Equal(t, "eaJUFT51CSeclq1fYt8DxE0ngMgvIm7rPqWjTS66Jlc=", sig)

	body := `{"type":"market","size":"0.001","side":"sell","product_id":"BTC-USD"}`
	sig = Sign(secret, "1614838499", "POST", "/orders", body)
	assert.Equal(t, "Szc2F74mb4YYTyQgjt+KUrnFlckwfodr+XybIDFXm8g=", sig)
}

func TestSignDeterministic(t *testing.T) {
	secret := []byte("sekrit")

	first := Sign(secret, "1614838499", "GET", "/accounts", "")
	second := Sign(secret, "1614838499", "GET", "/accounts", "")
	assert.Equal(t, first, second)
}

func TestSignSensitivity(t *testing.T) {
	secret := []byte("sekrit")
	base := Sign(secret, "1614838499", "GET", "/accounts", "")

	cases := map[string]string{
		"timestamp": Sign(secret, "1614838500", "GET", "/accounts", ""),
		"method":    Sign(secret, "1614838499", "POST", "/accounts", ""),
		"path":      Sign(secret, "1614838499", "GET", "/orders", ""),
		"body":      Sign(secret, "1614838499", "GET", "/accounts", "{}"),
		"secret":    Sign([]byte("sekrit2"), "1614838499", "GET", "/accounts", ""),
	}
	for name, sig := range cases {
		assert.NotEqual(t, base, sig, "changing %s must change the signature", name)
	}
}
