package paymongo

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSource(t *testing.T) {
	var gotAuth string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)

		assert.Equal(t, "/sources", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"src_123","attributes":{"redirect":{"checkout_url":"https://pm.link/abc"}}}}`))
	}))
	defer srv.Close()

	c := NewClient("sk_test_xyz", "")
	c.SetBaseURL(srv.URL)

	src, err := c.CreateSource(context.Background(), "gcash", 65000, "https://shop/success", "https://shop/failed")
	require.NoError(t, err)

	assert.Equal(t, "src_123", src.ID)
	assert.Equal(t, "https://pm.link/abc", src.CheckoutURL)

	//Basic認証はsecret keyの後ろに":"を付けてbase64
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("sk_test_xyz:"))
	assert.Equal(t, wantAuth, gotAuth)

	assert.Contains(t, string(gotBody), `"amount":65000`)
	assert.Contains(t, string(gotBody), `"currency":"PHP"`)
	assert.Contains(t, string(gotBody), `"type":"gcash"`)
}

func TestCreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"pay_456","attributes":{"status":"paid"}}}`))
	}))
	defer srv.Close()

	c := NewClient("sk_test_xyz", "")
	c.SetBaseURL(srv.URL)

	p, err := c.CreatePayment(context.Background(), "src_123", 65000, "")
	require.NoError(t, err)
	assert.Equal(t, "pay_456", p.ID)
	assert.Equal(t, "paid", p.Status)
}

func TestCreateSource_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"errors":[{"detail":"insufficient funds"}]}`))
	}))
	defer srv.Close()

	c := NewClient("sk_test_xyz", "")
	c.SetBaseURL(srv.URL)

	_, err := c.CreateSource(context.Background(), "gcash", 100, "s", "f")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paymongo api error")
}

func signWebhook(secret string, ts string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsk_test_secret"
	payload := []byte(`{"data":{"attributes":{"type":"payment.paid"}}}`)
	sig := signWebhook(secret, "1700000000", payload)

	c := NewClient("sk", secret)

	//テストモード署名（te=）
	header := fmt.Sprintf("t=1700000000,te=%s,li=", sig)
	assert.True(t, c.VerifyWebhookSignature(payload, header))

	//ライブ署名（li=）
	header = fmt.Sprintf("t=1700000000,te=,li=%s", sig)
	assert.True(t, c.VerifyWebhookSignature(payload, header))
}

func TestVerifyWebhookSignature_Rejections(t *testing.T) {
	secret := "whsk_test_secret"
	payload := []byte(`{"ok":true}`)
	sig := signWebhook(secret, "1700000000", payload)

	c := NewClient("sk", secret)

	//改ざんされたpayload
	header := fmt.Sprintf("t=1700000000,te=%s", sig)
	assert.False(t, c.VerifyWebhookSignature([]byte(`{"ok":false}`), header))

	//タイムスタンプ差し替え
	header = fmt.Sprintf("t=1700009999,te=%s", sig)
	assert.False(t, c.VerifyWebhookSignature(payload, header))

	//ヘッダなし・tなし
	assert.False(t, c.VerifyWebhookSignature(payload, ""))
	assert.False(t, c.VerifyWebhookSignature(payload, "te="+sig))

	//secret未設定なら常に拒否
	noSecret := NewClient("sk", "")
	assert.False(t, noSecret.VerifyWebhookSignature(payload, header))
}
