package paymongo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.paymongo.com/v1"

// PayMongo APIクライアント。金額は全てセンタボ（1/100ペソ）。
type Client struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
}

func NewClient(secretKey, webhookSecret string) *Client {
	return &Client{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		baseURL:       defaultBaseURL,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

// テスト用にAPIのURLを差し替える。
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

type Source struct {
	ID          string
	CheckoutURL string
}

type Payment struct {
	ID     string
	Status string
}

type sourceResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Redirect struct {
				CheckoutURL string `json:"checkout_url"`
			} `json:"redirect"`
		} `json:"attributes"`
	} `json:"data"`
}

type paymentResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Status string `json:"status"`
		} `json:"attributes"`
	} `json:"data"`
}

// CreateSource はeウォレット決済のソース（リダイレクト先）を作る。
func (c *Client) CreateSource(ctx context.Context, method string, amountInCentavos int64, successURL, failedURL string) (Source, error) {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"attributes": map[string]interface{}{
				"type":     method,
				"amount":   amountInCentavos,
				"currency": "PHP",
				"redirect": map[string]string{
					"success": successURL,
					"failed":  failedURL,
				},
			},
		},
	}

	var out sourceResponse
	if err := c.post(ctx, "/sources", payload, &out); err != nil {
		return Source{}, err
	}

	return Source{
		ID:          out.Data.ID,
		CheckoutURL: out.Data.Attributes.Redirect.CheckoutURL,
	}, nil
}

// CreatePayment はソースから支払いを確定させる。
func (c *Client) CreatePayment(ctx context.Context, sourceID string, amountInCentavos int64, description string) (Payment, error) {
	if description == "" {
		description = "Order Payment"
	}

	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"attributes": map[string]interface{}{
				"amount":   amountInCentavos,
				"currency": "PHP",
				"source": map[string]string{
					"id":   sourceID,
					"type": "source",
				},
				"description":          description,
				"statement_descriptor": "COCOLYTICS ORDER",
			},
		},
	}

	var out paymentResponse
	if err := c.post(ctx, "/payments", payload, &out); err != nil {
		return Payment{}, err
	}

	return Payment{ID: out.Data.ID, Status: out.Data.Attributes.Status}, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	//Basic認証（secret keyの後ろに":"を付けてbase64）
	auth := base64.StdEncoding.EncodeToString([]byte(c.secretKey + ":"))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("paymongo api error: %s: %s", resp.Status, string(data))
	}

	return json.Unmarshal(data, out)
}

// VerifyWebhookSignature はPayMongoの署名ヘッダ（t=...,te=...,li=...）を検証する。
func (c *Client) VerifyWebhookSignature(payload []byte, signatureHeader string) bool {
	if c.webhookSecret == "" || signatureHeader == "" {
		return false
	}

	var ts, testSig, liveSig string
	for _, part := range strings.Split(signatureHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts = kv[1]
		case "te":
			testSig = kv[1]
		case "li":
			liveSig = kv[1]
		}
	}
	if ts == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	want := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(want), []byte(testSig)) || hmac.Equal([]byte(want), []byte(liveSig))
}
