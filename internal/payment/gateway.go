package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"pantry-be/internal/apperror"
	"pantry-be/internal/logger"

	"go.uber.org/zap"
)

type Gateway interface {
	// CreateIntent registers amount (in major units) with the gateway and
	// returns the gateway's order reference.
	CreateIntent(ctx context.Context, receipt string, amount float64, currency string) (*Intent, error)
	VerifySignature(orderRef, paymentID, signature string) bool
}

type Intent struct {
	ID       string  `json:"id"`
	Receipt  string  `json:"receipt"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
	KeyID    string  `json:"keyId"`
}

type httpGateway struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

func NewHTTPGateway(keyID, keySecret, baseURL string) Gateway {
	if keyID == "" || keySecret == "" {
		logger.L().Warn("payment gateway credentials are empty")
	}

	return &httpGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type gatewayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func (g *httpGateway) CreateIntent(ctx context.Context, receipt string, amount float64, currency string) (*Intent, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("receipt", receipt),
		zap.Float64("amount", amount),
	)

	body, err := json.Marshal(map[string]any{
		"amount":   int64(math.Round(amount * 100)),
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, apperror.Wrap(err, "marshal payment intent")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, apperror.Wrap(err, "build payment request")
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("payment gateway request failed", zap.Error(err))
		return nil, apperror.Upstream("payment gateway unavailable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Upstream("payment gateway unavailable", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("payment gateway returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", raw),
		)
		return nil, apperror.Upstream("payment gateway rejected the request",
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var res gatewayOrderResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		log.Error("failed decoding payment gateway response", zap.Error(err))
		return nil, apperror.Upstream("payment gateway returned an invalid response", err)
	}

	log.Info("payment intent created", zap.String("intent_id", res.ID))
	return &Intent{
		ID:       res.ID,
		Receipt:  res.Receipt,
		Amount:   float64(res.Amount) / 100,
		Currency: res.Currency,
		Status:   res.Status,
		KeyID:    g.keyID,
	}, nil
}

func (g *httpGateway) VerifySignature(orderRef, paymentID, signature string) bool {
	expected := Sign(g.keySecret, orderRef, paymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// Sign is the hex HMAC-SHA256 of "orderRef|paymentID".
func Sign(secret, orderRef, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
