package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/pricing"
)

const (
	PayTRCountry        = "Azerbaijan"
	payTRTimeoutSeconds = 600
)

// ErrPayTRRefused means the gateway answered but declined to issue a token.
var ErrPayTRRefused = errors.New("paytr refused to issue a payment token")

type PayTRConfig struct {
	MerchantID string
	Key        string
	Salt       string
	APIURL     string
	Currency   string
	AppURL     string
	TestMode   bool
}

// PaymentTokenIssuer is implemented by PayTRClient.
type PaymentTokenIssuer interface {
	IssueToken(ctx context.Context, order models.Order, userIP string) (string, error)
}

type PayTRClient struct {
	cfg        PayTRConfig
	httpClient *http.Client
}

func NewPayTRClient(cfg PayTRConfig, httpClient *http.Client) *PayTRClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	if cfg.Currency == "" {
		cfg.Currency = "AZN"
	}
	return &PayTRClient{cfg: cfg, httpClient: httpClient}
}

// PayTRToken signs the order fields: hex(sha256(merchant_id + oid + amount + email + name + phone + address + city + country + salt)).
func PayTRToken(merchantID, merchantOID string, amount int64, email, name, phone, address, city, country, salt string) string {
	var b strings.Builder
	for _, part := range []string{
		merchantID, merchantOID, strconv.FormatInt(amount, 10),
		email, name, phone, address, city, country, salt,
	} {
		b.WriteString(part)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// PayTRCallbackHash is the signature PayTR puts in the "hash" field of its server callback.
func PayTRCallbackHash(merchantOID, salt, status, totalAmount, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(merchantOID + salt + status + totalAmount))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type payTRTokenResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
	Reason string `json:"reason"`
}

// IssueToken asks PayTR for an iframe token for a pending order. merchant_oid is the order id.
func (p *PayTRClient) IssueToken(ctx context.Context, order models.Order, userIP string) (string, error) {
	if userIP == "" {
		userIP = "127.0.0.1"
	}
	oid := strconv.FormatUint(uint64(order.ID), 10)
	amount := pricing.MinorUnits(order.Total)
	country := order.ShippingCountry
	if country == "" {
		country = PayTRCountry
	}

	basket := make([][]interface{}, 0, len(order.Items))
	for _, it := range order.Items {
		basket = append(basket, []interface{}{it.Title, strconv.FormatFloat(it.UnitPrice(), 'f', 2, 64), it.Quantity})
	}
	basketJSON, err := json.Marshal(basket)
	if err != nil {
		return "", err
	}

	testMode := "0"
	if p.cfg.TestMode {
		testMode = "1"
	}

	form := url.Values{}
	form.Set("merchant_id", p.cfg.MerchantID)
	form.Set("user_ip", userIP)
	form.Set("merchant_oid", oid)
	form.Set("email", order.CustomerEmail)
	form.Set("payment_amount", strconv.FormatInt(amount, 10))
	form.Set("payment_currency", p.cfg.Currency)
	form.Set("user_basket", base64.StdEncoding.EncodeToString(basketJSON))
	form.Set("user_name", order.CustomerName)
	form.Set("user_phone", order.CustomerPhone)
	form.Set("user_address", order.ShippingAddress)
	form.Set("user_city", order.ShippingCity)
	form.Set("user_country", country)
	form.Set("merchant_ok_url", SuccessURL(p.cfg.AppURL, order.OrderNumber))
	form.Set("merchant_fail_url", CancelURL(p.cfg.AppURL))
	form.Set("paytr_token", PayTRToken(
		p.cfg.MerchantID, oid, amount,
		order.CustomerEmail, order.CustomerName, order.CustomerPhone,
		order.ShippingAddress, order.ShippingCity, country, p.cfg.Salt,
	))
	form.Set("timeout_in_seconds", strconv.Itoa(payTRTimeoutSeconds))
	form.Set("test_mode", testMode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach PayTR: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read PayTR response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paytr API error (%d): %s", resp.StatusCode, string(body))
	}

	var out payTRTokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse PayTR response: %w", err)
	}
	if out.Status != "success" || out.Token == "" {
		log.Printf("⚠️ PayTR refused order %s: %s", order.OrderNumber, out.Reason)
		return "", fmt.Errorf("%w: %s", ErrPayTRRefused, out.Reason)
	}
	return out.Token, nil
}
