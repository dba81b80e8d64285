package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultTimeout = 30 * time.Second

// ChapaClient implements PaymentGateway and TransferGateway against the
// Chapa REST API
type ChapaClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewChapaClient creates a Chapa API client
func NewChapaClient(baseURL, secretKey string) *ChapaClient {
	return &ChapaClient{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

type chapaResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type chapaInitializeRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url,omitempty"`
	ReturnURL   string `json:"return_url,omitempty"`
}

type chapaInitializeData struct {
	CheckoutURL string `json:"checkout_url"`
}

type chapaVerifyData struct {
	TxRef  string  `json:"tx_ref"`
	Status string  `json:"status"`
	Amount float64 `json:"amount"`
}

type chapaTransferRequest struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	BankCode      string `json:"bank_code"`
	Reference     string `json:"reference"`
}

// InitializePayment creates a hosted checkout session
func (c *ChapaClient) InitializePayment(ctx context.Context, req *PaymentRequest) (*PaymentInit, error) {
	payload := chapaInitializeRequest{
		Amount:      centsToAmount(req.Amount),
		Currency:    "ETB",
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		TxRef:       req.TxRef,
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
	}

	resp, err := c.post(ctx, "/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}

	var data chapaInitializeData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode initialize response: %w", err)
	}
	if data.CheckoutURL == "" {
		return nil, fmt.Errorf("initialize response missing checkout URL")
	}

	return &PaymentInit{CheckoutURL: data.CheckoutURL}, nil
}

// VerifyTransaction fetches the authoritative state of a transaction
func (c *ChapaClient) VerifyTransaction(ctx context.Context, txRef string) (*VerifyResult, error) {
	resp, err := c.get(ctx, "/transaction/verify/"+txRef)
	if err != nil {
		return nil, err
	}

	var data chapaVerifyData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode verify response: %w", err)
	}

	return &VerifyResult{
		TxRef:  txRef,
		Status: data.Status,
		Amount: amountToCents(data.Amount),
	}, nil
}

// SubmitTransfer queues a payout with the provider
func (c *ChapaClient) SubmitTransfer(ctx context.Context, req *TransferRequest) (*TransferReceipt, error) {
	payload := chapaTransferRequest{
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		Amount:        centsToAmount(req.Amount),
		Currency:      "ETB",
		BankCode:      req.BankCode,
		Reference:     req.Reference,
	}

	resp, err := c.post(ctx, "/transfers", payload)
	if err != nil {
		return nil, err
	}

	// The transfer endpoint returns the provider's reference as a bare string
	var providerRef string
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &providerRef); err != nil {
			providerRef = ""
		}
	}

	return &TransferReceipt{
		Reference:   req.Reference,
		ProviderRef: providerRef,
	}, nil
}

func (c *ChapaClient) post(ctx context.Context, path string, payload any) (*chapaResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *ChapaClient) get(ctx context.Context, path string) (*chapaResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	return c.do(req)
}

func (c *ChapaClient) do(req *http.Request) (*chapaResponse, error) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	var parsed chapaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response (HTTP %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 || parsed.Status != "success" {
		log.WithFields(log.Fields{
			"path":       req.URL.Path,
			"httpStatus": resp.StatusCode,
			"status":     parsed.Status,
		}).Warn("Gateway request rejected")
		return nil, fmt.Errorf("gateway rejected request (HTTP %d): %s", resp.StatusCode, parsed.Message)
	}

	return &parsed, nil
}

// centsToAmount renders cents as a decimal currency string
func centsToAmount(cents int64) string {
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}

// amountToCents converts a decimal currency amount to cents
func amountToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
