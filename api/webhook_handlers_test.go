package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"luckypot/models"
	"luckypot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

type mockDepositService struct {
	mock.Mock
}

func (m *mockDepositService) Initiate(ctx context.Context, userID int64, amount int64) (*models.GatewayTransaction, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GatewayTransaction), args.Error(1)
}

func (m *mockDepositService) Confirm(ctx context.Context, transactionRef string) error {
	args := m.Called(ctx, transactionRef)
	return args.Error(0)
}

func (m *mockDepositService) Fail(ctx context.Context, transactionRef string, reason string) error {
	args := m.Called(ctx, transactionRef, reason)
	return args.Error(0)
}

type mockWithdrawalService struct {
	mock.Mock
}

func (m *mockWithdrawalService) Submit(ctx context.Context, userID int64, amount int64, method models.PayoutMethod, details models.AccountDetails) (*models.GatewayTransaction, error) {
	args := m.Called(ctx, userID, amount, method, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GatewayTransaction), args.Error(1)
}

func (m *mockWithdrawalService) AdminApprove(ctx context.Context, transactionRef, notes string) error {
	args := m.Called(ctx, transactionRef, notes)
	return args.Error(0)
}

func (m *mockWithdrawalService) AdminReject(ctx context.Context, transactionRef string, reason string) error {
	args := m.Called(ctx, transactionRef, reason)
	return args.Error(0)
}

func (m *mockWithdrawalService) CompleteTransfer(ctx context.Context, transactionRef string) error {
	args := m.Called(ctx, transactionRef)
	return args.Error(0)
}

func (m *mockWithdrawalService) FailTransfer(ctx context.Context, transactionRef string, reason string) error {
	args := m.Called(ctx, transactionRef, reason)
	return args.Error(0)
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func setupWebhookTest() (*Handler, *mockDepositService, *mockWithdrawalService) {
	deposits := new(mockDepositService)
	withdrawals := new(mockWithdrawalService)
	h := NewHandler(nil, nil, deposits, withdrawals, nil, testWebhookSecret)
	return h, deposits, withdrawals
}

func postWebhook(h *Handler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("Chapa-Signature", signature)
	}
	rec := httptest.NewRecorder()
	h.PaymentWebhook(rec, req)
	return rec
}

func TestPaymentWebhook_RejectsBadSignatures(t *testing.T) {
	h, deposits, withdrawals := setupWebhookTest()
	body := []byte(`{"event":"charge.success","tx_ref":"DEP_abc"}`)

	t.Run("missing signature", func(t *testing.T) {
		rec := postWebhook(h, body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong signature", func(t *testing.T) {
		rec := postWebhook(h, body, "deadbeef")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("tampered body", func(t *testing.T) {
		signature := signBody(body)
		tampered := []byte(`{"event":"charge.success","tx_ref":"DEP_xyz"}`)
		rec := postWebhook(h, tampered, signature)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	deposits.AssertNotCalled(t, "Confirm")
	withdrawals.AssertNotCalled(t, "CompleteTransfer")
}

func TestPaymentWebhook_DispatchesEvents(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		setup func(deposits *mockDepositService, withdrawals *mockWithdrawalService)
	}{
		{
			name: "charge success confirms the deposit",
			body: `{"event":"charge.success","tx_ref":"DEP_abc"}`,
			setup: func(d *mockDepositService, w *mockWithdrawalService) {
				d.On("Confirm", mock.Anything, "DEP_abc").Return(nil)
			},
		},
		{
			name: "charge failure fails the deposit",
			body: `{"event":"charge.failed","tx_ref":"DEP_abc","message":"card declined"}`,
			setup: func(d *mockDepositService, w *mockWithdrawalService) {
				d.On("Fail", mock.Anything, "DEP_abc", "card declined").Return(nil)
			},
		},
		{
			name: "transfer success completes the withdrawal",
			body: `{"event":"transfer.success","reference":"WD_abc"}`,
			setup: func(d *mockDepositService, w *mockWithdrawalService) {
				w.On("CompleteTransfer", mock.Anything, "WD_abc").Return(nil)
			},
		},
		{
			name: "transfer failure refunds the withdrawal",
			body: `{"event":"transfer.failed","reference":"WD_abc","message":"account closed"}`,
			setup: func(d *mockDepositService, w *mockWithdrawalService) {
				w.On("FailTransfer", mock.Anything, "WD_abc", "account closed").Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, deposits, withdrawals := setupWebhookTest()
			tt.setup(deposits, withdrawals)

			rec := postWebhook(h, []byte(tt.body), signBody([]byte(tt.body)))
			require.Equal(t, http.StatusOK, rec.Code)

			deposits.AssertExpectations(t)
			withdrawals.AssertExpectations(t)
		})
	}
}

func TestPaymentWebhook_UnknownEventIgnored(t *testing.T) {
	h, deposits, withdrawals := setupWebhookTest()

	body := []byte(`{"event":"payout.queued","tx_ref":"WD_abc"}`)
	rec := postWebhook(h, body, signBody(body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
	deposits.AssertNotCalled(t, "Confirm")
	withdrawals.AssertNotCalled(t, "CompleteTransfer")
}

func TestPaymentWebhook_DomainErrorsMapToStatus(t *testing.T) {
	h, deposits, _ := setupWebhookTest()

	deposits.On("Confirm", mock.Anything, "DEP_abc").
		Return(service.NewConflictError("deposit %q is already completed", "DEP_abc"))

	body := []byte(`{"event":"charge.success","tx_ref":"DEP_abc"}`)
	rec := postWebhook(h, body, signBody(body))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPaymentWebhook_MissingReference(t *testing.T) {
	h, _, _ := setupWebhookTest()

	body := []byte(`{"event":"charge.success"}`)
	rec := postWebhook(h, body, signBody(body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
