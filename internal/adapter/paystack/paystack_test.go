package paystack_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webwaka/pesaflow/internal/adapter"
	"github.com/webwaka/pesaflow/internal/adapter/paystack"
)

const secret = "test-webhook-secret"

func paymentRequest(account string) adapter.PaymentRequest {
	return adapter.PaymentRequest{
		TransactionID:   "tx-1",
		ClientReference: "ref-1",
		Amount:          decimal.RequireFromString("15000.00"),
		Currency:        "NGN",
		Direction:       adapter.DirectionCollection,
		Account:         account,
	}
}

func TestAdapter_Initiate(t *testing.T) {
	type testCase struct {
		name      string
		account   string
		wantState adapter.RemoteState
		wantErr   error
	}

	tests := []testCase{
		{name: "Synchronous success", account: "acct-0001", wantState: adapter.RemoteSuccess},
		{name: "Deferred", account: "defer-acct-0002", wantState: adapter.RemotePending},
		{name: "Blocked", account: "blocked-acct-0003", wantErr: adapter.ErrRejected},
		{name: "ProcessorDown", account: "down-acct-0004", wantErr: adapter.ErrUnavailable},
		{name: "Timeout", account: "slow-acct-0005", wantErr: adapter.ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := paystack.New(secret)

			res, err := a.Initiate(context.Background(), paymentRequest(tt.account))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantState, res.State)
			assert.NotEmpty(t, res.ExternalID)

			state, err := a.QueryStatus(context.Background(), res.ExternalID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, state)
		})
	}
}

func TestAdapter_QueryStatus_Unknown(t *testing.T) {
	a := paystack.New(secret)

	_, err := a.QueryStatus(context.Background(), "PSK_unknown")
	assert.ErrorIs(t, err, adapter.ErrNotFound)
}

func signedBody(t *testing.T, body map[string]any) []byte {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	payload, err := paystack.SignWebhook(secret, raw)
	require.NoError(t, err)

	return payload
}

func TestAdapter_ParseCallback(t *testing.T) {
	a := paystack.New(secret)

	payload := signedBody(t, map[string]any{
		"id":        "evt-1",
		"event":     "charge.success",
		"reference": "PSK_abc123",
	})

	notice, err := a.ParseCallback(payload)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", notice.EventID)
	assert.Equal(t, "PSK_abc123", notice.ExternalID)
	assert.Equal(t, adapter.RemoteSuccess, notice.State)
}

func TestAdapter_ParseCallback_HashFallbackEventID(t *testing.T) {
	a := paystack.New(secret)

	payload := signedBody(t, map[string]any{
		"event":     "charge.failed",
		"reference": "PSK_abc123",
	})

	notice, err := a.ParseCallback(payload)
	require.NoError(t, err)
	assert.Len(t, notice.EventID, 64)

	// The same payload must derive the same event id so redelivery dedupes.
	again, err := a.ParseCallback(payload)
	require.NoError(t, err)
	assert.Equal(t, notice.EventID, again.EventID)
}

func TestAdapter_ParseCallback_StatusOnlyFormat(t *testing.T) {
	a := paystack.New(secret)

	payload := signedBody(t, map[string]any{
		"id":        "evt-2",
		"reference": "PSK_abc123",
		"status":    "abandoned",
	})

	notice, err := a.ParseCallback(payload)
	require.NoError(t, err)
	assert.Equal(t, adapter.RemoteFailed, notice.State)
}

func TestAdapter_ParseCallback_Malformed(t *testing.T) {
	type testCase struct {
		name    string
		payload func(t *testing.T) []byte
	}

	tests := []testCase{
		{
			name:    "NotJSON",
			payload: func(*testing.T) []byte { return []byte("<xml/>") },
		},
		{
			name: "BadSignature",
			payload: func(t *testing.T) []byte {
				raw, err := json.Marshal(map[string]any{"id": "evt-1", "event": "charge.success", "reference": "PSK_a"})
				require.NoError(t, err)

				forged, err := paystack.SignWebhook("wrong-secret", raw)
				require.NoError(t, err)

				return forged
			},
		},
		{
			name: "MissingReference",
			payload: func(t *testing.T) []byte {
				return signedBody(t, map[string]any{"id": "evt-1", "event": "charge.success"})
			},
		},
		{
			name: "UnknownEvent",
			payload: func(t *testing.T) []byte {
				return signedBody(t, map[string]any{"id": "evt-1", "event": "transfer.reversed", "reference": "PSK_a"})
			},
		},
		{
			name:    "EmptyBody",
			payload: func(*testing.T) []byte { return []byte(`{"signature":"aa"}`) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := paystack.New(secret)

			_, err := a.ParseCallback(tt.payload(t))
			assert.ErrorIs(t, err, adapter.ErrMalformedPayload)
		})
	}
}
