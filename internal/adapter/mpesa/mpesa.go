// Package mpesa is the reference mobile-money adapter. It speaks to a
// simulated gateway: Initiate always resolves asynchronously, status lives in
// an in-memory gateway ledger, and callbacks arrive as HS256-signed JWTs the
// way the upstream notification service signs them.
package mpesa

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/webwaka/pesaflow/internal/adapter"
)

const AdapterID = "mpesa"

type Adapter struct {
	secret []byte

	mu     sync.Mutex
	ledger map[string]adapter.RemoteState
}

func New(callbackSecret string) *Adapter {
	return &Adapter{
		secret: []byte(callbackSecret),
		ledger: make(map[string]adapter.RemoteState),
	}
}

func (a *Adapter) ID() string { return AdapterID }

func (a *Adapter) Capability() adapter.Capability {
	return adapter.Capability{
		Currencies:     []string{"KES", "TZS", "UGX"},
		Directions:     []adapter.Direction{adapter.DirectionCollection, adapter.DirectionDisbursement},
		SupportsQuery:  true,
		SupportsNotify: true,
		StatusSLA:      2 * time.Minute,
	}
}

// Initiate accepts the payment for asynchronous processing and hands back a
// gateway receipt. Outcome arrives later via callback or QueryStatus.
func (a *Adapter) Initiate(ctx context.Context, req adapter.PaymentRequest) (adapter.InitiateResult, error) {
	if err := ctx.Err(); err != nil {
		return adapter.InitiateResult{}, fmt.Errorf("%w: %w", adapter.ErrUnavailable, err)
	}

	if !validMSISDN(req.Account) {
		return adapter.InitiateResult{}, fmt.Errorf("%w: invalid msisdn %q", adapter.ErrRejected, req.Account)
	}

	receipt := "MPE" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])

	a.mu.Lock()
	a.ledger[receipt] = adapter.RemotePending
	a.mu.Unlock()

	return adapter.InitiateResult{ExternalID: receipt, State: adapter.RemotePending}, nil
}

func (a *Adapter) QueryStatus(ctx context.Context, externalID string) (adapter.RemoteState, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", adapter.ErrUnavailable, err)
	}

	a.mu.Lock()
	state, ok := a.ledger[externalID]
	a.mu.Unlock()

	if !ok {
		return "", adapter.ErrNotFound
	}

	return state, nil
}

// callbackClaims is the payload the gateway's notification service signs.
type callbackClaims struct {
	Receipt string `json:"receipt"`
	Result  string `json:"result"`
	jwt.RegisteredClaims
}

// ParseCallback verifies the JWT signature before trusting anything in the
// body. Unsigned or tampered callbacks are malformed, not failures.
func (a *Adapter) ParseCallback(raw []byte) (adapter.CallbackNotice, error) {
	var claims callbackClaims

	token, err := jwt.ParseWithClaims(string(raw), &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return adapter.CallbackNotice{}, fmt.Errorf("%w: %w", adapter.ErrMalformedPayload, err)
	}

	if claims.ID == "" {
		return adapter.CallbackNotice{}, fmt.Errorf("%w: missing event id", adapter.ErrMalformedPayload)
	}

	if claims.Receipt == "" {
		return adapter.CallbackNotice{}, fmt.Errorf("%w: missing receipt", adapter.ErrMalformedPayload)
	}

	state, ok := remoteState(claims.Result)
	if !ok {
		return adapter.CallbackNotice{}, fmt.Errorf("%w: unknown result %q", adapter.ErrMalformedPayload, claims.Result)
	}

	return adapter.CallbackNotice{
		EventID:    claims.ID,
		ExternalID: claims.Receipt,
		State:      state,
	}, nil
}

// Settle flips the simulated gateway's view of a receipt. Simulation control
// only; a production build would not carry it.
func (a *Adapter) Settle(externalID string, state adapter.RemoteState) {
	a.mu.Lock()
	a.ledger[externalID] = state
	a.mu.Unlock()
}

// SignCallback mints a callback token the way the gateway's notification
// service does. Used by the simulator and tests.
func SignCallback(secret, eventID, receipt, result string) (string, error) {
	claims := callbackClaims{
		Receipt: receipt,
		Result:  result,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       eventID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func remoteState(result string) (adapter.RemoteState, bool) {
	switch result {
	case "0", "success":
		return adapter.RemoteSuccess, true
	case "failed", "insufficient_funds", "cancelled_by_user":
		return adapter.RemoteFailed, true
	case "pending":
		return adapter.RemotePending, true
	}

	return "", false
}

// validMSISDN accepts E.164-ish numbers without the plus, as the gateway does.
func validMSISDN(account string) bool {
	if len(account) < 10 || len(account) > 15 {
		return false
	}

	for _, r := range account {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
