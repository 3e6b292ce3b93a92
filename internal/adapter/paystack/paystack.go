// Package paystack is the reference aggregator adapter. It resolves charges
// synchronously against a simulated processor and authenticates webhooks with
// the HMAC-SHA512 scheme the real gateway uses.
package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/webwaka/pesaflow/internal/adapter"
)

const AdapterID = "paystack"

// Simulated processor verdicts, keyed on account prefix. Mirrors how the real
// gateway's sandbox uses magic test accounts to force specific outcomes.
const (
	prefixBlocked = "blocked-"
	prefixDown    = "down-"
	prefixSlow    = "slow-"
	prefixDefer   = "defer-"
)

type Adapter struct {
	webhookSecret []byte

	mu     sync.Mutex
	ledger map[string]adapter.RemoteState
}

func New(webhookSecret string) *Adapter {
	return &Adapter{
		webhookSecret: []byte(webhookSecret),
		ledger:        make(map[string]adapter.RemoteState),
	}
}

func (a *Adapter) ID() string { return AdapterID }

func (a *Adapter) Capability() adapter.Capability {
	return adapter.Capability{
		Currencies:     []string{"NGN", "GHS", "ZAR", "USD"},
		Directions:     []adapter.Direction{adapter.DirectionCollection},
		SupportsQuery:  true,
		SupportsNotify: true,
		StatusSLA:      5 * time.Minute,
	}
}

// Initiate charges synchronously. Most accounts resolve immediately; accounts
// with a defer- prefix take the asynchronous path and settle later.
func (a *Adapter) Initiate(ctx context.Context, req adapter.PaymentRequest) (adapter.InitiateResult, error) {
	if err := ctx.Err(); err != nil {
		return adapter.InitiateResult{}, fmt.Errorf("%w: %w", adapter.ErrUnavailable, err)
	}

	switch {
	case strings.HasPrefix(req.Account, prefixBlocked):
		return adapter.InitiateResult{}, fmt.Errorf("%w: account blocked", adapter.ErrRejected)
	case strings.HasPrefix(req.Account, prefixDown):
		return adapter.InitiateResult{}, fmt.Errorf("%w: processor unreachable", adapter.ErrUnavailable)
	case strings.HasPrefix(req.Account, prefixSlow):
		return adapter.InitiateResult{}, adapter.ErrTimeout
	}

	reference := "PSK_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	state := adapter.RemoteSuccess
	if strings.HasPrefix(req.Account, prefixDefer) {
		state = adapter.RemotePending
	}

	a.mu.Lock()
	a.ledger[reference] = state
	a.mu.Unlock()

	return adapter.InitiateResult{ExternalID: reference, State: state}, nil
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

// Settle flips the simulated processor's view of a reference. Simulation
// control only.
func (a *Adapter) Settle(externalID string, state adapter.RemoteState) {
	a.mu.Lock()
	a.ledger[externalID] = state
	a.mu.Unlock()
}

// envelope is the webhook wire shape: the event body plus an HMAC-SHA512
// signature computed over the body's exact bytes.
type envelope struct {
	Signature string          `json:"signature"`
	Body      json.RawMessage `json:"body"`
}

type eventBody struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// ParseCallback checks the signature over the raw body before parsing it.
// Events without an id fall back to a digest of the payload, so redeliveries
// of the same body still deduplicate.
func (a *Adapter) ParseCallback(raw []byte) (adapter.CallbackNotice, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return adapter.CallbackNotice{}, fmt.Errorf("%w: %w", adapter.ErrMalformedPayload, err)
	}

	if len(env.Body) == 0 {
		return adapter.CallbackNotice{}, fmt.Errorf("%w: empty body", adapter.ErrMalformedPayload)
	}

	if !a.verify(env.Body, env.Signature) {
		return adapter.CallbackNotice{}, fmt.Errorf("%w: bad signature", adapter.ErrMalformedPayload)
	}

	var body eventBody
	if err := json.Unmarshal(env.Body, &body); err != nil {
		return adapter.CallbackNotice{}, fmt.Errorf("%w: %w", adapter.ErrMalformedPayload, err)
	}

	if body.Reference == "" {
		return adapter.CallbackNotice{}, fmt.Errorf("%w: missing reference", adapter.ErrMalformedPayload)
	}

	state, ok := remoteState(body.Event, body.Status)
	if !ok {
		return adapter.CallbackNotice{}, fmt.Errorf("%w: unknown event %q status %q", adapter.ErrMalformedPayload, body.Event, body.Status)
	}

	eventID := body.ID
	if eventID == "" {
		sum := sha256.Sum256(raw)
		eventID = hex.EncodeToString(sum[:])
	}

	return adapter.CallbackNotice{
		EventID:    eventID,
		ExternalID: body.Reference,
		State:      state,
	}, nil
}

func (a *Adapter) verify(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, a.webhookSecret)
	mac.Write(body)

	want := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(want), []byte(signature))
}

// SignWebhook builds a signed webhook payload the way the gateway does. Used
// by the simulator and tests.
func SignWebhook(secret string, body []byte) ([]byte, error) {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)

	return json.Marshal(envelope{
		Signature: hex.EncodeToString(mac.Sum(nil)),
		Body:      body,
	})
}

func remoteState(event, status string) (adapter.RemoteState, bool) {
	switch event {
	case "charge.success":
		return adapter.RemoteSuccess, true
	case "charge.failed":
		return adapter.RemoteFailed, true
	case "charge.pending":
		return adapter.RemotePending, true
	}

	// Older webhook format carries only a status field.
	if event == "" {
		switch status {
		case "success":
			return adapter.RemoteSuccess, true
		case "failed", "abandoned":
			return adapter.RemoteFailed, true
		case "pending":
			return adapter.RemotePending, true
		}
	}

	return "", false
}
