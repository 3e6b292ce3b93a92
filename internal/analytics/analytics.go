// Package analytics aggregates the transaction ledger into the numbers the
// operations dashboard shows: per-adapter and per-currency volumes, state
// counts, success rates and settlement latency.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/webwaka/pesaflow/internal/transaction"
)

// StateRow is one (group key, state) cell of the raw aggregate: how many
// transactions, how much money, and how long the terminal ones took to settle.
type StateRow struct {
	Key              string
	State            transaction.State
	Count            int64
	Volume           decimal.Decimal
	AvgSettleSeconds float64
}

type Filter struct {
	Since *time.Time
	Until *time.Time
}

//go:generate mockgen -source=analytics.go -destination=repository_mock.go -package=analytics
type Repository interface {
	ByAdapter(ctx context.Context, f Filter) ([]StateRow, error)
	ByCurrency(ctx context.Context, f Filter) ([]StateRow, error)
}

// Breakdown is the rolled-up view of one group key.
type Breakdown struct {
	Key    string                       `json:"key"`
	Total  int64                        `json:"total"`
	Counts map[transaction.State]int64  `json:"counts"`

	// Settled counts only transactions that reached a terminal state. Open
	// transactions are not failures yet, so they stay out of the success-rate
	// denominator.
	Settled     int64   `json:"settled"`
	SuccessRate float64 `json:"success_rate"`

	// SuccessVolume is the amount that actually moved.
	SuccessVolume decimal.Decimal `json:"success_volume"`

	AvgTimeToTerminal time.Duration `json:"avg_time_to_terminal_ns"`
}

type Overview struct {
	GeneratedAt       time.Time   `json:"generated_at"`
	TotalTransactions int64       `json:"total_transactions"`
	Adapters          []Breakdown `json:"adapters"`
	Currencies        []Breakdown `json:"currencies"`
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Overview(ctx context.Context, f Filter) (*Overview, error) {
	byAdapter, err := s.repo.ByAdapter(ctx, f)
	if err != nil {
		return nil, err
	}

	byCurrency, err := s.repo.ByCurrency(ctx, f)
	if err != nil {
		return nil, err
	}

	adapters := fold(byAdapter)

	var total int64
	for _, b := range adapters {
		total += b.Total
	}

	return &Overview{
		GeneratedAt:       s.now().UTC(),
		TotalTransactions: total,
		Adapters:          adapters,
		Currencies:        fold(byCurrency),
	}, nil
}

// fold rolls per-state rows into one breakdown per key.
func fold(rows []StateRow) []Breakdown {
	byKey := make(map[string]*Breakdown)

	settleWeight := make(map[string]float64)

	for _, row := range rows {
		b, ok := byKey[row.Key]
		if !ok {
			b = &Breakdown{
				Key:           row.Key,
				Counts:        make(map[transaction.State]int64),
				SuccessVolume: decimal.Zero,
			}
			byKey[row.Key] = b
		}

		b.Total += row.Count
		b.Counts[row.State] += row.Count

		if row.State.Terminal() {
			b.Settled += row.Count
			settleWeight[row.Key] += row.AvgSettleSeconds * float64(row.Count)
		}

		if row.State == transaction.StateSuccess {
			b.SuccessVolume = b.SuccessVolume.Add(row.Volume)
		}
	}

	out := make([]Breakdown, 0, len(byKey))

	for key, b := range byKey {
		if b.Settled > 0 {
			b.SuccessRate = float64(b.Counts[transaction.StateSuccess]) / float64(b.Settled)
			b.AvgTimeToTerminal = time.Duration(settleWeight[key] / float64(b.Settled) * float64(time.Second))
		}

		out = append(out, *b)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out
}
