package adapter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/webwaka/pesaflow/internal/adapter"
)

func validCapability() adapter.Capability {
	return adapter.Capability{
		Currencies:     []string{"KES"},
		Directions:     []adapter.Direction{adapter.DirectionCollection},
		SupportsQuery:  true,
		SupportsNotify: true,
		StatusSLA:      5 * time.Minute,
	}
}

func TestRegistry_Register(t *testing.T) {
	type testCase struct {
		name    string
		id      string
		cap     adapter.Capability
		wantErr string
	}

	tests := []testCase{
		{
			name: "Valid",
			id:   "mpesa",
			cap:  validCapability(),
		},
		{
			name:    "EmptyID",
			id:      "",
			cap:     validCapability(),
			wantErr: "empty id",
		},
		{
			name: "InvalidCurrency",
			id:   "m1",
			cap: adapter.Capability{
				Currencies:     []string{"SHILLING"},
				Directions:     []adapter.Direction{adapter.DirectionCollection},
				SupportsNotify: true,
			},
			wantErr: "invalid currency",
		},
		{
			name: "NoCurrencies",
			id:   "m1",
			cap: adapter.Capability{
				Directions:     []adapter.Direction{adapter.DirectionCollection},
				SupportsNotify: true,
			},
			wantErr: "no currencies",
		},
		{
			name: "NoDirections",
			id:   "m1",
			cap: adapter.Capability{
				Currencies:     []string{"KES"},
				SupportsNotify: true,
			},
			wantErr: "no directions",
		},
		{
			name: "InvalidDirection",
			id:   "m1",
			cap: adapter.Capability{
				Currencies:     []string{"KES"},
				Directions:     []adapter.Direction{"sideways"},
				SupportsNotify: true,
			},
			wantErr: "invalid direction",
		},
		{
			name: "NoResolutionPath",
			id:   "m1",
			cap: adapter.Capability{
				Currencies: []string{"KES"},
				Directions: []adapter.Direction{adapter.DirectionCollection},
			},
			wantErr: "neither status query nor callbacks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			a := adapter.NewMockAdapter(ctrl)
			a.EXPECT().ID().Return(tt.id).AnyTimes()
			a.EXPECT().Capability().Return(tt.cap).AnyTimes()

			reg := adapter.NewRegistry()
			err := reg.Register(a)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)

			got, err := reg.Get(tt.id)
			require.NoError(t, err)
			assert.Equal(t, a, got)
		})
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := adapter.NewMockAdapter(ctrl)
	a.EXPECT().ID().Return("mpesa").AnyTimes()
	a.EXPECT().Capability().Return(validCapability()).AnyTimes()

	reg := adapter.NewRegistry()
	require.NoError(t, reg.Register(a))

	err := reg.Register(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := adapter.NewRegistry()

	_, err := reg.Get("ghost")
	assert.ErrorIs(t, err, adapter.ErrUnknownAdapter)
}

func TestCapability_Supports(t *testing.T) {
	cap := adapter.Capability{
		Currencies: []string{"KES", "TZS"},
		Directions: []adapter.Direction{adapter.DirectionCollection},
	}

	assert.True(t, cap.SupportsCurrency("KES"))
	assert.False(t, cap.SupportsCurrency("NGN"))
	assert.True(t, cap.SupportsDirection(adapter.DirectionCollection))
	assert.False(t, cap.SupportsDirection(adapter.DirectionDisbursement))
}
