package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nereuslabs/nereusd/internal/domain"
)

type fakeMarketCreator struct {
	specs  []domain.MarketCreate
	result domain.OrderResult
	err    error
}

func (f *fakeMarketCreator) CreateMarket(ctx context.Context, spec domain.MarketCreate) (domain.OrderResult, error) {
	if f.err != nil {
		return domain.OrderResult{}, f.err
	}
	f.specs = append(f.specs, spec)
	return f.result, nil
}

func newTestAdminService(creator *fakeMarketCreator, now time.Time) *AdminService {
	svc := NewAdminService(creator, testLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreateMarketForwardsSpec(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	creator := &fakeMarketCreator{result: domain.OrderResult{Success: true, Digest: "0xcreate"}}
	svc := newTestAdminService(creator, now)

	spec := domain.MarketCreate{
		Creator:     "0xadmin",
		Topic:       "Will it rain tomorrow?",
		Description: "Resolved against the official forecast.",
		StartTime:   now.UnixMilli(),
		EndTime:     now.Add(24 * time.Hour).UnixMilli(),
	}

	result, err := svc.CreateMarket(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "0xcreate", result.Digest)
	require.Len(t, creator.specs, 1)
	assert.Equal(t, spec, creator.specs[0])
}

func TestCreateMarketValidation(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	later := now.Add(time.Hour).UnixMilli()

	tests := []struct {
		name string
		spec domain.MarketCreate
	}{
		{
			name: "missing creator",
			spec: domain.MarketCreate{Topic: "t", StartTime: now.UnixMilli(), EndTime: later},
		},
		{
			name: "missing topic",
			spec: domain.MarketCreate{Creator: "0xadmin", StartTime: now.UnixMilli(), EndTime: later},
		},
		{
			name: "end before start",
			spec: domain.MarketCreate{Creator: "0xadmin", Topic: "t", StartTime: later, EndTime: now.UnixMilli()},
		},
		{
			name: "already ended",
			spec: domain.MarketCreate{
				Creator:   "0xadmin",
				Topic:     "t",
				StartTime: now.Add(-2 * time.Hour).UnixMilli(),
				EndTime:   now.Add(-time.Hour).UnixMilli(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &fakeMarketCreator{}
			svc := newTestAdminService(creator, now)
			_, err := svc.CreateMarket(context.Background(), tt.spec)
			assert.ErrorIs(t, err, domain.ErrInvalidOrder)
			assert.Empty(t, creator.specs, "invalid spec must not reach the relayer")
		})
	}
}
