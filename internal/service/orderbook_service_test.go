package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nereuslabs/nereusd/internal/domain"
)

type fakeBookReader struct {
	bids []domain.BookOrder
	asks []domain.BookOrder
	err  error

	gotMarket string
	gotSide   *domain.TokenSide
	gotLimits []int
}

func (f *fakeBookReader) GetBids(ctx context.Context, marketID string, side *domain.TokenSide, cursor []byte, limit int) ([]domain.BookOrder, []byte, error) {
	f.gotMarket = marketID
	f.gotSide = side
	f.gotLimits = append(f.gotLimits, limit)
	return f.bids, nil, f.err
}

func (f *fakeBookReader) GetAsks(ctx context.Context, marketID string, side *domain.TokenSide, cursor []byte, limit int) ([]domain.BookOrder, []byte, error) {
	f.gotLimits = append(f.gotLimits, limit)
	return f.asks, nil, f.err
}

func TestSnapshotCombinesBidsAndAsks(t *testing.T) {
	bid := domain.BookOrder{Maker: "0xbid", MakerRole: domain.RoleBuy, TakerAmount: 10}
	ask := domain.BookOrder{Maker: "0xask", MakerRole: domain.RoleSell, TakerAmount: 20}
	reader := &fakeBookReader{
		bids: []domain.BookOrder{bid},
		asks: []domain.BookOrder{ask},
	}

	svc := NewOrderbookService(reader, testLogger())
	book, err := svc.Snapshot(context.Background(), "0xmarket", nil, 25)
	require.NoError(t, err)

	assert.Equal(t, "0xmarket", book.MarketID)
	assert.Equal(t, []domain.BookOrder{bid}, book.Bids)
	assert.Equal(t, []domain.BookOrder{ask}, book.Asks)
	assert.Equal(t, []int{25, 25}, reader.gotLimits, "limit bounds each half")
	assert.Nil(t, reader.gotSide)
}

func TestSnapshotEmptyBookHasNonNilHalves(t *testing.T) {
	svc := NewOrderbookService(&fakeBookReader{}, testLogger())
	book, err := svc.Snapshot(context.Background(), "0xmarket", nil, 0)
	require.NoError(t, err)

	assert.NotNil(t, book.Bids)
	assert.NotNil(t, book.Asks)
	assert.Empty(t, book.Bids)
	assert.Empty(t, book.Asks)
}

func TestSnapshotClampsLimit(t *testing.T) {
	reader := &fakeBookReader{}
	svc := NewOrderbookService(reader, testLogger())

	_, err := svc.Snapshot(context.Background(), "0xmarket", nil, 0)
	require.NoError(t, err)
	_, err = svc.Snapshot(context.Background(), "0xmarket", nil, 10_000)
	require.NoError(t, err)

	assert.Equal(t, []int{defaultBookDepth, defaultBookDepth, maxBookDepth, maxBookDepth}, reader.gotLimits)
}

func TestSnapshotRequiresMarket(t *testing.T) {
	svc := NewOrderbookService(&fakeBookReader{}, testLogger())
	_, err := svc.Snapshot(context.Background(), "", nil, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestSnapshotPropagatesReadError(t *testing.T) {
	reader := &fakeBookReader{err: errors.New("gateway down")}
	svc := NewOrderbookService(reader, testLogger())
	_, err := svc.Snapshot(context.Background(), "0xmarket", nil, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway down")
}

func TestSnapshotForwardsSideFilter(t *testing.T) {
	reader := &fakeBookReader{}
	svc := NewOrderbookService(reader, testLogger())

	side := domain.TokenNo
	_, err := svc.Snapshot(context.Background(), "0xmarket", &side, 10)
	require.NoError(t, err)
	require.NotNil(t, reader.gotSide)
	assert.Equal(t, domain.TokenNo, *reader.gotSide)
}
