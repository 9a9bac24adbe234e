package store

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jona04/colab-finance-go/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestCandleStore_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewCandleStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `candles_1m`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	err := s.Upsert(domain.Candle{
		Symbol:    "BTCUSDT",
		Interval:  "1m",
		OpenTime:  now,
		CloseTime: now.Add(time.Minute - time.Millisecond),
		Open:      100, High: 105, Low: 95, Close: 102, Volume: 10, Trades: 3,
		IsClosed: true,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCandleStore_GetLastNClosed(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewCandleStore(db)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "symbol", "interval", "open_time", "close_time",
		"open", "high", "low", "close", "volume", "trades",
	}).
		AddRow(2, "BTCUSDT", "1m", now.Add(time.Minute), now.Add(2*time.Minute-time.Millisecond), 102, 108, 100, 106, 8, 2).
		AddRow(1, "BTCUSDT", "1m", now, now.Add(time.Minute-time.Millisecond), 100, 105, 95, 102, 10, 3)

	mock.ExpectQuery("SELECT \\* FROM `candles_1m`").WillReturnRows(rows)

	candles, err := s.GetLastNClosed("BTCUSDT", "1m", 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	require.True(t, candles[0].OpenTime.Before(candles[1].OpenTime))
	require.NoError(t, mock.ExpectationsWereMet())
}
