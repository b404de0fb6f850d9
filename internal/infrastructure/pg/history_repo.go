package pg

import (
	"context"
	"fmt"

	"btcprice-service/internal/application"
	"btcprice-service/internal/domain"
	"btcprice-service/internal/infrastructure/logx"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const recordColumns = `id, price_usd::float8, price_eur::float8, change_24h::float8, recorded_at`

type HistoryRepo struct{ db *DB }

var _ application.PriceHistoryRepo = (*HistoryRepo)(nil)

func NewHistoryRepo(db *DB) *HistoryRepo { return &HistoryRepo{db: db} }

func (r *HistoryRepo) Insert(ctx context.Context, snap domain.PriceSnapshot) (domain.PriceRecord, error) {
	const ins = `
        INSERT INTO btc_price_history (price_usd, price_eur, change_24h)
        VALUES ($1, $2, $3)
        RETURNING ` + recordColumns
	log := logx.FromContext(ctx).With(
		zap.String("repo", "price_history"),
		zap.String("operation", "Insert"),
	)
	var out domain.PriceRecord
	err := r.db.Pool.QueryRow(ctx, ins, snap.Prices.USD, snap.Prices.EUR, snap.Change24h).
		Scan(&out.ID, &out.PriceUSD, &out.PriceEUR, &out.Change24h, &out.RecordedAt)
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return domain.PriceRecord{}, err
	}
	log.Info("sql.exec_success", zap.Int64("id", out.ID))
	return out, nil
}

func (r *HistoryRepo) List(ctx context.Context, limit int) ([]domain.PriceRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM btc_price_history ORDER BY recorded_at DESC LIMIT $1`
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil {
		logx.FromContext(ctx).Error("sql.query_failed", zap.String("operation", "List"), zap.Error(err))
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PriceRecord, error) {
		var rec domain.PriceRecord
		err := row.Scan(&rec.ID, &rec.PriceUSD, &rec.PriceEUR, &rec.Change24h, &rec.RecordedAt)
		return rec, err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.PriceRecord{}
	}
	return out, nil
}

func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]domain.RecentPrice, error) {
	const q = `SELECT price_usd::float8, recorded_at FROM btc_price_history ORDER BY recorded_at DESC LIMIT $1`
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil {
		logx.FromContext(ctx).Error("sql.query_failed", zap.String("operation", "Recent"), zap.Error(err))
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RecentPrice, error) {
		var p domain.RecentPrice
		err := row.Scan(&p.PriceUSD, &p.RecordedAt)
		return p, err
	})
}

func (r *HistoryRepo) Statistics(ctx context.Context) (domain.PriceStatistics, error) {
	const q = `
        SELECT
          COUNT(*),
          MIN(price_usd)::text,
          MAX(price_usd)::text,
          AVG(price_usd)::text,
          MIN(recorded_at),
          MAX(recorded_at)
        FROM btc_price_history`
	var (
		out              domain.PriceStatistics
		minS, maxS, avgS *string
	)
	err := r.db.Pool.QueryRow(ctx, q).Scan(&out.TotalRecords, &minS, &maxS, &avgS, &out.FirstRecord, &out.LastRecord)
	if err != nil {
		logx.FromContext(ctx).Error("sql.query_failed", zap.String("operation", "Statistics"), zap.Error(err))
		return domain.PriceStatistics{}, err
	}
	if out.MinPrice, err = nullDecimal(minS); err != nil {
		return domain.PriceStatistics{}, err
	}
	if out.MaxPrice, err = nullDecimal(maxS); err != nil {
		return domain.PriceStatistics{}, err
	}
	if out.AvgPrice, err = nullDecimal(avgS); err != nil {
		return domain.PriceStatistics{}, err
	}
	return out, nil
}

// nullDecimal converts a NUMERIC rendered as text; NULL stays invalid.
func nullDecimal(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse numeric %q: %w", *s, err)
	}
	return decimal.NewNullDecimal(d), nil
}
