package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"btcprice-service/internal/application"
	"btcprice-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

var _ application.SnapshotPublisher = (*Publisher)(nil)

// Publisher mirrors fresh snapshots into redis: the latest one is kept under
// price:<SYMBOL> for TTL and every one is published on Channel.
type Publisher struct {
	Client  redis.UniversalClient
	Channel string
	TTL     time.Duration
}

func NewPublisher(client redis.UniversalClient, channel string, ttl time.Duration) *Publisher {
	return &Publisher{Client: client, Channel: channel, TTL: ttl}
}

func keyFor(symbol string) string {
	return fmt.Sprintf("price:%s", strings.ToUpper(symbol))
}

// Publish stores and announces the snapshot in one MULTI/EXEC.
func (p *Publisher) Publish(ctx context.Context, snap domain.PriceSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = p.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyFor(snap.Symbol), payload, p.TTL)
		pipe.Publish(ctx, p.Channel, payload)
		return nil
	})
	return err
}
