package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"btcprice-service/internal/application"
	"btcprice-service/internal/domain"
	"btcprice-service/internal/infrastructure/httpx"
)

const (
	coinGeckoSimplePricePath = "/simple/price"
	maxBodyBytes             = 1 << 20
)

type CoinGeckoProvider struct {
	BaseURL string
	Client  *httpx.Client
}

var _ application.PriceSource = (*CoinGeckoProvider)(nil)

type cgSimplePriceResp struct {
	Bitcoin *struct {
		USD           *float64 `json:"usd"`
		EUR           *float64 `json:"eur"`
		GBP           *float64 `json:"gbp"`
		USD24hChange  *float64 `json:"usd_24h_change"`
		LastUpdatedAt *int64   `json:"last_updated_at"`
	} `json:"bitcoin"`
}

func (p *CoinGeckoProvider) Fetch(ctx context.Context) (domain.PriceSnapshot, error) {
	if p.BaseURL == "" {
		return domain.PriceSnapshot{}, errors.New("coingecko: missing base url")
	}
	u, err := url.Parse(strings.TrimRight(p.BaseURL, "/"))
	if err != nil {
		return domain.PriceSnapshot{}, fmt.Errorf("coingecko: invalid base url: %w", err)
	}
	u.Path += coinGeckoSimplePricePath
	q := u.Query()
	q.Set("ids", "bitcoin")
	q.Set("vs_currencies", "usd,eur,gbp")
	q.Set("include_24hr_change", "true")
	q.Set("include_last_updated_at", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.PriceSnapshot{}, fmt.Errorf("coingecko: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}
	resp, err := client.Do(req)
	if err != nil {
		return domain.PriceSnapshot{}, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return domain.PriceSnapshot{}, &domain.UpstreamStatusError{StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.PriceSnapshot{}, &domain.TransportError{Err: fmt.Errorf("read body: %w", err)}
	}
	return parseSimplePrice(raw)
}

func parseSimplePrice(raw []byte) (domain.PriceSnapshot, error) {
	var body cgSimplePriceResp
	if err := json.Unmarshal(raw, &body); err != nil {
		return domain.PriceSnapshot{}, &domain.UpstreamParseError{Err: err}
	}
	b := body.Bitcoin
	if b == nil {
		return domain.PriceSnapshot{}, &domain.UpstreamParseError{Err: errors.New(`missing "bitcoin" object`)}
	}
	var missing []string
	for name, v := range map[string]*float64{"usd": b.USD, "eur": b.EUR, "gbp": b.GBP, "usd_24h_change": b.USD24hChange} {
		if v == nil {
			missing = append(missing, name)
		}
	}
	if b.LastUpdatedAt == nil {
		missing = append(missing, "last_updated_at")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return domain.PriceSnapshot{}, &domain.UpstreamParseError{Err: fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))}
	}

	return domain.PriceSnapshot{
		Symbol: domain.SymbolBTC,
		Prices: domain.Prices{
			USD: *b.USD,
			EUR: *b.EUR,
			GBP: *b.GBP,
		},
		Change24h:   *b.USD24hChange,
		LastUpdated: domain.FormatLastUpdated(*b.LastUpdatedAt),
		Cached:      false,
	}, nil
}
