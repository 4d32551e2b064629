package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/synqra/aurafx/internal/domain"
)

const (
	defaultBaseURL = "https://api.binance.com"

	// Rate limit conservador: el endpoint de klines pesa poco pero el
	// límite global por IP es compartido con otros consumidores.
	klinesRatePerSec = 10

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond

	maxCandlesPerRequest = 1000
)

// Client es el HTTP client de velas con rate limiting y retries.
// Implementa ports.CandleProvider contra un endpoint estilo Binance.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewClient crea un Client. Con baseURL vacío usa el endpoint de producción.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		limiter: rate.NewLimiter(klinesRatePerSec, 5),
	}
}

// FetchCandles devuelve las últimas `limit` velas del símbolo, cronológicas.
func (c *Client) FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error) {
	if limit <= 0 || limit > maxCandlesPerRequest {
		limit = maxCandlesPerRequest
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/api/v3/klines?%s", c.baseURL, q.Encode())

	// El wire format es array de arrays:
	// [openTime, "open", "high", "low", "close", "volume", closeTime, ...]
	var raw [][]any
	if err := c.get(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("marketdata.FetchCandles %s: %w", symbol, err)
	}

	candles := make([]domain.Candle, 0, len(raw))
	for i, row := range raw {
		candle, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("marketdata.FetchCandles %s: row %d: %w", symbol, i, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseKline convierte una fila del wire format en Candle.
func parseKline(row []any) (domain.Candle, error) {
	if len(row) < 6 {
		return domain.Candle{}, fmt.Errorf("kline row too short: %d fields", len(row))
	}

	openTime, ok := row[0].(float64)
	if !ok {
		return domain.Candle{}, fmt.Errorf("invalid open time %v", row[0])
	}

	prices := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := row[i].(string)
		if !ok {
			return domain.Candle{}, fmt.Errorf("field %d is not a string", i)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Candle{}, fmt.Errorf("field %d: %w", i, err)
		}
		prices[i-1] = v
	}

	return domain.Candle{
		Time:   time.UnixMilli(int64(openTime)).UTC(),
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: prices[4],
	}, nil
}

// get hace un GET con rate limiting y retries.
func (c *Client) get(ctx context.Context, url string, out any) error {
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la función con backoff exponencial y jitter.
// Reintenta en fallo de red, 429 y 5xx; los 4xx restantes son definitivos.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by API", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial y jitter, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	wait += time.Duration(rand.Int63n(int64(baseRetryWait)))
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}
