// Package bybit implements the exchange gateway against the Bybit v5
// REST API (linear perpetuals).
package bybit

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"springbot/exchange"
	"springbot/market"
)

const (
	// MainnetURL is Bybit's production environment.
	MainnetURL = "https://api.bybit.com"
	// TestnetURL is Bybit's paper environment.
	TestnetURL = "https://api-testnet.bybit.com"

	// category pins every request to USDT-margined linear perpetuals.
	category = "linear"

	// recvWindow is generous to tolerate clock drift against the venue.
	recvWindow = "20000"
)

// Client is a Bybit v5 REST client implementing exchange.Gateway.
type Client struct {
	baseURL    string
	key        string
	secret     string
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(key, secret string, testnet bool) *Client {
	baseURL := MainnetURL
	if testnet {
		baseURL = TestnetURL
	}
	return &Client{
		baseURL: baseURL,
		key:     key,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// GetKlines fetches up to limit candles for the symbol and interval
// (venue notation, e.g. "15" for 15 minutes). Bybit returns rows
// newest first; the result is reversed into oldest-first order. An
// empty list means the venue has no data and is not an error.
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp klineResponse
	if err := c.get(ctx, "/v5/market/kline", params, false, &resp); err != nil {
		return nil, err
	}

	rows := resp.Result.List
	candles := make([]market.Candle, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if len(row) < 6 {
			return nil, fmt.Errorf("bybit: kline row has %d fields, want at least 6", len(row))
		}

		ms, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bybit: parse kline start: %w", err)
		}
		vals := make([]float64, 5)
		for j := 1; j <= 5; j++ {
			vals[j-1], err = strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, fmt.Errorf("bybit: parse kline field %d: %w", j, err)
			}
		}

		candles = append(candles, market.Candle{
			Start:  time.UnixMilli(ms).UTC(),
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	return candles, nil
}

// GetPositions returns the venue's open position list for the symbol.
// Rows with "None" side or zero size come back as size 0 and are left
// to the ledger to filter.
func (c *Client) GetPositions(ctx context.Context, symbol string) ([]exchange.Position, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("symbol", symbol)

	var resp positionResponse
	if err := c.get(ctx, "/v5/position/list", params, true, &resp); err != nil {
		return nil, err
	}

	positions := make([]exchange.Position, 0, len(resp.Result.List))
	for _, p := range resp.Result.List {
		size, err := strconv.ParseFloat(p.Size, 64)
		if err != nil {
			return nil, fmt.Errorf("bybit: parse position size: %w", err)
		}
		var avg float64
		if p.AvgPrice != "" {
			if avg, err = strconv.ParseFloat(p.AvgPrice, 64); err != nil {
				return nil, fmt.Errorf("bybit: parse position avgPrice: %w", err)
			}
		}
		positions = append(positions, exchange.Position{
			Symbol:     p.Symbol,
			Side:       exchange.Side(p.Side),
			Size:       size,
			EntryPrice: avg,
		})
	}
	return positions, nil
}

// GetBalances maps coin to wallet balance from the unified account.
func (c *Client) GetBalances(ctx context.Context) (map[string]float64, error) {
	params := url.Values{}
	params.Set("accountType", "UNIFIED")

	var resp walletResponse
	if err := c.get(ctx, "/v5/account/wallet-balance", params, true, &resp); err != nil {
		return nil, err
	}

	balances := make(map[string]float64)
	for _, wallet := range resp.Result.List {
		for _, coin := range wallet.Coin {
			v, err := strconv.ParseFloat(coin.WalletBalance, 64)
			if err != nil {
				return nil, fmt.Errorf("bybit: parse balance for %s: %w", coin.Coin, err)
			}
			balances[coin.Coin] = v
		}
	}
	return balances, nil
}

// PlaceMarketOrder submits an IOC market order, attaching TP/SL
// triggered on last price when set.
func (c *Client) PlaceMarketOrder(ctx context.Context, order exchange.Order) error {
	req := orderRequest{
		Category:    category,
		Symbol:      order.Symbol,
		Side:        string(order.Side),
		OrderType:   "Market",
		Qty:         trimFloat(order.Qty),
		TimeInForce: "IOC",
	}
	if order.TakeProfit > 0 {
		req.TakeProfit = trimFloat(order.TakeProfit)
		req.TPTriggerBy = "LastPrice"
	}
	if order.StopLoss > 0 {
		req.StopLoss = trimFloat(order.StopLoss)
		req.SLTriggerBy = "LastPrice"
	}

	var resp orderResponse
	return c.post(ctx, "/v5/order/create", req, &resp)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, signed bool, out interface{ apiError() error }) error {
	query := params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query, nil)
	if err != nil {
		return fmt.Errorf("bybit: create request: %w", err)
	}
	if signed {
		c.sign(req, query)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out interface{ apiError() error }) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("bybit: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("bybit: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.sign(req, string(payload))
	return c.do(req, out)
}

// sign applies the v5 HMAC scheme: the signature covers
// timestamp + key + recvWindow + (query string or JSON body).
func (c *Client) sign(req *http.Request, payload string) {
	ts := strconv.FormatInt(c.now().UnixMilli(), 10)

	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(ts + c.key + recvWindow + payload))

	req.Header.Set("X-BAPI-API-KEY", c.key)
	req.Header.Set("X-BAPI-TIMESTAMP", ts)
	req.Header.Set("X-BAPI-RECV-WINDOW", recvWindow)
	req.Header.Set("X-BAPI-SIGN", hex.EncodeToString(mac.Sum(nil)))
}

func (c *Client) do(req *http.Request, out interface{ apiError() error }) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bybit: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bybit: HTTP %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("bybit: decode response: %w", err)
	}
	return out.apiError()
}

// apiError turns a non-zero retCode into an error so every call site
// gets venue-level failures for free.
func (e *envelope) apiError() error {
	if e.RetCode != 0 {
		return fmt.Errorf("bybit: API error %d: %s", e.RetCode, e.RetMsg)
	}
	return nil
}

// trimFloat renders quantities and prices without trailing zeros, the
// form the venue accepts for string numbers.
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
