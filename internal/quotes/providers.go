package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Provider fetches a batch of live quotes. Providers are tried in order;
// codes already resolved by an earlier provider are kept.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) ([]Quote, error)
}

const (
	exchangeRateURL = "https://api.exchangerate-api.com/v4/latest/USD"
	binanceURL      = "https://api.binance.com/api/v3/ticker/24hr"

	gramsPerOunce = 31.1
)

// Approximate ounce prices in USD used to derive physical gold quotes
// from the live USD/TRY rate. The free rate endpoint carries no metals.
var (
	goldOunceUSD   = decimal.NewFromInt(2550)
	silverOunceUSD = decimal.NewFromInt(30)
)

// Gram weights of the traditional Turkish gold coin denominations.
var goldWeights = []struct {
	code   string
	weight decimal.Decimal
}{
	{"XAU_QUARTER", d("1.75")},
	{"XAU_HALF", d("3.5")},
	{"XAU_FULL", d("7")},
	{"XAU_REPUBLIC", d("7.2")},
}

// ExchangeRateProvider resolves fiat currencies and derives the gold
// quotes from the USD/TRY rate.
type ExchangeRateProvider struct {
	client *http.Client
	url    string
}

func NewExchangeRateProvider(timeout time.Duration) *ExchangeRateProvider {
	return &ExchangeRateProvider{
		client: &http.Client{Timeout: timeout},
		url:    exchangeRateURL,
	}
}

func (p *ExchangeRateProvider) Name() string { return "exchangerate-api" }

func (p *ExchangeRateProvider) Fetch(ctx context.Context) ([]Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates endpoint returned %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}

	usdTry := decimal.NewFromFloat(payload.Rates["TRY"])
	if !usdTry.IsPositive() {
		return nil, fmt.Errorf("no USD/TRY rate in response")
	}

	quotes := []Quote{fromAsset("USD", usdTry, 0.35)}

	// Every other currency is quoted against USD; cross it into TRY.
	for _, a := range Catalog {
		if a.Kind != KindFiat || a.Code == "USD" {
			continue
		}
		rate := decimal.NewFromFloat(payload.Rates[a.Code])
		if !rate.IsPositive() {
			continue
		}
		quotes = append(quotes, fromAsset(a.Code, usdTry.Div(rate).Round(2), 0.10))
	}

	quotes = append(quotes, goldQuotes(usdTry)...)
	return quotes, nil
}

func goldQuotes(usdTry decimal.Decimal) []Quote {
	gramGold := goldOunceUSD.Div(decimal.NewFromFloat(gramsPerOunce)).Mul(usdTry).Round(2)
	gramSilver := silverOunceUSD.Div(decimal.NewFromFloat(gramsPerOunce)).Mul(usdTry).Round(2)

	quotes := []Quote{fromAsset("XAU", gramGold, 0.45)}
	for _, gw := range goldWeights {
		quotes = append(quotes, fromAsset(gw.code, gramGold.Mul(gw.weight).Round(2), 0.45))
	}
	quotes = append(quotes, fromAsset("XAG", gramSilver, 0.60))
	return quotes
}

// BinanceProvider resolves cryptocurrencies from the public 24hr ticker,
// crossing USDT pairs into TRY through USDT/TRY.
type BinanceProvider struct {
	client *http.Client
	url    string
}

func NewBinanceProvider(timeout time.Duration) *BinanceProvider {
	return &BinanceProvider{
		client: &http.Client{Timeout: timeout},
		url:    binanceURL,
	}
}

func (p *BinanceProvider) Name() string { return "binance" }

type binanceTicker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
}

func (p *BinanceProvider) Fetch(ctx context.Context) ([]Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ticker endpoint returned %d", resp.StatusCode)
	}

	var tickers []binanceTicker
	if err := json.NewDecoder(resp.Body).Decode(&tickers); err != nil {
		return nil, fmt.Errorf("decode tickers: %w", err)
	}

	byPair := make(map[string]binanceTicker, len(tickers))
	for _, t := range tickers {
		byPair[t.Symbol] = t
	}

	usdtTry, ok := tickerPrice(byPair, "USDTTRY")
	if !ok {
		return nil, fmt.Errorf("no USDT/TRY pair in response")
	}

	var quotes []Quote
	for _, a := range Catalog {
		if a.Kind != KindCrypto {
			continue
		}

		t, found := byPair[a.Pair]
		if !found {
			continue
		}
		price, err := decimal.NewFromString(t.LastPrice)
		if err != nil || !price.IsPositive() {
			continue
		}
		change, _ := strconv.ParseFloat(t.PriceChangePercent, 64)

		value := price
		if strings.HasSuffix(a.Pair, "USDT") {
			value = price.Mul(usdtTry)
		}
		quotes = append(quotes, fromAsset(a.Code, value.Round(2), change))
	}

	return quotes, nil
}

func tickerPrice(byPair map[string]binanceTicker, pair string) (decimal.Decimal, bool) {
	t, ok := byPair[pair]
	if !ok {
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(t.LastPrice)
	if err != nil || !price.IsPositive() {
		return decimal.Zero, false
	}
	return price, true
}

// fromAsset fills catalog metadata into a quote. Unknown codes yield a
// bare quote so provider output never panics on catalog drift.
func fromAsset(code string, value decimal.Decimal, change float64) Quote {
	q := Quote{Code: code, Value: value, ChangePct: change}
	if a, ok := assetByCode[code]; ok {
		q.Name = a.Name
		q.Kind = a.Kind
		q.Icon = a.Icon
	}
	return q
}
