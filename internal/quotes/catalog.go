package quotes

import "github.com/shopspring/decimal"

// AssetKind groups quotes for filtering: currencies, precious metals,
// and cryptocurrencies.
type AssetKind string

const (
	KindFiat   AssetKind = "fiat"
	KindGold   AssetKind = "gold"
	KindCrypto AssetKind = "crypto"
)

// Asset is one entry of the fixed quote catalog. Pair is the provider
// symbol used to look the asset up upstream.
type Asset struct {
	Code string
	Name string
	Kind AssetKind
	Icon string
	Pair string
}

// Quote is one asset with its current TRY value and 24h change.
type Quote struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Kind      AssetKind       `json:"kind"`
	Icon      string          `json:"icon"`
	Value     decimal.Decimal `json:"value"`
	ChangePct float64         `json:"change_pct"`
}

// Catalog lists every asset the quote page knows about. Providers fill
// in live values; anything they miss falls back to Defaults.
var Catalog = []Asset{
	{Code: "USD", Name: "US Dollar (USD)", Kind: KindFiat, Icon: "dollar-sign", Pair: "USDTRY"},
	{Code: "EUR", Name: "Euro (EUR)", Kind: KindFiat, Icon: "euro-sign", Pair: "EURTRY"},
	{Code: "GBP", Name: "British Pound (GBP)", Kind: KindFiat, Icon: "pound-sign", Pair: "GBPTRY"},
	{Code: "JPY", Name: "Japanese Yen (JPY)", Kind: KindFiat, Icon: "yen-sign", Pair: "JPYTRY"},
	{Code: "CHF", Name: "Swiss Franc (CHF)", Kind: KindFiat, Icon: "money-bill", Pair: "CHFTRY"},
	{Code: "CAD", Name: "Canadian Dollar (CAD)", Kind: KindFiat, Icon: "dollar-sign", Pair: "CADTRY"},
	{Code: "AUD", Name: "Australian Dollar (AUD)", Kind: KindFiat, Icon: "dollar-sign", Pair: "AUDTRY"},
	{Code: "CNY", Name: "Chinese Yuan (CNY)", Kind: KindFiat, Icon: "yen-sign", Pair: "CNYTRY"},
	{Code: "RUB", Name: "Russian Ruble (RUB)", Kind: KindFiat, Icon: "ruble-sign", Pair: "RUBTRY"},
	{Code: "SAR", Name: "Saudi Riyal (SAR)", Kind: KindFiat, Icon: "money-bill", Pair: "SARTRY"},
	{Code: "KWD", Name: "Kuwaiti Dinar (KWD)", Kind: KindFiat, Icon: "money-bill", Pair: "KWDTRY"},
	{Code: "AED", Name: "UAE Dirham (AED)", Kind: KindFiat, Icon: "money-bill", Pair: "AEDTRY"},
	{Code: "NOK", Name: "Norwegian Krone (NOK)", Kind: KindFiat, Icon: "money-bill", Pair: "NOKTRY"},
	{Code: "SEK", Name: "Swedish Krona (SEK)", Kind: KindFiat, Icon: "money-bill", Pair: "SEKTRY"},
	{Code: "DKK", Name: "Danish Krone (DKK)", Kind: KindFiat, Icon: "money-bill", Pair: "DKKTRY"},

	{Code: "XAU", Name: "Gram Gold", Kind: KindGold, Icon: "coins", Pair: "GA"},
	{Code: "XAU_QUARTER", Name: "Quarter Gold", Kind: KindGold, Icon: "coins", Pair: "C"},
	{Code: "XAU_HALF", Name: "Half Gold", Kind: KindGold, Icon: "coins", Pair: "Y"},
	{Code: "XAU_FULL", Name: "Full Gold", Kind: KindGold, Icon: "coins", Pair: "T"},
	{Code: "XAU_REPUBLIC", Name: "Republic Gold", Kind: KindGold, Icon: "coins", Pair: "CMR"},
	{Code: "XAG", Name: "Silver (XAG)", Kind: KindGold, Icon: "coins", Pair: "XAG"},

	{Code: "BTC", Name: "Bitcoin (BTC)", Kind: KindCrypto, Icon: "bitcoin", Pair: "BTCUSDT"},
	{Code: "ETH", Name: "Ethereum (ETH)", Kind: KindCrypto, Icon: "ethereum", Pair: "ETHUSDT"},
	{Code: "USDT", Name: "Tether (USDT)", Kind: KindCrypto, Icon: "dollar-sign", Pair: "USDTTRY"},
	{Code: "BNB", Name: "Binance Coin (BNB)", Kind: KindCrypto, Icon: "coins", Pair: "BNBUSDT"},
	{Code: "SOL", Name: "Solana (SOL)", Kind: KindCrypto, Icon: "sun", Pair: "SOLUSDT"},
	{Code: "XRP", Name: "Ripple (XRP)", Kind: KindCrypto, Icon: "wave-square", Pair: "XRPUSDT"},
	{Code: "ADA", Name: "Cardano (ADA)", Kind: KindCrypto, Icon: "diagram", Pair: "ADAUSDT"},
	{Code: "AVAX", Name: "Avalanche (AVAX)", Kind: KindCrypto, Icon: "mountain", Pair: "AVAXUSDT"},
	{Code: "DOGE", Name: "Dogecoin (DOGE)", Kind: KindCrypto, Icon: "dog", Pair: "DOGEUSDT"},
	{Code: "TRX", Name: "TRON (TRX)", Kind: KindCrypto, Icon: "network-wired", Pair: "TRXUSDT"},
	{Code: "DOT", Name: "Polkadot (DOT)", Kind: KindCrypto, Icon: "circle-notch", Pair: "DOTUSDT"},
	{Code: "LTC", Name: "Litecoin (LTC)", Kind: KindCrypto, Icon: "coins", Pair: "LTCUSDT"},
	{Code: "LINK", Name: "Chainlink (LINK)", Kind: KindCrypto, Icon: "link", Pair: "LINKUSDT"},
	{Code: "ATOM", Name: "Cosmos (ATOM)", Kind: KindCrypto, Icon: "atom", Pair: "ATOMUSDT"},
	{Code: "XMR", Name: "Monero (XMR)", Kind: KindCrypto, Icon: "user-secret", Pair: "XMRUSDT"},
}

// assetByCode indexes the catalog; built once at init.
var assetByCode = func() map[string]Asset {
	m := make(map[string]Asset, len(Catalog))
	for _, a := range Catalog {
		m[a.Code] = a
	}
	return m
}()

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Defaults are the static fallback values served when no provider can be
// reached. Values are intentionally plausible rather than live.
var Defaults = []Quote{
	{Code: "USD", Value: d("32.86"), ChangePct: 0.35},
	{Code: "EUR", Value: d("35.50"), ChangePct: -0.20},
	{Code: "GBP", Value: d("41.24"), ChangePct: 0.15},
	{Code: "JPY", Value: d("0.21"), ChangePct: 0.05},
	{Code: "CHF", Value: d("36.18"), ChangePct: 0.22},
	{Code: "CAD", Value: d("24.15"), ChangePct: 0.10},
	{Code: "AUD", Value: d("21.70"), ChangePct: -0.05},
	{Code: "CNY", Value: d("4.54"), ChangePct: 0.12},
	{Code: "RUB", Value: d("0.36"), ChangePct: 0.02},
	{Code: "SAR", Value: d("8.76"), ChangePct: 0.08},
	{Code: "KWD", Value: d("107.25"), ChangePct: 0.25},
	{Code: "AED", Value: d("8.95"), ChangePct: 0.10},
	{Code: "NOK", Value: d("3.05"), ChangePct: 0.06},
	{Code: "SEK", Value: d("3.12"), ChangePct: 0.04},
	{Code: "DKK", Value: d("4.76"), ChangePct: 0.07},
	{Code: "XAU", Value: d("2410"), ChangePct: 0.45},
	{Code: "XAU_QUARTER", Value: d("4217"), ChangePct: 0.30},
	{Code: "XAU_HALF", Value: d("8435"), ChangePct: 0.35},
	{Code: "XAU_FULL", Value: d("16870"), ChangePct: 0.40},
	{Code: "XAU_REPUBLIC", Value: d("17352"), ChangePct: 0.42},
	{Code: "XAG", Value: d("29.85"), ChangePct: 0.75},
	{Code: "BTC", Value: d("2150000"), ChangePct: 2.5},
	{Code: "ETH", Value: d("112000"), ChangePct: 1.8},
	{Code: "USDT", Value: d("33.45"), ChangePct: 0.2},
	{Code: "BNB", Value: d("12500"), ChangePct: 1.2},
	{Code: "SOL", Value: d("4560"), ChangePct: 3.4},
	{Code: "XRP", Value: d("23.45"), ChangePct: 0.8},
	{Code: "ADA", Value: d("18.90"), ChangePct: 0.5},
	{Code: "AVAX", Value: d("870"), ChangePct: 2.1},
	{Code: "DOGE", Value: d("4.25"), ChangePct: 1.3},
	{Code: "TRX", Value: d("5.75"), ChangePct: 0.7},
	{Code: "DOT", Value: d("240"), ChangePct: 1.1},
	{Code: "LTC", Value: d("2850"), ChangePct: 0.9},
	{Code: "LINK", Value: d("560"), ChangePct: 1.8},
	{Code: "ATOM", Value: d("385"), ChangePct: 1.5},
	{Code: "XMR", Value: d("5960"), ChangePct: 0.6},
}
