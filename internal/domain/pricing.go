package domain

import "github.com/shopspring/decimal"

// Криптовалюты, которые принимаются на пресейле
type CryptoSymbol string

const (
	SymbolBTC  CryptoSymbol = "BTC"
	SymbolETH  CryptoSymbol = "ETH"
	SymbolBNB  CryptoSymbol = "BNB"
	SymbolUSDT CryptoSymbol = "USDT"
	SymbolDOGE CryptoSymbol = "DOGE"
)

// Asset описывает принимаемый актив: точность отображения, сети
// для депозита и резервная цена на случай недоступности фида
type Asset struct {
	Symbol        CryptoSymbol    `json:"symbol"`
	Stablecoin    bool            `json:"stablecoin"`
	DisplayPlaces int32           `json:"display_places"` // знаков после запятой при показе суммы
	Networks      []string        `json:"networks"`       // пусто = одна сеть, выбор не нужен
	FallbackUSD   decimal.Decimal `json:"-"`              // последний рубеж, если фид и кэш молчат
	FeedID        string          `json:"-"`              // id актива во внешнем фиде цен
}

var assetTable = []Asset{
	{Symbol: SymbolBTC, DisplayPlaces: 6, FallbackUSD: decimal.NewFromInt(67824), FeedID: "bitcoin"},
	{Symbol: SymbolETH, DisplayPlaces: 6, FallbackUSD: decimal.NewFromInt(3340), FeedID: "ethereum"},
	{Symbol: SymbolBNB, DisplayPlaces: 6, FallbackUSD: decimal.NewFromInt(606), FeedID: "binancecoin"},
	{Symbol: SymbolUSDT, Stablecoin: true, DisplayPlaces: 2, Networks: []string{"ERC20", "TRC20", "BEP20"}, FallbackUSD: decimal.NewFromInt(1), FeedID: "tether"},
	{Symbol: SymbolDOGE, DisplayPlaces: 6, FallbackUSD: decimal.NewFromFloat(0.15), FeedID: "dogecoin"},
}

// Assets возвращает копию таблицы активов
func Assets() []Asset {
	out := make([]Asset, len(assetTable))
	copy(out, assetTable)
	return out
}

// AssetBySymbol ищет актив по символу
func AssetBySymbol(symbol CryptoSymbol) (Asset, bool) {
	for _, a := range assetTable {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return Asset{}, false
}

// RequiresNetwork сообщает, нужно ли указывать сеть при покупке этим активом
func (a Asset) RequiresNetwork() bool {
	return len(a.Networks) > 1
}

// HasNetwork проверяет, что сеть входит в список поддерживаемых
func (a Asset) HasNetwork(network string) bool {
	for _, n := range a.Networks {
		if n == network {
			return true
		}
	}
	return false
}

// Фиксированная цена токена в USD для текущей стадии пресейла.
// Меняется только вручную при переходе на следующую стадию
var TokenPriceUSD = decimal.RequireFromString("4.78")

// TokensForCrypto конвертирует сумму в крипте в токены по курсу фида.
// Результат остается точным, округление только при показе
func TokensForCrypto(cryptoAmount, cryptoUnitPriceUSD, tokenUnitPriceUSD decimal.Decimal) decimal.Decimal {
	return cryptoAmount.Mul(cryptoUnitPriceUSD).Div(tokenUnitPriceUSD)
}

// CryptoForTokens - обратная конвертация: сколько крипты нужно за tokenAmount токенов
func CryptoForTokens(tokenAmount, cryptoUnitPriceUSD, tokenUnitPriceUSD decimal.Decimal) decimal.Decimal {
	return tokenAmount.Mul(tokenUnitPriceUSD).Div(cryptoUnitPriceUSD)
}

// USDValue возвращает стоимость суммы актива в долларах
func USDValue(amount, unitPriceUSD decimal.Decimal) decimal.Decimal {
	return amount.Mul(unitPriceUSD)
}

// DisplayCrypto округляет сумму в крипте для показа: 6 знаков для
// монет, 2 для стейблкоинов. Единственное место округления крипто-сумм
func (a Asset) DisplayCrypto(amount decimal.Decimal) string {
	return amount.StringFixed(a.DisplayPlaces)
}

// DisplayTokens округляет количество токенов до целого при показе
// итога "вы получите". Внутренние расчеты это округление не трогает
func DisplayTokens(amount decimal.Decimal) string {
	return amount.Round(0).StringFixed(0)
}
