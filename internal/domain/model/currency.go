package model

type Currency string

const (
	USD Currency = "USD"
	VES Currency = "VES"
	EUR Currency = "EUR"
	COP Currency = "COP"
)

// SupportedCurrencies is the declared display order.
var SupportedCurrencies = []Currency{USD, VES, EUR, COP}

var currencyNames = map[Currency]string{
	USD: "US Dollar",
	VES: "Venezuelan Bolivar",
	EUR: "Euro",
	COP: "Colombian Peso",
}

func (c Currency) IsSupported() bool {
	for _, supportedCurrency := range SupportedCurrencies {
		if c == supportedCurrency {
			return true
		}
	}
	return false
}

func (c Currency) Name() string {
	return currencyNames[c]
}

func (c Currency) String() string {
	return string(c)
}
