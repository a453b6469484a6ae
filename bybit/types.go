package bybit

// Wire types for the Bybit v5 REST API. Numbers arrive as strings and
// are parsed at the edge.

type envelope struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
}

type klineResponse struct {
	envelope
	Result struct {
		Symbol string `json:"symbol"`
		// Each row is [startTime, open, high, low, close, volume,
		// turnover], newest first.
		List [][]string `json:"list"`
	} `json:"result"`
}

type positionResponse struct {
	envelope
	Result struct {
		List []apiPosition `json:"list"`
	} `json:"result"`
}

type apiPosition struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"` // "Buy", "Sell" or "None"
	Size     string `json:"size"`
	AvgPrice string `json:"avgPrice"`
}

type walletResponse struct {
	envelope
	Result struct {
		List []struct {
			AccountType string `json:"accountType"`
			Coin        []struct {
				Coin          string `json:"coin"`
				WalletBalance string `json:"walletBalance"`
			} `json:"coin"`
		} `json:"list"`
	} `json:"result"`
}

type orderResponse struct {
	envelope
	Result struct {
		OrderID     string `json:"orderId"`
		OrderLinkID string `json:"orderLinkId"`
	} `json:"result"`
}

type orderRequest struct {
	Category    string `json:"category"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	OrderType   string `json:"orderType"`
	Qty         string `json:"qty"`
	TimeInForce string `json:"timeInForce"`
	TakeProfit  string `json:"takeProfit,omitempty"`
	StopLoss    string `json:"stopLoss,omitempty"`
	TPTriggerBy string `json:"tpTriggerBy,omitempty"`
	SLTriggerBy string `json:"slTriggerBy,omitempty"`
}
