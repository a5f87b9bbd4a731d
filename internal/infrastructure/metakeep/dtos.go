package metakeep

// Wire formats of the MetaKeep v2/v3 app API.

type user struct {
	Email string `json:"email"`
}

type coin struct {
	Currency string `json:"currency"`
}

type coinList struct {
	Currencies []string `json:"currencies"`
}

type balanceRequest struct {
	Coins coinList `json:"coins"`
	Of    user     `json:"of"`
}

type mintRequest struct {
	Coin   coin   `json:"coin"`
	Amount string `json:"amount"`
	To     user   `json:"to"`
	Locked bool   `json:"locked"`
}

type transferRequest struct {
	Coin   coin   `json:"coin"`
	Amount string `json:"amount"`
	From   user   `json:"from"`
	To     user   `json:"to"`
}

type transferResponse struct {
	Status       string `json:"status"`
	ConsentToken string `json:"consentToken"`
}

type getWalletRequest struct {
	User user `json:"user"`
}

type getWalletResponse struct {
	Status string `json:"status"`
	Wallet struct {
		EthAddress string `json:"ethAddress"`
		SolAddress string `json:"solAddress"`
		EosAddress string `json:"eosAddress"`
	} `json:"wallet"`
}

type lambdaFunction struct {
	Name string `json:"name"`
	Args []any  `json:"args"`
}

type lambdaRequest struct {
	Lambda   string         `json:"lambda"`
	Function lambdaFunction `json:"function"`
	Reason   string         `json:"reason,omitempty"`
}

type statusEnvelope struct {
	Status string `json:"status"`
}
