package node

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client defines the LCD/WS surface we depend on.
type Client interface {
	Validators(ctx context.Context) ([]Validator, error)
	Zones(ctx context.Context) ([]Zone, error)
	Balance(ctx context.Context, addr, denom string) (Coin, error)
	WaitForTx(ctx context.Context, hash string) (TxResult, error)
}

type Validator struct {
	OperatorAddress string
	Moniker         string
	Status          string // BOND_STATUS_*
	Tokens          string
	Commission      string // decimal rate, e.g. "0.050000000000000000"
	Jailed          bool
}

// Zone is a host chain registered with Quicksilver interchain staking.
type Zone struct {
	ChainID        string
	ConnectionID   string
	AccountPrefix  string
	LocalDenom     string
	BaseDenom      string
	DepositAddress string
	Is118          bool
}

type Coin struct {
	Denom  string
	Amount string
}

type TxResult struct {
	Hash   string
	Height int64
	Code   uint32
	Log    string
}

// StatusError is returned for non-2xx LCD responses.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
	}
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.Code, e.Body)
}

const pageLimit = 200

type httpClient struct {
	http  *http.Client
	lcd   string // e.g. https://cosmos-rest.publicnode.com
	wsURL string // e.g. wss://cosmos-rpc.publicnode.com:443/websocket
}

// New constructs an LCD client. rpc is only needed for WaitForTx.
func New(lcd, rpc string) Client {
	return &httpClient{
		http:  &http.Client{Timeout: 10 * time.Second},
		lcd:   strings.TrimRight(lcd, "/"),
		wsURL: deriveWS(strings.TrimRight(rpc, "/")),
	}
}

func deriveWS(base string) string {
	switch {
	case base == "":
		return ""
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://") + "/websocket"
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://") + "/websocket"
	case strings.HasPrefix(base, "ws://"), strings.HasPrefix(base, "wss://"):
		return base
	}
	return "ws://" + base + "/websocket"
}

func (c *httpClient) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := c.lcd + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{URL: u, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *httpClient) Validators(ctx context.Context) ([]Validator, error) {
	var out []Validator
	key := ""
	for {
		q := url.Values{}
		q.Set("pagination.limit", fmt.Sprint(pageLimit))
		if key != "" {
			q.Set("pagination.key", key)
		}
		var payload struct {
			Validators []struct {
				OperatorAddress string `json:"operator_address"`
				Jailed          bool   `json:"jailed"`
				Status          string `json:"status"`
				Tokens          string `json:"tokens"`
				Description     struct {
					Moniker string `json:"moniker"`
				} `json:"description"`
				Commission struct {
					CommissionRates struct {
						Rate string `json:"rate"`
					} `json:"commission_rates"`
				} `json:"commission"`
			} `json:"validators"`
			Pagination struct {
				NextKey string `json:"next_key"`
			} `json:"pagination"`
		}
		if err := c.getJSON(ctx, "/cosmos/staking/v1beta1/validators", q, &payload); err != nil {
			return nil, err
		}
		for _, v := range payload.Validators {
			out = append(out, Validator{
				OperatorAddress: v.OperatorAddress,
				Moniker:         v.Description.Moniker,
				Status:          v.Status,
				Tokens:          v.Tokens,
				Commission:      v.Commission.CommissionRates.Rate,
				Jailed:          v.Jailed,
			})
		}
		if payload.Pagination.NextKey == "" || payload.Pagination.NextKey == key {
			return out, nil
		}
		key = payload.Pagination.NextKey
	}
}

func (c *httpClient) Zones(ctx context.Context) ([]Zone, error) {
	var payload struct {
		Zones []struct {
			ConnectionID   string `json:"connection_id"`
			ChainID        string `json:"chain_id"`
			AccountPrefix  string `json:"account_prefix"`
			LocalDenom     string `json:"local_denom"`
			BaseDenom      string `json:"base_denom"`
			Is118          bool   `json:"is_118"`
			DepositAddress *struct {
				Address string `json:"address"`
			} `json:"deposit_address"`
		} `json:"zones"`
	}
	if err := c.getJSON(ctx, "/quicksilver/interchainstaking/v1/zones", nil, &payload); err != nil {
		return nil, err
	}
	out := make([]Zone, 0, len(payload.Zones))
	for _, z := range payload.Zones {
		zone := Zone{
			ChainID:       z.ChainID,
			ConnectionID:  z.ConnectionID,
			AccountPrefix: z.AccountPrefix,
			LocalDenom:    z.LocalDenom,
			BaseDenom:     z.BaseDenom,
			Is118:         z.Is118,
		}
		if z.DepositAddress != nil {
			zone.DepositAddress = z.DepositAddress.Address
		}
		out = append(out, zone)
	}
	return out, nil
}

func (c *httpClient) Balance(ctx context.Context, addr, denom string) (Coin, error) {
	if addr == "" {
		return Coin{}, fmt.Errorf("balance: address required")
	}
	q := url.Values{}
	q.Set("denom", denom)
	var payload struct {
		Balance struct {
			Denom  string `json:"denom"`
			Amount string `json:"amount"`
		} `json:"balance"`
	}
	if err := c.getJSON(ctx, "/cosmos/bank/v1beta1/balances/"+url.PathEscape(addr)+"/by_denom", q, &payload); err != nil {
		return Coin{}, err
	}
	coin := Coin{Denom: payload.Balance.Denom, Amount: payload.Balance.Amount}
	if coin.Denom == "" {
		coin.Denom = denom
	}
	if coin.Amount == "" {
		coin.Amount = "0"
	}
	return coin, nil
}

func (c *httpClient) WaitForTx(ctx context.Context, hash string) (TxResult, error) {
	if c.wsURL == "" {
		return TxResult{}, fmt.Errorf("wait for tx: no rpc endpoint configured")
	}
	return DialAndWaitForTx(ctx, c.wsURL, hash)
}
