// Package erp implements the external stock feed against the Tiny ERP API.
// Only the narrow per-variation stock lookup is exposed; product search and
// catalog import live in the inventory tooling, not here.
package erp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/config"
)

// ErrUnavailable marks transport-level failures: the feed is down, timing
// out or answering with a non-OK status. Callers retry on the next
// scheduled run.
var ErrUnavailable = errors.New("erp stock feed unavailable")

// Client is a thin Tiny ERP API client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg config.ERPConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

// looseNumber tolerates Tiny's habit of quoting numeric fields: it accepts
// both a bare JSON number and a numeric string, keeping the raw text.
type looseNumber string

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*n = looseNumber(s)
	return nil
}

type stockResponse struct {
	Retorno struct {
		Status     string      `json:"status"`
		CodigoErro looseNumber `json:"codigo_erro"`
		Erro       string      `json:"erro"`
		Produto    struct {
			Saldo looseNumber `json:"saldo"`
		} `json:"produto"`
	} `json:"retorno"`
}

// GetVariationStock fetches the stock balance for one product variation via
// produto.obter.estoque.php. Errors are surfaced, never collapsed to zero:
// a failed lookup must leave local stock untouched.
func (c *Client) GetVariationStock(ctx context.Context, variationRef string) (int, error) {
	if c.token == "" {
		return 0, fmt.Errorf("erp api token not configured")
	}

	endpoint := c.baseURL + "/produto.obter.estoque.php"
	params := url.Values{}
	params.Set("token", c.token)
	params.Set("formato", "json")
	params.Set("id", variationRef)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build stock request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch stock for variation %s: %w", variationRef, ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch stock for variation %s: status %d: %w", variationRef, resp.StatusCode, ErrUnavailable)
	}

	var payload stockResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode stock response for variation %s: %w", variationRef, err)
	}

	if payload.Retorno.CodigoErro != "" {
		return 0, fmt.Errorf("erp error %s for variation %s: %s",
			payload.Retorno.CodigoErro, variationRef, payload.Retorno.Erro)
	}

	if payload.Retorno.Produto.Saldo == "" {
		return 0, nil
	}

	// Tiny reports balances as decimals; stock is tracked in whole units.
	saldo, err := strconv.ParseFloat(string(payload.Retorno.Produto.Saldo), 64)
	if err != nil {
		return 0, fmt.Errorf("parse stock balance %q for variation %s: %w",
			payload.Retorno.Produto.Saldo, variationRef, err)
	}
	if saldo < 0 {
		return 0, nil
	}
	return int(saldo), nil
}
