// Package httpledger — адаптер ledger.Gateway для dev-леджера (cmd/server) поверх JSON/HTTP.
package httpledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"Elegora/internal/cli/api"
	"Elegora/internal/cli/ledger"
	"Elegora/internal/cli/repo"

	"go.uber.org/zap"
)

// Client реализует ledger.Gateway и ledger.Connector.
type Client struct {
	baseURL      string
	http         api.Doer
	tokens       repo.TokenStore
	pollInterval time.Duration
	timeout      time.Duration
	logger       *zap.SugaredLogger
}

var (
	_ ledger.Gateway   = (*Client)(nil)
	_ ledger.Connector = (*Client)(nil)
)

// Options — параметры клиента.
type Options struct {
	BaseURL      string
	HTTP         api.Doer
	Tokens       repo.TokenStore
	PollInterval time.Duration
	// ConfirmTimeout ограничивает Await; 0 — только ctx вызывающего.
	ConfirmTimeout time.Duration
	Logger         *zap.SugaredLogger
}

// New создаёт клиент dev-леджера.
func New(opts Options) *Client {
	if opts.HTTP == nil {
		opts.HTTP = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		http:         opts.HTTP,
		tokens:       opts.Tokens,
		pollInterval: opts.PollInterval,
		timeout:      opts.ConfirmTimeout,
		logger:       opts.Logger,
	}
}

// Namespace — ключ, под которым клиент хранит изображения этого леджера.
func (c *Client) Namespace() string { return c.baseURL }

// itemDTO — items(id) в JSON; суммы — десятичные строки базовых единиц.
type itemDTO struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	Price           string `json:"price"`
	IsAuction       bool   `json:"is_auction"`
	AuctionDuration uint64 `json:"auction_duration"`
	IsRent          bool   `json:"is_rent"`
	RentalPrice     string `json:"rental_price"`
	RentalDuration  uint64 `json:"rental_duration"`
	UseLogistics    bool   `json:"use_logistics"`
	LogisticsPrice  string `json:"logistics_price"`
}

type listItemRequest struct {
	Name            string `json:"name"`
	Price           string `json:"price"`
	IsAuction       bool   `json:"is_auction"`
	AuctionDuration uint64 `json:"auction_duration"`
	IsRent          bool   `json:"is_rent"`
	RentalPrice     string `json:"rental_price"`
	RentalDuration  uint64 `json:"rental_duration"`
	UseLogistics    bool   `json:"use_logistics"`
	LogisticsPrice  string `json:"logistics_price"`
}

type txDTO struct {
	Hash   string `json:"hash"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
	Block  uint64 `json:"block"`
	ItemID uint64 `json:"item_id,omitempty"`
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type accountDTO struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

// Register создаёт аккаунт в dev-леджере и сохраняет сессию.
func (c *Client) Register(ctx context.Context, login, password string) (ledger.Account, error) {
	return c.auth(ctx, "/api/user/register", login, password)
}

// Login открывает сессию существующего аккаунта.
func (c *Client) Login(ctx context.Context, login, password string) (ledger.Account, error) {
	return c.auth(ctx, "/api/user/login", login, password)
}

func (c *Client) auth(ctx context.Context, path, login, password string) (ledger.Account, error) {
	resp, body, err := api.PostJSON(ctx, c.http, c.baseURL+path, credentials{Login: login, Password: password}, "")
	if err != nil {
		return ledger.Account{}, ledger.Unavailable(path, err)
	}
	if err := api.DecodeStatus(resp, body); err != nil {
		return ledger.Account{}, err
	}
	token, err := api.AuthTokenFromResponse(resp)
	if err != nil {
		return ledger.Account{}, err
	}
	if c.tokens != nil {
		if err := c.tokens.Save(token); err != nil {
			return ledger.Account{}, fmt.Errorf("save token: %w", err)
		}
		if err := c.tokens.SaveLogin(login); err != nil {
			return ledger.Account{}, fmt.Errorf("save login: %w", err)
		}
	}
	var acc accountDTO
	if err := json.Unmarshal(body, &acc); err != nil {
		return ledger.Account{}, fmt.Errorf("decode account: %w", err)
	}
	return ledger.Account{Address: acc.Address}, nil
}

// Connect проверяет сохранённую сессию и возвращает адрес аккаунта.
func (c *Client) Connect(ctx context.Context) (ledger.Account, error) {
	token := c.token()
	if token == "" {
		return ledger.Account{}, &ledger.RejectedError{Reason: "not logged in: run login or register"}
	}
	resp, body, err := api.GetJSON(ctx, c.http, c.baseURL+"/api/user/me", token)
	if err != nil {
		return ledger.Account{}, ledger.Unavailable("connect", err)
	}
	if err := api.DecodeStatus(resp, body); err != nil {
		if resp.StatusCode == http.StatusUnauthorized {
			return ledger.Account{}, &ledger.RejectedError{Reason: "session expired: run login", Err: err}
		}
		return ledger.Account{}, err
	}
	var acc accountDTO
	if err := json.Unmarshal(body, &acc); err != nil {
		return ledger.Account{}, fmt.Errorf("decode account: %w", err)
	}
	return ledger.Account{Address: acc.Address}, nil
}

func (c *Client) ItemCount(ctx context.Context) (uint64, error) {
	resp, body, err := api.GetJSON(ctx, c.http, c.baseURL+"/api/ledger/items/count", "")
	if err != nil {
		return 0, ledger.Unavailable("itemCount", err)
	}
	if err := api.DecodeStatus(resp, body); err != nil {
		return 0, ledger.Unavailable("itemCount", err)
	}
	var out struct {
		Count uint64 `json:"count"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, ledger.Unavailable("itemCount", err)
	}
	return out.Count, nil
}

func (c *Client) Item(ctx context.Context, id uint64) (ledger.Item, error) {
	if id == 0 {
		return ledger.Item{}, fmt.Errorf("items(0): %w", ledger.ErrItemNotFound)
	}
	url := c.baseURL + "/api/ledger/items/" + strconv.FormatUint(id, 10)
	resp, body, err := api.GetJSON(ctx, c.http, url, "")
	if err != nil {
		return ledger.Item{}, ledger.Unavailable("items", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return ledger.Item{}, fmt.Errorf("items(%d): %w", id, ledger.ErrItemNotFound)
	}
	if err := api.DecodeStatus(resp, body); err != nil {
		return ledger.Item{}, ledger.Unavailable("items", err)
	}
	var dto itemDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return ledger.Item{}, ledger.Unavailable("items", err)
	}
	return dto.toItem()
}

func (c *Client) SubmitListing(ctx context.Context, req ledger.ListingRequest) (ledger.PendingTx, error) {
	token := c.token()
	if token == "" {
		return ledger.PendingTx{}, &ledger.RejectedError{Reason: "not logged in: run login or register"}
	}
	payload := listItemRequest{
		Name:            req.Name,
		Price:           amountString(req.Price),
		IsAuction:       req.IsAuction,
		AuctionDuration: req.AuctionDuration,
		IsRent:          req.IsRent,
		RentalPrice:     amountString(req.RentalPrice),
		RentalDuration:  req.RentalDuration,
		UseLogistics:    req.UseLogistics,
		LogisticsPrice:  amountString(req.LogisticsPrice),
	}
	resp, body, err := api.PostJSON(ctx, c.http, c.baseURL+"/api/ledger/items", payload, token)
	if err != nil {
		return ledger.PendingTx{}, ledger.Unavailable("listItem", err)
	}
	if err := api.DecodeStatus(resp, body); err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.Status >= 500 {
			return ledger.PendingTx{}, ledger.Unavailable("listItem", err)
		}
		return ledger.PendingTx{}, &ledger.RejectedError{Reason: rejectReason(err), Err: err}
	}
	var out struct {
		TxHash string `json:"tx_hash"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.TxHash == "" {
		return ledger.PendingTx{}, ledger.Unavailable("listItem", fmt.Errorf("malformed response: %s", strings.TrimSpace(string(body))))
	}
	c.logger.Debugw("listing submitted", "tx", out.TxHash)
	return ledger.PendingTx{Hash: out.TxHash, SubmittedAt: time.Now()}, nil
}

// Await опрашивает статус транзакции до включения, отказа или истечения ctx.
func (c *Client) Await(ctx context.Context, tx ledger.PendingTx) (ledger.Receipt, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	url := c.baseURL + "/api/ledger/tx/" + tx.Hash
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		resp, body, err := api.GetJSON(ctx, c.http, url, "")
		switch {
		case ctx.Err() != nil:
			return ledger.Receipt{}, ledger.TimedOut(tx, ctx.Err())
		case err != nil:
			// сетевые сбои во время ожидания не фатальны: транзакция уже в леджере
			c.logger.Warnw("tx status poll failed", "tx", tx.Hash, "error", err)
		case api.DecodeStatus(resp, body) != nil:
			c.logger.Warnw("tx status poll rejected", "tx", tx.Hash, "status", resp.StatusCode)
		default:
			var st txDTO
			if err := json.Unmarshal(body, &st); err != nil {
				c.logger.Warnw("tx status decode failed", "tx", tx.Hash, "error", err)
				break
			}
			switch st.Status {
			case "confirmed":
				c.logger.Infow("tx confirmed", "tx", tx.Hash, "block", st.Block, "elapsed", tx.Elapsed())
				return ledger.Receipt{Hash: tx.Hash, Block: st.Block}, nil
			case "failed":
				reason := st.Reason
				if reason == "" {
					reason = ledger.ReasonReverted
				}
				return ledger.Receipt{}, &ledger.ConfirmationError{Hash: tx.Hash, Reason: reason, Detail: st.Detail}
			}
		}
		select {
		case <-ctx.Done():
			return ledger.Receipt{}, ledger.TimedOut(tx, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	t, err := c.tokens.Load()
	if err != nil {
		return ""
	}
	return t
}

func (d itemDTO) toItem() (ledger.Item, error) {
	price, err := parseAmount(d.Price)
	if err != nil {
		return ledger.Item{}, err
	}
	rental, err := parseAmount(d.RentalPrice)
	if err != nil {
		return ledger.Item{}, err
	}
	logistics, err := parseAmount(d.LogisticsPrice)
	if err != nil {
		return ledger.Item{}, err
	}
	return ledger.Item{
		ID:              d.ID,
		Name:            d.Name,
		Price:           price,
		IsAuction:       d.IsAuction,
		AuctionDuration: d.AuctionDuration,
		IsRent:          d.IsRent,
		RentalPrice:     rental,
		RentalDuration:  d.RentalDuration,
		UseLogistics:    d.UseLogistics,
		LogisticsPrice:  logistics,
	}, nil
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, ledger.Unavailable("items", fmt.Errorf("malformed amount %q", s))
	}
	return v, nil
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func rejectReason(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		if se.Status == http.StatusUnauthorized {
			return "not logged in: run login or register"
		}
		if se.Message != "" {
			return se.Message
		}
	}
	return err.Error()
}
