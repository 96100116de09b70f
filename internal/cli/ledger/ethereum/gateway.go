// Package ethereum — адаптер ledger.Gateway для контракта маркетплейса в EVM-сети.
package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"Elegora/internal/cli/ledger"
)

// Backend — то, что адаптеру нужно от узла: вызовы контракта, квитанции и chain id.
type Backend interface {
	bind.ContractBackend
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// Config — параметры подключения к контракту.
type Config struct {
	RPCURL          string
	ContractAddress string
	// PrivateKey — hex secp256k1 ключ подписанта; пусто — режим только чтения.
	PrivateKey     string
	ChainID        int64
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

// Gateway реализует ledger.Gateway и ledger.Connector.
type Gateway struct {
	backend      Backend
	contract     *bind.BoundContract
	address      common.Address
	key          *ecdsa.PrivateKey
	chainID      *big.Int
	timeout      time.Duration
	pollInterval time.Duration
	logger       *zap.SugaredLogger
}

var (
	_ ledger.Gateway   = (*Gateway)(nil)
	_ ledger.Connector = (*Gateway)(nil)
)

// Dial подключается к RPC-узлу и создаёт адаптер.
func Dial(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (*Gateway, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("empty RPC URL")
	}
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, ledger.Unavailable("dial", err)
	}
	return New(client, cfg, logger)
}

// New создаёт адаптер поверх готового backend.
func New(backend Backend, cfg Config, logger *zap.SugaredLogger) (*Gateway, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.ContractAddress)
	}
	parsed, err := abi.JSON(strings.NewReader(MarketplaceABI))
	if err != nil {
		return nil, fmt.Errorf("parse ABI: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	g := &Gateway{
		backend:      backend,
		address:      common.HexToAddress(cfg.ContractAddress),
		timeout:      cfg.ConfirmTimeout,
		pollInterval: cfg.PollInterval,
		logger:       logger,
	}
	if g.pollInterval <= 0 {
		g.pollInterval = time.Second
	}
	g.contract = bind.NewBoundContract(g.address, parsed, backend, backend, backend)
	if cfg.PrivateKey != "" {
		key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		g.key = key
	}
	if cfg.ChainID > 0 {
		g.chainID = big.NewInt(cfg.ChainID)
	}
	return g, nil
}

// Namespace — ключ кэша изображений для этого контракта.
func (g *Gateway) Namespace() string { return strings.ToLower(g.address.Hex()) }

// Connect проверяет связь с узлом и возвращает адрес подписанта.
func (g *Gateway) Connect(ctx context.Context) (ledger.Account, error) {
	if g.key == nil {
		return ledger.Account{}, &ledger.RejectedError{Reason: "no signing key configured"}
	}
	if _, err := g.chain(ctx); err != nil {
		return ledger.Account{}, err
	}
	return ledger.Account{Address: ethcrypto.PubkeyToAddress(g.key.PublicKey).Hex()}, nil
}

func (g *Gateway) chain(ctx context.Context) (*big.Int, error) {
	if g.chainID != nil {
		return g.chainID, nil
	}
	id, err := g.backend.ChainID(ctx)
	if err != nil {
		return nil, ledger.Unavailable("chainId", err)
	}
	g.chainID = id
	return id, nil
}

func (g *Gateway) ItemCount(ctx context.Context) (uint64, error) {
	var out []interface{}
	if err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "itemCount"); err != nil {
		return 0, ledger.Unavailable("itemCount", err)
	}
	if len(out) != 1 {
		return 0, ledger.Unavailable("itemCount", fmt.Errorf("unexpected outputs: %d", len(out)))
	}
	n := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	if !n.IsUint64() {
		return 0, ledger.Unavailable("itemCount", fmt.Errorf("count overflows uint64: %s", n))
	}
	return n.Uint64(), nil
}

func (g *Gateway) Item(ctx context.Context, id uint64) (ledger.Item, error) {
	if id == 0 {
		return ledger.Item{}, fmt.Errorf("items(0): %w", ledger.ErrItemNotFound)
	}
	var out []interface{}
	if err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "items", new(big.Int).SetUint64(id)); err != nil {
		return ledger.Item{}, ledger.Unavailable("items", err)
	}
	return decodeItem(id, out)
}

// decodeItem собирает Item из выходов items(id). Пустое имя — незаписанный слот маппинга.
func decodeItem(id uint64, out []interface{}) (ledger.Item, error) {
	if len(out) != 9 {
		return ledger.Item{}, ledger.Unavailable("items", fmt.Errorf("unexpected outputs: %d", len(out)))
	}
	name, _ := out[0].(string)
	if name == "" {
		return ledger.Item{}, fmt.Errorf("items(%d): %w", id, ledger.ErrItemNotFound)
	}
	num := func(v interface{}) *big.Int { return *abi.ConvertType(v, new(*big.Int)).(**big.Int) }
	flag := func(v interface{}) bool { b, _ := v.(bool); return b }
	auction, rental := num(out[3]), num(out[6])
	if !auction.IsUint64() || !rental.IsUint64() {
		return ledger.Item{}, ledger.Unavailable("items", fmt.Errorf("items(%d): duration overflows uint64 (auction %s, rental %s)", id, auction, rental))
	}
	return ledger.Item{
		ID:              id,
		Name:            name,
		Price:           num(out[1]),
		IsAuction:       flag(out[2]),
		AuctionDuration: auction.Uint64(),
		IsRent:          flag(out[4]),
		RentalPrice:     num(out[5]),
		RentalDuration:  rental.Uint64(),
		UseLogistics:    flag(out[7]),
		LogisticsPrice:  num(out[8]),
	}, nil
}

func (g *Gateway) SubmitListing(ctx context.Context, req ledger.ListingRequest) (ledger.PendingTx, error) {
	if g.key == nil {
		return ledger.PendingTx{}, &ledger.RejectedError{Reason: "no signing key configured"}
	}
	chainID, err := g.chain(ctx)
	if err != nil {
		return ledger.PendingTx{}, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(g.key, chainID)
	if err != nil {
		return ledger.PendingTx{}, &ledger.RejectedError{Reason: "signer unavailable", Err: err}
	}
	opts.Context = ctx

	tx, err := g.contract.Transact(opts, "listItem",
		req.Name,
		orZero(req.Price),
		req.IsAuction,
		new(big.Int).SetUint64(req.AuctionDuration),
		req.IsRent,
		orZero(req.RentalPrice),
		new(big.Int).SetUint64(req.RentalDuration),
		req.UseLogistics,
		orZero(req.LogisticsPrice),
	)
	if err != nil {
		return ledger.PendingTx{}, submitError(err)
	}
	g.logger.Debugw("listItem sent", "tx", tx.Hash().Hex(), "nonce", tx.Nonce())
	return ledger.PendingTx{Hash: tx.Hash().Hex(), SubmittedAt: time.Now()}, nil
}

// Await опрашивает квитанцию до включения транзакции в блок.
func (g *Gateway) Await(ctx context.Context, tx ledger.PendingTx) (ledger.Receipt, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	hash := common.HexToHash(tx.Hash)
	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()
	for {
		receipt, err := g.backend.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return ledger.Receipt{}, &ledger.ConfirmationError{Hash: tx.Hash, Reason: ledger.ReasonReverted}
			}
			var block uint64
			if receipt.BlockNumber != nil {
				block = receipt.BlockNumber.Uint64()
			}
			g.logger.Infow("tx confirmed", "tx", tx.Hash, "block", block, "elapsed", tx.Elapsed())
			return ledger.Receipt{Hash: tx.Hash, Block: block}, nil
		}
		if err != nil && !errors.Is(err, goethereum.NotFound) && ctx.Err() == nil {
			g.logger.Warnw("receipt poll failed", "tx", tx.Hash, "error", err)
		}
		select {
		case <-ctx.Done():
			return ledger.Receipt{}, ledger.TimedOut(tx, ctx.Err())
		case <-ticker.C:
		}
	}
}

// nodeRejections — ответы узла, означающие отказ принять транзакцию, а не сбой связи.
var nodeRejections = []string{
	"insufficient funds",
	"execution reverted",
	"nonce too low",
	"replacement transaction underpriced",
	"transaction underpriced",
	"intrinsic gas too low",
	"gas required exceeds allowance",
	"exceeds block gas limit",
	"already known",
}

// submitError отделяет отказ узла (RejectedError) от недоступности узла (ErrGatewayUnavailable).
func submitError(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) || errors.Is(err, bind.ErrNoCode) {
		return &ledger.RejectedError{Reason: rejectReason(err), Err: err}
	}
	msg := strings.ToLower(err.Error())
	for _, r := range nodeRejections {
		if strings.Contains(msg, r) {
			return &ledger.RejectedError{Reason: rejectReason(err), Err: err}
		}
	}
	return ledger.Unavailable("listItem", err)
}

func rejectReason(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "insufficient funds"):
		return ledger.ReasonInsufficientFunds
	case strings.Contains(msg, "execution reverted"):
		return ledger.ReasonReverted + ": " + msg
	default:
		return msg
	}
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
