package ethereum

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Elegora/internal/cli/ledger"
)

const contractHex = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

// fakeChain — узел в памяти: хранит товары контракта и майнит listItem по запросу.
// Неиспользуемые методы bind.ContractBackend паникуют через nil-встраивание.
type fakeChain struct {
	bind.ContractBackend

	t      *testing.T
	parsed abi.ABI

	mu       sync.Mutex
	items    []ledger.Item
	sent     []*types.Transaction
	mined    map[common.Hash]*types.Receipt
	sendErr  error
	callErr  error
	mineAuto bool
}

func newFakeChain(t *testing.T, items ...ledger.Item) *fakeChain {
	parsed, err := abi.JSON(strings.NewReader(MarketplaceABI))
	require.NoError(t, err)
	return &fakeChain{t: t, parsed: parsed, items: items, mined: map[common.Hash]*types.Receipt{}, mineAuto: true}
}

func (f *fakeChain) CallContract(_ context.Context, call goethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.callErr != nil {
		return nil, f.callErr
	}
	method, err := f.parsed.MethodById(call.Data[:4])
	require.NoError(f.t, err)
	f.mu.Lock()
	defer f.mu.Unlock()
	switch method.Name {
	case "itemCount":
		return method.Outputs.Pack(big.NewInt(int64(len(f.items))))
	case "items":
		args, err := method.Inputs.Unpack(call.Data[4:])
		require.NoError(f.t, err)
		id := args[0].(*big.Int).Uint64()
		if id == 0 || id > uint64(len(f.items)) {
			z := new(big.Int)
			return method.Outputs.Pack("", z, false, z, false, z, z, false, z)
		}
		it := f.items[id-1]
		return method.Outputs.Pack(it.Name, it.Price, it.IsAuction, new(big.Int).SetUint64(it.AuctionDuration),
			it.IsRent, it.RentalPrice, new(big.Int).SetUint64(it.RentalDuration), it.UseLogistics, it.LogisticsPrice)
	}
	f.t.Fatalf("unexpected call %s", method.Name)
	return nil, nil
}

func (f *fakeChain) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeChain) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeChain) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1)}, nil
}

func (f *fakeChain) SuggestGasPrice(context.Context) (*big.Int, error) { return big.NewInt(1), nil }

func (f *fakeChain) SuggestGasTipCap(context.Context) (*big.Int, error) { return big.NewInt(1), nil }

func (f *fakeChain) EstimateGas(context.Context, goethereum.CallMsg) (uint64, error) {
	return 100_000, nil
}

func (f *fakeChain) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.sent)), nil
}

func (f *fakeChain) ChainID(context.Context) (*big.Int, error) { return big.NewInt(1337), nil }

func (f *fakeChain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	if f.mineAuto {
		f.mineLocked(tx)
	}
	return nil
}

func (f *fakeChain) mineLocked(tx *types.Transaction) {
	method, err := f.parsed.MethodById(tx.Data()[:4])
	require.NoError(f.t, err)
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	require.NoError(f.t, err)
	status := types.ReceiptStatusSuccessful
	if args[0].(string) == "" {
		status = types.ReceiptStatusFailed
	} else {
		f.items = append(f.items, ledger.Item{
			ID:              uint64(len(f.items) + 1),
			Name:            args[0].(string),
			Price:           args[1].(*big.Int),
			IsAuction:       args[2].(bool),
			AuctionDuration: args[3].(*big.Int).Uint64(),
			IsRent:          args[4].(bool),
			RentalPrice:     args[5].(*big.Int),
			RentalDuration:  args[6].(*big.Int).Uint64(),
			UseLogistics:    args[7].(bool),
			LogisticsPrice:  args[8].(*big.Int),
		})
	}
	f.mined[tx.Hash()] = &types.Receipt{Status: status, BlockNumber: big.NewInt(int64(len(f.mined) + 2)), TxHash: tx.Hash()}
}

func (f *fakeChain) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.mined[hash]; ok {
		return r, nil
	}
	return nil, goethereum.NotFound
}

func newKeyHex(t *testing.T) string {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	return hex.EncodeToString(ethcrypto.FromECDSA(key))
}

func newGateway(t *testing.T, chain *fakeChain, withKey bool) *Gateway {
	cfg := Config{ContractAddress: contractHex, PollInterval: 5 * time.Millisecond, ConfirmTimeout: 200 * time.Millisecond}
	if withKey {
		cfg.PrivateKey = newKeyHex(t)
	}
	g, err := New(chain, cfg, nil)
	require.NoError(t, err)
	return g
}

func book() ledger.Item {
	return ledger.Item{ID: 1, Name: "Book", Price: big.NewInt(5e17), RentalPrice: new(big.Int), LogisticsPrice: new(big.Int)}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(newFakeChain(t), Config{ContractAddress: "nope"}, nil)
	assert.Error(t, err)

	_, err = New(newFakeChain(t), Config{ContractAddress: contractHex, PrivateKey: "zz"}, nil)
	assert.Error(t, err)
}

func TestGateway_Reads(t *testing.T) {
	g := newGateway(t, newFakeChain(t, book()), false)
	ctx := context.Background()

	n, err := g.ItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	it, err := g.Item(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Book", it.Name)
	assert.Equal(t, uint64(1), it.ID)
	assert.Equal(t, 0, it.Price.Cmp(big.NewInt(5e17)))

	_, err = g.Item(ctx, 2)
	assert.ErrorIs(t, err, ledger.ErrItemNotFound)
	_, err = g.Item(ctx, 0)
	assert.ErrorIs(t, err, ledger.ErrItemNotFound)

	assert.Equal(t, strings.ToLower(contractHex), g.Namespace())
}

func TestGateway_ReadUnavailable(t *testing.T) {
	chain := newFakeChain(t)
	chain.callErr = errors.New("connection refused")
	g := newGateway(t, chain, false)

	_, err := g.ItemCount(context.Background())
	assert.ErrorIs(t, err, ledger.ErrGatewayUnavailable)
	_, err = g.Item(context.Background(), 1)
	assert.ErrorIs(t, err, ledger.ErrGatewayUnavailable)
}

func TestGateway_SubmitAndAwait(t *testing.T) {
	chain := newFakeChain(t, book())
	g := newGateway(t, chain, true)
	ctx := context.Background()

	acc, err := g.Connect(ctx)
	require.NoError(t, err)
	assert.True(t, common.IsHexAddress(acc.Address))

	tx, err := g.SubmitListing(ctx, ledger.ListingRequest{Name: "Lamp", Price: big.NewInt(10), IsRent: true, RentalPrice: big.NewInt(3), RentalDuration: 7})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tx.Hash, "0x"))

	rc, err := g.Await(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash, rc.Hash)
	assert.NotZero(t, rc.Block)

	it, err := g.Item(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", it.Name)
	assert.True(t, it.IsRent)
	assert.Equal(t, uint64(7), it.RentalDuration)
	assert.Equal(t, 0, it.LogisticsPrice.Sign())

	signed := chain.sent[0]
	assert.Equal(t, 0, big.NewInt(1337).Cmp(signed.ChainId()))
}

func TestGateway_SubmitWithoutKey(t *testing.T) {
	g := newGateway(t, newFakeChain(t), false)
	_, err := g.SubmitListing(context.Background(), ledger.ListingRequest{Name: "x"})
	assert.ErrorIs(t, err, ledger.ErrSubmissionRejected)
	_, err = g.Connect(context.Background())
	assert.ErrorIs(t, err, ledger.ErrSubmissionRejected)
}

func TestGateway_SubmitRejected(t *testing.T) {
	chain := newFakeChain(t)
	chain.sendErr = errors.New("insufficient funds for gas * price + value")
	g := newGateway(t, chain, true)

	_, err := g.SubmitListing(context.Background(), ledger.ListingRequest{Name: "x"})
	require.ErrorIs(t, err, ledger.ErrSubmissionRejected)
	var rej *ledger.RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, ledger.ReasonInsufficientFunds, rej.Reason)
}

func TestGateway_AwaitReverted(t *testing.T) {
	chain := newFakeChain(t)
	g := newGateway(t, chain, true)

	tx, err := g.SubmitListing(context.Background(), ledger.ListingRequest{})
	require.NoError(t, err)
	_, err = g.Await(context.Background(), tx)
	require.ErrorIs(t, err, ledger.ErrConfirmationFailed)
	var ce *ledger.ConfirmationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ledger.ReasonReverted, ce.Reason)
}

func TestGateway_AwaitTimeout(t *testing.T) {
	chain := newFakeChain(t)
	chain.mineAuto = false
	g := newGateway(t, chain, true)

	tx, err := g.SubmitListing(context.Background(), ledger.ListingRequest{Name: "slow"})
	require.NoError(t, err)
	assert.False(t, tx.SubmittedAt.IsZero())
	_, err = g.Await(context.Background(), tx)
	var ce *ledger.ConfirmationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ledger.ReasonTimeout, ce.Reason)
	assert.Contains(t, ce.Detail, "after submission")
}

// nodeError — ошибка JSON-RPC от узла (реализует rpc.Error).
type nodeError struct{ msg string }

func (e nodeError) Error() string  { return e.msg }
func (e nodeError) ErrorCode() int { return -32000 }

func TestGateway_SubmitErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		sendErr  error
		rejected bool
	}{
		{"dial refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, false},
		{"connection dropped", fmt.Errorf("post http://127.0.0.1:8545: %w", io.ErrUnexpectedEOF), false},
		{"node rpc error", nodeError{msg: "nonce too low"}, true},
		{"reverted on estimate", errors.New("execution reverted: name required"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := newFakeChain(t)
			chain.sendErr = tt.sendErr
			g := newGateway(t, chain, true)

			_, err := g.SubmitListing(context.Background(), ledger.ListingRequest{Name: "x"})
			require.Error(t, err)
			if tt.rejected {
				assert.ErrorIs(t, err, ledger.ErrSubmissionRejected)
				assert.NotErrorIs(t, err, ledger.ErrGatewayUnavailable)
			} else {
				assert.ErrorIs(t, err, ledger.ErrGatewayUnavailable)
				assert.NotErrorIs(t, err, ledger.ErrSubmissionRejected)
			}
		})
	}
}

func TestDecodeItem_DurationOverflow(t *testing.T) {
	z := new(big.Int)
	huge := new(big.Int).Lsh(big.NewInt(1), 64)
	out := []interface{}{"Book", big.NewInt(1), true, huge, false, z, z, false, z}

	_, err := decodeItem(1, out)
	assert.ErrorIs(t, err, ledger.ErrGatewayUnavailable)

	out[3] = big.NewInt(3600)
	it, err := decodeItem(1, out)
	require.NoError(t, err)
	assert.Equal(t, uint64(3600), it.AuctionDuration)
}
