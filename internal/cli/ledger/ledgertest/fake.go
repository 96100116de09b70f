// Package ledgertest — in-memory леджер для тестов сервисов и команд.
package ledgertest

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"Elegora/internal/cli/ledger"
)

// Fake реализует ledger.Gateway и ledger.Connector поверх слайса items.
// Транзакции подтверждаются в Await: item добавляется в момент подтверждения.
type Fake struct {
	mu       sync.Mutex
	items    []ledger.Item
	pending  map[string]ledger.ListingRequest
	seq      int
	reads    int
	connects int

	// FailReadAt — номер вызова Item (с 1), который вернёт ErrGatewayUnavailable; 0 — не падать.
	FailReadAt int
	// ConnectErr возвращается из Connect, если задан.
	ConnectErr error
	// CountErr возвращается из ItemCount, если задан.
	CountErr error
	// RejectWith — причина отказа SubmitListing; пусто — принять.
	RejectWith string
	// FailConfirm — причина отказа Await (ledger.Reason*); пусто — подтвердить.
	FailConfirm string
	// Gate, если задан, блокирует Await до закрытия канала или отмены ctx.
	Gate chan struct{}
	// BeforeConfirm вызывается внутри Await перед добавлением item (имитация чужих транзакций).
	BeforeConfirm func(f *Fake)

	Submitted []ledger.ListingRequest
	Address   string
}

var (
	_ ledger.Gateway   = (*Fake)(nil)
	_ ledger.Connector = (*Fake)(nil)
)

// New создаёт Fake с заданными items; id проставляются по порядку с 1.
func New(items ...ledger.Item) *Fake {
	f := &Fake{pending: map[string]ledger.ListingRequest{}, Address: "0x00000000000000000000000000000000000000f1"}
	for _, it := range items {
		f.append(it)
	}
	return f
}

// Add добавляет item напрямую, минуя транзакции (чужой листинг).
func (f *Fake) Add(it ledger.Item) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.append(it)
}

func (f *Fake) append(it ledger.Item) uint64 {
	it.ID = uint64(len(f.items) + 1)
	f.items = append(f.items, it)
	return it.ID
}

// Reads возвращает число вызовов Item.
func (f *Fake) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Connects возвращает число вызовов Connect.
func (f *Fake) Connects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

func (f *Fake) Connect(ctx context.Context) (ledger.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if f.ConnectErr != nil {
		return ledger.Account{}, f.ConnectErr
	}
	return ledger.Account{Address: f.Address}, nil
}

func (f *Fake) ItemCount(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CountErr != nil {
		return 0, f.CountErr
	}
	return uint64(len(f.items)), nil
}

func (f *Fake) Item(ctx context.Context, id uint64) (ledger.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.FailReadAt > 0 && f.reads == f.FailReadAt {
		return ledger.Item{}, ledger.Unavailable("items", fmt.Errorf("connection reset"))
	}
	if id == 0 || id > uint64(len(f.items)) {
		return ledger.Item{}, fmt.Errorf("items(%d): %w", id, ledger.ErrItemNotFound)
	}
	return f.items[id-1], nil
}

func (f *Fake) SubmitListing(ctx context.Context, req ledger.ListingRequest) (ledger.PendingTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RejectWith != "" {
		return ledger.PendingTx{}, &ledger.RejectedError{Reason: f.RejectWith}
	}
	f.seq++
	hash := fmt.Sprintf("0x%064x", f.seq)
	f.pending[hash] = req
	f.Submitted = append(f.Submitted, req)
	return ledger.PendingTx{Hash: hash, SubmittedAt: time.Now()}, nil
}

func (f *Fake) Await(ctx context.Context, tx ledger.PendingTx) (ledger.Receipt, error) {
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return ledger.Receipt{}, &ledger.ConfirmationError{Hash: tx.Hash, Reason: ledger.ReasonTimeout, Detail: ctx.Err().Error()}
		}
	}
	if f.BeforeConfirm != nil {
		f.BeforeConfirm(f)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.pending[tx.Hash]
	if !ok {
		return ledger.Receipt{}, &ledger.ConfirmationError{Hash: tx.Hash, Reason: ledger.ReasonReverted, Detail: "unknown transaction"}
	}
	delete(f.pending, tx.Hash)
	if f.FailConfirm != "" {
		return ledger.Receipt{}, &ledger.ConfirmationError{Hash: tx.Hash, Reason: f.FailConfirm}
	}
	f.append(ledger.Item{
		Name:            req.Name,
		Price:           orZero(req.Price),
		IsAuction:       req.IsAuction,
		AuctionDuration: req.AuctionDuration,
		IsRent:          req.IsRent,
		RentalPrice:     orZero(req.RentalPrice),
		RentalDuration:  req.RentalDuration,
		UseLogistics:    req.UseLogistics,
		LogisticsPrice:  orZero(req.LogisticsPrice),
	})
	return ledger.Receipt{Hash: tx.Hash, Block: uint64(f.seq)}, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
