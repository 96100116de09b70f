package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Elegora/internal/amount"
	"Elegora/internal/model"
	"Elegora/internal/repo"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrTxNotFound   = errors.New("transaction not found")
	// ErrInvalidListing — суммы не являются неотрицательными целыми в base units.
	ErrInvalidListing = errors.New("invalid listing encoding")
	ErrMempoolFull    = errors.New("mempool full")
)

// Причины отказа транзакции; совпадают с тем, что ожидает клиент.
const (
	ReasonInsufficientFunds = "insufficient funds"
	ReasonReverted          = "reverted"
)

// LedgerService — dev-леджер: принимает listItem в mempool и применяет транзакции блоками.
type LedgerService struct {
	repo   repo.LedgerRepository
	fee    *big.Int
	logger *zap.SugaredLogger

	queue chan string
	// rescan — часть очереди потеряна; следующий блок берёт pending-транзакции из БД
	rescan atomic.Bool

	mu    sync.Mutex // сериализует майнинг блоков
	block uint64
}

// NewLedgerService создаёт леджер с комиссией fee (base units) за каждую транзакцию.
func NewLedgerService(r repo.LedgerRepository, fee *big.Int, queueSize int, logger *zap.SugaredLogger) *LedgerService {
	if fee == nil {
		fee = new(big.Int)
	}
	if queueSize <= 0 {
		queueSize = 1024
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &LedgerService{repo: r, fee: fee, logger: logger, queue: make(chan string, queueSize)}
}

// Recover восстанавливает номер блока и возвращает в очередь транзакции, не применённые до рестарта.
func (s *LedgerService) Recover(ctx context.Context) error {
	last, err := s.repo.MaxBlock(ctx)
	if err != nil {
		return fmt.Errorf("read last block: %w", err)
	}
	s.mu.Lock()
	s.block = last
	s.mu.Unlock()

	pending, err := s.repo.PendingTxs(ctx)
	if err != nil {
		return fmt.Errorf("read mempool: %w", err)
	}
	for _, tx := range pending {
		select {
		case s.queue <- tx.Hash:
		default:
			return ErrMempoolFull
		}
	}
	if len(pending) > 0 {
		s.logger.Infow("mempool restored", "pending", len(pending), "block", last)
	}
	return nil
}

// Submit кладёт listItem от пользователя в mempool и возвращает ожидающую транзакцию.
func (s *LedgerService) Submit(ctx context.Context, userID int64, l model.Listing) (*model.Tx, error) {
	norm, err := normalizeListing(l)
	if err != nil {
		return nil, err
	}
	tx := &model.Tx{
		Hash:    newTxHash(),
		Seq:     time.Now().UnixNano(),
		UserID:  userID,
		Listing: norm,
		Status:  model.TxPending,
	}
	if err := s.repo.CreateTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("store tx: %w", err)
	}
	select {
	case s.queue <- tx.Hash:
	default:
		tx.Status, tx.Reason = model.TxFailed, ErrMempoolFull.Error()
		if err := s.repo.UpdateTx(ctx, tx); err != nil {
			s.logger.Errorw("failed to drop tx", "tx", tx.Hash, "error", err)
		}
		return nil, ErrMempoolFull
	}
	s.logger.Infow("tx queued", "tx", tx.Hash, "user_id", userID, "name", norm.Name)
	return tx, nil
}

// Run майнит блок каждые interval до отмены ctx.
func (s *LedgerService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.MineBlock(ctx); err != nil && ctx.Err() == nil {
				s.logger.Errorw("mine block failed", "error", err)
			}
		}
	}
}

// MineBlock забирает всё, что накопилось в очереди, и применяет по порядку в одном блоке.
// Возвращает число включённых транзакций.
func (s *LedgerService) MineBlock(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var batch []string
drain:
	for {
		select {
		case h := <-s.queue:
			batch = append(batch, h)
		default:
			break drain
		}
	}
	if s.rescan.Swap(false) {
		pending, err := s.repo.PendingTxs(ctx)
		if err != nil {
			s.rescan.Store(true)
			s.logger.Warnw("mempool rescan failed", "error", err)
		} else {
			// в БД все ожидающие транзакции, включая уже вынутые из очереди, в порядке поступления
			batch = batch[:0]
			for _, tx := range pending {
				batch = append(batch, tx.Hash)
			}
			s.logger.Infow("mempool rescanned", "pending", len(batch))
		}
	}
	if len(batch) == 0 {
		return 0, nil
	}

	s.block++
	for i, h := range batch {
		if err := s.apply(ctx, h, s.block); err != nil {
			// неприменённые возвращаются в очередь следующего блока
			for _, rest := range batch[i:] {
				select {
				case s.queue <- rest:
				default:
					s.rescan.Store(true)
					s.logger.Warnw("mempool full, tx left for rescan", "tx", rest)
				}
			}
			return i, fmt.Errorf("apply %s: %w", h, err)
		}
	}
	s.logger.Debugw("block mined", "block", s.block, "txs", len(batch))
	return len(batch), nil
}

func (s *LedgerService) apply(ctx context.Context, hash string, block uint64) error {
	return s.repo.Transaction(ctx, func(r repo.LedgerRepository) error {
		tx, err := r.GetTx(ctx, hash)
		if err != nil {
			return err
		}
		if tx.Status != model.TxPending {
			return nil
		}
		user, err := r.GetUserByID(ctx, tx.UserID)
		if err != nil {
			return err
		}
		balance, ok := new(big.Int).SetString(user.Balance, 10)
		if !ok {
			balance = new(big.Int)
		}
		tx.Block = block

		if balance.Cmp(s.fee) < 0 {
			tx.Status, tx.Reason = model.TxFailed, ReasonInsufficientFunds
			tx.Detail = fmt.Sprintf("balance %s < fee %s", amount.ToDisplayString(balance), amount.ToDisplayString(s.fee))
			s.logger.Infow("tx failed", "tx", hash, "reason", tx.Reason)
			return r.UpdateTx(ctx, tx)
		}
		// комиссия списывается и с отклонённой контрактом транзакции
		if err := r.SetBalance(ctx, user.ID, new(big.Int).Sub(balance, s.fee).String()); err != nil {
			return err
		}
		if strings.TrimSpace(tx.Listing.Name) == "" {
			tx.Status, tx.Reason, tx.Detail = model.TxFailed, ReasonReverted, "item name is empty"
			s.logger.Infow("tx reverted", "tx", hash, "detail", tx.Detail)
			return r.UpdateTx(ctx, tx)
		}

		count, err := r.CountItems(ctx)
		if err != nil {
			return err
		}
		item := &model.Item{ID: count + 1, Listing: tx.Listing, Owner: user.Address, TxHash: hash, Block: block}
		if err := r.CreateItem(ctx, item); err != nil {
			return err
		}
		tx.Status, tx.ItemID = model.TxConfirmed, item.ID
		s.logger.Infow("tx confirmed", "tx", hash, "item_id", item.ID, "block", block)
		return r.UpdateTx(ctx, tx)
	})
}

// ItemCount — itemCount() контракта.
func (s *LedgerService) ItemCount(ctx context.Context) (uint64, error) {
	return s.repo.CountItems(ctx)
}

// Item — items(id) контракта; незаписанный id — ErrItemNotFound.
func (s *LedgerService) Item(ctx context.Context, id uint64) (*model.Item, error) {
	it, err := s.repo.GetItem(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	return it, err
}

// Tx возвращает статус транзакции.
func (s *LedgerService) Tx(ctx context.Context, hash string) (*model.Tx, error) {
	tx, err := s.repo.GetTx(ctx, hash)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTxNotFound
	}
	return tx, err
}

// Balance — баланс пользователя в ether.
func (s *LedgerService) Balance(u *model.User) string {
	v, ok := new(big.Int).SetString(u.Balance, 10)
	if !ok {
		return amount.ToDisplayString(nil)
	}
	return amount.ToDisplayString(v)
}

// normalizeListing проверяет суммы: пустые становятся "0", остальные — неотрицательные целые.
func normalizeListing(l model.Listing) (model.Listing, error) {
	for _, p := range []*string{&l.Price, &l.RentalPrice, &l.LogisticsPrice} {
		*p = amount.OrZero(*p)
		v, ok := new(big.Int).SetString(*p, 10)
		if !ok || v.Sign() < 0 {
			return model.Listing{}, fmt.Errorf("%w: amount %q", ErrInvalidListing, *p)
		}
		*p = v.String()
	}
	return l, nil
}

// newTxHash — 32 случайных байта в hex, по форме как хэш транзакции.
func newTxHash() string {
	a, b := uuid.New(), uuid.New()
	return "0x" + strings.ReplaceAll(a.String()+b.String(), "-", "")
}
