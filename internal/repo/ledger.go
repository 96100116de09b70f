package repo

import (
	"context"

	"gorm.io/gorm"

	"Elegora/internal/model"
)

// LedgerRepository — состояние dev-леджера: записанные items, mempool транзакций, балансы.
type LedgerRepository interface {
	// Transaction выполняет fn атомарно; fn получает репозиторий поверх транзакции БД.
	Transaction(ctx context.Context, fn func(r LedgerRepository) error) error

	CountItems(ctx context.Context) (uint64, error)
	// GetItem возвращает gorm.ErrRecordNotFound для незаписанного id.
	GetItem(ctx context.Context, id uint64) (*model.Item, error)
	CreateItem(ctx context.Context, it *model.Item) error
	MaxBlock(ctx context.Context) (uint64, error)

	CreateTx(ctx context.Context, tx *model.Tx) error
	GetTx(ctx context.Context, hash string) (*model.Tx, error)
	UpdateTx(ctx context.Context, tx *model.Tx) error
	// PendingTxs возвращает неприменённые транзакции в порядке поступления.
	PendingTxs(ctx context.Context) ([]model.Tx, error)

	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	SetBalance(ctx context.Context, userID int64, balance string) error
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) Transaction(ctx context.Context, fn func(r LedgerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepo{db: tx})
	})
}

func (r *ledgerRepo) CountItems(ctx context.Context) (uint64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Item{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (r *ledgerRepo) GetItem(ctx context.Context, id uint64) (*model.Item, error) {
	var it model.Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ledgerRepo) CreateItem(ctx context.Context, it *model.Item) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *ledgerRepo) MaxBlock(ctx context.Context) (uint64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Tx{}).Select("COALESCE(MAX(block), 0)").Row().Scan(&n); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (r *ledgerRepo) CreateTx(ctx context.Context, tx *model.Tx) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *ledgerRepo) GetTx(ctx context.Context, hash string) (*model.Tx, error) {
	var tx model.Tx
	if err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *ledgerRepo) UpdateTx(ctx context.Context, tx *model.Tx) error {
	return r.db.WithContext(ctx).Model(&model.Tx{}).Where("hash = ?", tx.Hash).Updates(map[string]any{
		"status":  tx.Status,
		"reason":  tx.Reason,
		"detail":  tx.Detail,
		"block":   tx.Block,
		"item_id": tx.ItemID,
	}).Error
}

func (r *ledgerRepo) PendingTxs(ctx context.Context) ([]model.Tx, error) {
	var list []model.Tx
	if err := r.db.WithContext(ctx).Where("status = ?", model.TxPending).Order("seq ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ledgerRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *ledgerRepo) SetBalance(ctx context.Context, userID int64, balance string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("balance", balance).Error
}
