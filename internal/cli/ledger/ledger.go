// Package ledger описывает границу клиента с внешним леджером (контрактом):
// чтение каталога, отправку листинга и ожидание подтверждения.
package ledger

import (
	"context"
	"math/big"
	"time"
)

// Item — листинг в том виде, в котором его хранит леджер.
// Клиент никогда не меняет Item локально, только перечитывает.
type Item struct {
	ID              uint64
	Name            string
	Price           *big.Int
	IsAuction       bool
	AuctionDuration uint64 // секунды, имеет смысл только при IsAuction
	IsRent          bool
	RentalPrice     *big.Int
	RentalDuration  uint64 // секунды, имеет смысл только при IsRent
	UseLogistics    bool
	LogisticsPrice  *big.Int
}

// ListingRequest — аргументы вызова listItem. Необязательные суммы передаются нулями, не nil.
type ListingRequest struct {
	Name            string
	Price           *big.Int
	IsAuction       bool
	AuctionDuration uint64
	IsRent          bool
	RentalPrice     *big.Int
	RentalDuration  uint64
	UseLogistics    bool
	LogisticsPrice  *big.Int
}

// Matches сообщает, совпадает ли Item с запросом, из которого он мог быть создан.
func (r ListingRequest) Matches(it Item) bool {
	return it.Name == r.Name &&
		eqAmount(it.Price, r.Price) &&
		it.IsAuction == r.IsAuction &&
		it.AuctionDuration == r.AuctionDuration &&
		it.IsRent == r.IsRent &&
		eqAmount(it.RentalPrice, r.RentalPrice) &&
		it.RentalDuration == r.RentalDuration &&
		it.UseLogistics == r.UseLogistics &&
		eqAmount(it.LogisticsPrice, r.LogisticsPrice)
}

// PendingTx — транзакция, отправленная в леджер и ещё не подтверждённая.
type PendingTx struct {
	Hash        string
	SubmittedAt time.Time
}

// Elapsed — сколько прошло с отправки; ноль, если момент отправки неизвестен.
func (p PendingTx) Elapsed() time.Duration {
	if p.SubmittedAt.IsZero() {
		return 0
	}
	return time.Since(p.SubmittedAt).Round(time.Millisecond)
}

// Receipt — подтверждение включения транзакции.
type Receipt struct {
	Hash  string
	Block uint64
}

// Account — адрес подключённого аккаунта.
type Account struct {
	Address string
}

// Gateway — порт доступа к леджеру.
type Gateway interface {
	// ItemCount возвращает число записанных items.
	ItemCount(ctx context.Context) (uint64, error)
	// Item читает item по id (нумерация с 1).
	Item(ctx context.Context, id uint64) (Item, error)
	// SubmitListing подписывает и отправляет listItem.
	SubmitListing(ctx context.Context, req ListingRequest) (PendingTx, error)
	// Await блокируется до включения или отклонения транзакции.
	Await(ctx context.Context, tx PendingTx) (Receipt, error)
}

// Connector — аккаунт/сессия: может ждать подтверждения пользователя.
type Connector interface {
	Connect(ctx context.Context) (Account, error)
}

func eqAmount(a, b *big.Int) bool {
	if a == nil {
		a = new(big.Int)
	}
	if b == nil {
		b = new(big.Int)
	}
	return a.Cmp(b) == 0
}
