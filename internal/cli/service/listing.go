package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"Elegora/internal/amount"
	"Elegora/internal/cli/imagecache"
	"Elegora/internal/cli/ledger"
)

var (
	// ErrMissingImage — листинг без изображения не отправляется.
	ErrMissingImage = errors.New("image is required")
	// ErrEmptyName — пустое имя листинга.
	ErrEmptyName = errors.New("name is required")
	// ErrInvalidDuration — длительность должна быть целым положительным числом секунд.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrSubmissionInProgress — предыдущая отправка ещё не завершена.
	ErrSubmissionInProgress = errors.New("submission in progress")
)

// Draft — черновик листинга: сырые строки пользователя и выбранное изображение.
// Передаётся в Submit по указателю; после попытки, дошедшей до леджера, очищается.
type Draft struct {
	Name  string
	Price string

	IsAuction       bool
	AuctionDuration string

	IsRent         bool
	RentalPrice    string
	RentalDuration string

	UseLogistics   bool
	LogisticsPrice string

	// Image — закодированное изображение (data URL).
	Image []byte
}

// Clear сбрасывает черновик вместе с изображением.
func (d *Draft) Clear() { *d = Draft{} }

// State — состояние протокола отправки листинга.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateAwaitingConfirmation
	StateReconciling
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateAwaitingConfirmation:
		return "awaiting confirmation"
	case StateReconciling:
		return "reconciling"
	case StateFailed:
		return "failed"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// ListingResult — итог подтверждённой отправки.
type ListingResult struct {
	ItemID uint64
	// Predicted — id взят как N+1, а не найден в перечитанном каталоге.
	Predicted bool
	TxHash    string
	Block     uint64
	Items     []ledger.Item
}

// ListingService проводит черновик через validate -> submit -> await -> reconcile.
// Одновременно допускается только одна отправка.
type ListingService struct {
	gw      ledger.Gateway
	catalog *Catalog
	images  imagecache.Cache
	logger  *zap.SugaredLogger

	// OnState, если задан, вызывается при каждой смене состояния.
	OnState func(State)

	mu    sync.Mutex
	state State
}

func NewListingService(gw ledger.Gateway, catalog *Catalog, images imagecache.Cache, logger *zap.SugaredLogger) *ListingService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ListingService{gw: gw, catalog: catalog, images: images, logger: logger}
}

// State возвращает текущее состояние протокола.
func (s *ListingService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ListingService) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	if s.OnState != nil {
		s.OnState(st)
	}
}

// begin атомарно переводит Idle -> Validating.
func (s *ListingService) begin() bool {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return false
	}
	s.state = StateValidating
	s.mu.Unlock()
	if s.OnState != nil {
		s.OnState(StateValidating)
	}
	return true
}

// fail фиксирует Failed и возвращает протокол в Idle.
func (s *ListingService) fail() {
	s.setState(StateFailed)
	s.setState(StateIdle)
}

// Submit отправляет черновик в леджер и ждёт подтверждения.
// Ошибки валидации и чтения itemCount оставляют черновик как есть; отказ подписанта
// и неподтверждённая транзакция очищают его. Автоматических повторов нет.
func (s *ListingService) Submit(ctx context.Context, d *Draft) (ListingResult, error) {
	if !s.begin() {
		return ListingResult{}, ErrSubmissionInProgress
	}
	if d == nil {
		s.fail()
		return ListingResult{}, ErrMissingImage
	}

	req, err := BuildRequest(d)
	if err != nil {
		s.fail()
		return ListingResult{}, err
	}

	s.setState(StateSubmitting)
	before, err := s.gw.ItemCount(ctx)
	if err != nil {
		s.fail()
		return ListingResult{}, fmt.Errorf("read item count: %w", err)
	}
	tx, err := s.gw.SubmitListing(ctx, req)
	if err != nil {
		s.logger.Warnw("listing rejected", "name", req.Name, "error", err)
		d.Clear()
		s.fail()
		return ListingResult{}, err
	}
	s.logger.Infow("listing submitted", "tx", tx.Hash, "count_before", before)

	s.setState(StateAwaitingConfirmation)
	rc, err := s.gw.Await(ctx, tx)
	if err != nil {
		s.logger.Warnw("listing not confirmed", "tx", tx.Hash, "error", err)
		d.Clear()
		s.fail()
		return ListingResult{}, err
	}

	s.setState(StateReconciling)
	res := ListingResult{ItemID: before + 1, Predicted: true, TxHash: rc.Hash, Block: rc.Block}
	items, reloadErr := s.catalog.Reload(ctx)
	if reloadErr == nil {
		res.Items = items
		if id, ok := findCreated(items, before, req); ok {
			res.ItemID, res.Predicted = id, false
		} else {
			s.logger.Warnw("new item not found in catalog, using predicted id", "tx", rc.Hash, "id", res.ItemID)
		}
	} else {
		s.logger.Warnw("catalog reload after confirmation failed, using predicted id", "tx", rc.Hash, "id", res.ItemID, "error", reloadErr)
	}

	var errs []error
	if err := s.images.Put(ctx, res.ItemID, d.Image); err != nil {
		errs = append(errs, fmt.Errorf("store image for item %d: %w", res.ItemID, err))
	}
	if reloadErr != nil {
		errs = append(errs, fmt.Errorf("listing confirmed, %w", reloadErr))
	}
	d.Clear()
	s.setState(StateIdle)
	return res, errors.Join(errs...)
}

// findCreated ищет среди id N+1..count первый item, совпадающий с запросом.
func findCreated(items []ledger.Item, before uint64, req ledger.ListingRequest) (uint64, bool) {
	if before > uint64(len(items)) {
		return 0, false
	}
	for _, it := range items[before:] {
		if req.Matches(it) {
			return it.ID, true
		}
	}
	return 0, false
}

// BuildRequest проверяет черновик и переводит суммы в базовые единицы.
// Поля выключенных опций передаются нулями.
func BuildRequest(d *Draft) (ledger.ListingRequest, error) {
	if len(d.Image) == 0 {
		return ledger.ListingRequest{}, ErrMissingImage
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return ledger.ListingRequest{}, ErrEmptyName
	}
	price, err := amount.ToBaseUnits(d.Price)
	if err != nil {
		return ledger.ListingRequest{}, fmt.Errorf("price: %w", err)
	}
	req := ledger.ListingRequest{Name: name, Price: price}

	if req.AuctionDuration, err = optionalDuration(d.IsAuction, d.AuctionDuration); err != nil {
		return ledger.ListingRequest{}, fmt.Errorf("auction duration: %w", err)
	}
	req.IsAuction = d.IsAuction

	if req.RentalPrice, err = optionalAmount(d.IsRent, d.RentalPrice); err != nil {
		return ledger.ListingRequest{}, fmt.Errorf("rental price: %w", err)
	}
	if req.RentalDuration, err = optionalDuration(d.IsRent, d.RentalDuration); err != nil {
		return ledger.ListingRequest{}, fmt.Errorf("rental duration: %w", err)
	}
	req.IsRent = d.IsRent

	if req.LogisticsPrice, err = optionalAmount(d.UseLogistics, d.LogisticsPrice); err != nil {
		return ledger.ListingRequest{}, fmt.Errorf("logistics price: %w", err)
	}
	req.UseLogistics = d.UseLogistics

	return req, nil
}

// optionalAmount: пустая сумма включённой опции считается нулём, выключенная опция всегда ноль.
func optionalAmount(enabled bool, raw string) (*big.Int, error) {
	if !enabled {
		return new(big.Int), nil
	}
	return amount.ToBaseUnits(amount.OrZero(raw))
}

func optionalDuration(enabled bool, raw string) (uint64, error) {
	if !enabled {
		return 0, nil
	}
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || v == 0 {
		return 0, ErrInvalidDuration
	}
	return v, nil
}
