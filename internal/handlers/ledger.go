package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Elegora/internal/middleware"
	"Elegora/internal/model"
	"Elegora/internal/service"
	"Elegora/pkg/apierror"
)

// LedgerHandler — HTTP-фасад контракта: itemCount, items(id), listItem и статус транзакции.
type LedgerHandler struct {
	LedgerService *service.LedgerService
	Logger        *zap.SugaredLogger
}

func NewLedgerHandler(ledgerService *service.LedgerService, logger *zap.SugaredLogger) *LedgerHandler {
	return &LedgerHandler{LedgerService: ledgerService, Logger: logger}
}

// ListingDTO — аргументы listItem; суммы в base units десятичной строкой.
type ListingDTO struct {
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

type ItemDTO struct {
	ID uint64 `json:"id"`
	ListingDTO
	Owner string `json:"owner"`
	Block uint64 `json:"block"`
}

type TxDTO struct {
	Hash   string `json:"hash"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
	Block  uint64 `json:"block"`
	ItemID uint64 `json:"item_id,omitempty"`
}

func (d ListingDTO) toModel() model.Listing {
	return model.Listing{
		Name:            d.Name,
		Price:           d.Price,
		IsAuction:       d.IsAuction,
		AuctionDuration: d.AuctionDuration,
		IsRent:          d.IsRent,
		RentalPrice:     d.RentalPrice,
		RentalDuration:  d.RentalDuration,
		UseLogistics:    d.UseLogistics,
		LogisticsPrice:  d.LogisticsPrice,
	}
}

func listingDTO(l model.Listing) ListingDTO {
	return ListingDTO{
		Name:            l.Name,
		Price:           l.Price,
		IsAuction:       l.IsAuction,
		AuctionDuration: l.AuctionDuration,
		IsRent:          l.IsRent,
		RentalPrice:     l.RentalPrice,
		RentalDuration:  l.RentalDuration,
		UseLogistics:    l.UseLogistics,
		LogisticsPrice:  l.LogisticsPrice,
	}
}

func (h *LedgerHandler) ItemCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.LedgerService.ItemCount(r.Context())
	if err != nil {
		h.Logger.Errorw("ItemCount: service error", "error", err)
		apierror.Write(w, apierror.ServiceUnavailable(""))
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"count": n})
}

func (h *LedgerHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		apierror.Write(w, apierror.BadRequest("id must be a positive integer"))
		return
	}
	it, err := h.LedgerService.Item(r.Context(), id)
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		apierror.Write(w, apierror.ItemNotFound(""))
		return
	case err != nil:
		h.Logger.Errorw("Item: service error", "id", id, "error", err)
		apierror.Write(w, apierror.ServiceUnavailable(""))
		return
	}
	writeJSON(w, http.StatusOK, ItemDTO{ID: it.ID, ListingDTO: listingDTO(it.Listing), Owner: it.Owner, Block: it.Block})
}

// ListItem принимает транзакцию в mempool: 202 и хэш, включение — асинхронно.
func (h *LedgerHandler) ListItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		apierror.Write(w, apierror.Unauthorized(""))
		return
	}
	var req ListingDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.BadRequest("invalid request body"))
		return
	}
	tx, err := h.LedgerService.Submit(r.Context(), userID, req.toModel())
	switch {
	case errors.Is(err, service.ErrInvalidListing):
		apierror.Write(w, apierror.ValidationError(err.Error()))
		return
	case errors.Is(err, service.ErrMempoolFull):
		apierror.Write(w, apierror.ServiceUnavailable(err.Error()))
		return
	case err != nil:
		h.Logger.Errorw("ListItem: service error", "user_id", userID, "error", err)
		apierror.Write(w, apierror.InternalError(""))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"tx_hash": tx.Hash})
}

func (h *LedgerHandler) Tx(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	tx, err := h.LedgerService.Tx(r.Context(), hash)
	switch {
	case errors.Is(err, service.ErrTxNotFound):
		apierror.Write(w, apierror.TxNotFound(""))
		return
	case err != nil:
		h.Logger.Errorw("Tx: service error", "tx", hash, "error", err)
		apierror.Write(w, apierror.ServiceUnavailable(""))
		return
	}
	writeJSON(w, http.StatusOK, TxDTO{
		Hash:   tx.Hash,
		Status: tx.Status,
		Reason: tx.Reason,
		Detail: tx.Detail,
		Block:  tx.Block,
		ItemID: tx.ItemID,
	})
}
