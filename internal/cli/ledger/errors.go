package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrGatewayUnavailable — нет активного соединения с леджером.
	ErrGatewayUnavailable = errors.New("ledger gateway unavailable")
	// ErrItemNotFound — id вне диапазона 1..itemCount.
	ErrItemNotFound = errors.New("item not found")
	// ErrSubmissionRejected — подписант/аккаунт отказал до отправки.
	ErrSubmissionRejected = errors.New("submission rejected")
	// ErrConfirmationFailed — леджер отклонил транзакцию или подтверждение не пришло.
	ErrConfirmationFailed = errors.New("confirmation failed")
)

// Причины неудачного подтверждения.
const (
	ReasonInsufficientFunds = "insufficient funds"
	ReasonReverted          = "reverted"
	ReasonTimeout           = "timeout"
)

// RejectedError — отказ в отправке с причиной от подписанта или узла.
type RejectedError struct {
	Reason string
	Err    error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("submission rejected: %s", e.Reason)
}

func (e *RejectedError) Is(target error) bool { return target == ErrSubmissionRejected }

func (e *RejectedError) Unwrap() error { return e.Err }

// ConfirmationError — транзакция не подтверждена. Reason — одна из констант Reason*,
// Detail — сырое сообщение леджера.
type ConfirmationError struct {
	Hash   string
	Reason string
	Detail string
}

func (e *ConfirmationError) Error() string {
	if e.Detail != "" && e.Detail != e.Reason {
		return fmt.Sprintf("confirmation failed for %s: %s (%s)", e.Hash, e.Reason, e.Detail)
	}
	return fmt.Sprintf("confirmation failed for %s: %s", e.Hash, e.Reason)
}

func (e *ConfirmationError) Is(target error) bool { return target == ErrConfirmationFailed }

// TimedOut — подтверждение не пришло до отмены ожидания.
func TimedOut(tx PendingTx, cause error) *ConfirmationError {
	detail := cause.Error()
	if elapsed := tx.Elapsed(); elapsed > 0 {
		detail = fmt.Sprintf("no receipt %s after submission: %v", elapsed, cause)
	}
	return &ConfirmationError{Hash: tx.Hash, Reason: ReasonTimeout, Detail: detail}
}

// Unavailable оборачивает сетевую ошибку в ErrGatewayUnavailable, сохраняя исходную причину.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrGatewayUnavailable, err)
}
