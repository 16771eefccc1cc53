package apoerrors

import (
	"fmt"
)

// TransactionReverted is returned when the ledger accepted a transaction but
// its receipt carries a non-success status.
type TransactionReverted GenericError

func NewTransactionReverted(txHash string) *TransactionReverted {
	var e TransactionReverted
	e.Code = ErrorCodeTransactionReverted
	e.Message = fmt.Sprintf(ErrorMessageTransactionReverted, txHash)
	e.Details = map[string]interface{}{"TxHash": txHash}
	e.Err = fmt.Errorf("%s", e.Message)
	return &e
}

func (e *TransactionReverted) Error() string {
	return e.Message
}

func (e *TransactionReverted) TxHash() string {
	hash, _ := e.Details["TxHash"].(string)
	return hash
}

func (e *TransactionReverted) GetCode() string {
	return ErrorCodeTransactionReverted
}

func (e *TransactionReverted) GetMessage() string {
	return e.Message
}

func (e *TransactionReverted) GetDetails() map[string]interface{} {
	return e.Details
}

const (
	ErrorCodeTransactionReverted = "error-transaction-reverted"

	ErrorMessageTransactionReverted = "Transaction reverted: %s"
)

var _ ApodeixisErrorInterface = (*TransactionReverted)(nil)
