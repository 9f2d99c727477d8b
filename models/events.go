package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
)

// statusChangedMessage builds the event for a status move; false when the
// status did not change (e.g. preparing a check keeps the transaction approved).
func statusChangedMessage(ctx context.Context, txn *Transaction, from TransactionStatus) (config.StatusChangedMessage, bool) {
	if txn == nil || txn.Status == from {
		return config.StatusChangedMessage{}, false
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	msg := config.StatusChangedMessage{
		TransactionId: txn.ID,
		From:          string(from),
		To:            string(txn.Status),
		SerialNumber:  txn.SerialNumber,
		UserId:        userId,
		At:            time.Now().UTC(),
		CorrelationId: correlationId,
	}
	if txn.VoucherType != nil {
		msg.VoucherType = string(*txn.VoucherType)
	}
	return msg, true
}

// publishStatusChanged runs after commit. Failures are logged only.
func publishStatusChanged(ctx context.Context, txn *Transaction, from TransactionStatus) {
	if !config.PubSubEnabled() {
		return
	}
	msg, ok := statusChangedMessage(ctx, txn, from)
	if !ok {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := config.PublishStatusChanged(pubCtx, msg); err != nil {
		config.LogError(config.GetLogger(), "Transaction", "publishStatusChanged", "publish", msg, err)
	}
}
