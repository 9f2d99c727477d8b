package models

import (
	"context"
	"testing"

	"bitbucket.org/mmdatafocus/finops_backend/utils"
)

func TestStatusChangedMessage(t *testing.T) {
	ctx := utils.SetUserIdInContext(context.Background(), 7)
	ctx = utils.SetCorrelationIdInContext(ctx, "corr-1")

	// preparing a check stamps a serial but leaves the transaction approved
	serial := int64(3)
	cpv := VoucherTypeCPV
	prepared := &Transaction{ID: 11, Status: TransactionStatusApproved, SerialNumber: &serial, VoucherType: &cpv}
	if _, ok := statusChangedMessage(ctx, prepared, TransactionStatusApproved); ok {
		t.Fatal("event built for an unchanged status")
	}
	if _, ok := statusChangedMessage(ctx, nil, TransactionStatusApproved); ok {
		t.Fatal("event built for a nil transaction")
	}

	prepared.Status = TransactionStatusPaid
	msg, ok := statusChangedMessage(ctx, prepared, TransactionStatusApproved)
	if !ok {
		t.Fatal("no event for approved -> paid")
	}
	if msg.TransactionId != 11 || msg.From != "approved" || msg.To != "paid" || msg.VoucherType != string(VoucherTypeCPV) {
		t.Fatalf("msg = %+v", msg)
	}
	if msg.UserId != 7 || msg.CorrelationId != "corr-1" || msg.SerialNumber == nil || *msg.SerialNumber != 3 {
		t.Fatalf("msg = %+v", msg)
	}
}
