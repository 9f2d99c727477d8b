package models

import (
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/utils"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to TransactionStatus
		want     bool
	}{
		{TransactionStatusRequested, TransactionStatusApproved, true},
		{TransactionStatusRequested, TransactionStatusRejected, true},
		{TransactionStatusRequested, TransactionStatusPaid, false},
		{TransactionStatusRequested, TransactionStatusSuspense, false},
		{TransactionStatusApproved, TransactionStatusPaid, true},
		{TransactionStatusApproved, TransactionStatusSuspense, true},
		{TransactionStatusApproved, TransactionStatusRejected, true},
		{TransactionStatusApproved, TransactionStatusRequested, false},
		{TransactionStatusSuspense, TransactionStatusPaid, true},
		{TransactionStatusSuspense, TransactionStatusRejected, false},
		{TransactionStatusPaid, TransactionStatusRejected, false},
		{TransactionStatusPaid, TransactionStatusApproved, false},
		{TransactionStatusRejected, TransactionStatusApproved, false},
		{TransactionStatusRejected, TransactionStatusRequested, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	all := []TransactionStatus{
		TransactionStatusRequested, TransactionStatusApproved, TransactionStatusSuspense,
		TransactionStatusPaid, TransactionStatusRejected,
	}
	for _, from := range all {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range all {
			if CanTransition(from, to) {
				t.Errorf("terminal status %s can move to %s", from, to)
			}
		}
	}
}

func TestApproveStampsApprover(t *testing.T) {
	txn := &Transaction{Status: TransactionStatusRequested}
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	if err := txn.approve(7, now); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if txn.Status != TransactionStatusApproved {
		t.Fatalf("status = %s", txn.Status)
	}
	if txn.ApprovedBy == nil || *txn.ApprovedBy != 7 || txn.ApprovedAt == nil || !txn.ApprovedAt.Equal(now) {
		t.Fatalf("approver not stamped: %+v", txn)
	}

	if err := txn.approve(8, now); !errors.Is(err, utils.ErrInvalidTransition) {
		t.Fatalf("second approve: expected ErrInvalidTransition, got %v", err)
	}
}

func TestRejectKeepsReason(t *testing.T) {
	txn := &Transaction{Status: TransactionStatusApproved}
	if err := txn.reject(3, "duplicate request", time.Now()); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if txn.RejectedReason != "duplicate request" || txn.RejectedBy == nil || *txn.RejectedBy != 3 {
		t.Fatalf("rejection not recorded: %+v", txn)
	}
	if err := txn.markPaid(3, time.Now()); !errors.Is(err, utils.ErrInvalidTransition) {
		t.Fatalf("pay after reject: expected ErrInvalidTransition, got %v", err)
	}
}

func TestAssignSerialIsImmutable(t *testing.T) {
	txn := &Transaction{}
	if txn.VoucherNumber() != "" {
		t.Fatalf("unserialized voucher number = %q", txn.VoucherNumber())
	}
	if err := txn.assignSerial(VoucherTypePCPV, 42); err != nil {
		t.Fatalf("assignSerial: %v", err)
	}
	if got := txn.VoucherNumber(); got != "PCPV-000042" {
		t.Fatalf("VoucherNumber = %q", got)
	}
	if err := txn.assignSerial(VoucherTypeCPV, 43); !errors.Is(err, utils.ErrAlreadySerialized) {
		t.Fatalf("expected ErrAlreadySerialized, got %v", err)
	}
	if *txn.SerialNumber != 42 || *txn.VoucherType != VoucherTypePCPV {
		t.Fatalf("serial changed to %s-%d", *txn.VoucherType, *txn.SerialNumber)
	}
}

func TestVoucherTypeForTransactionType(t *testing.T) {
	if TransactionTypeCheckPayment.VoucherType() != VoucherTypeCPV {
		t.Fatal("check payments must use the CPV counter")
	}
	for _, tt := range []TransactionType{TransactionTypeReceiptPayment, TransactionTypeSuspencePayment} {
		if tt.VoucherType() != VoucherTypePCPV {
			t.Fatalf("%s must use the PCPV counter", tt)
		}
	}
}

func TestFormatSerial(t *testing.T) {
	if got := FormatSerial(VoucherTypeCPV, 7); got != "CPV-000007" {
		t.Fatalf("FormatSerial = %q", got)
	}
	if got := FormatSerial(VoucherTypePCPV, 1234567); got != "PCPV-1234567" {
		t.Fatalf("FormatSerial = %q", got)
	}
}

func TestDeletableKeepsVoucherSeries(t *testing.T) {
	serial := int64(1)
	cpv := VoucherTypeCPV
	checkId := 9
	cases := []struct {
		name string
		txn  Transaction
		ok   bool
	}{
		{"requested", Transaction{Status: TransactionStatusRequested}, true},
		{"rejected before payment", Transaction{Status: TransactionStatusRejected}, true},
		{"approved", Transaction{Status: TransactionStatusApproved}, false},
		{"paid", Transaction{Status: TransactionStatusPaid, SerialNumber: &serial, VoucherType: &cpv}, false},
		{"rejected with check serial", Transaction{Status: TransactionStatusRejected, SerialNumber: &serial, VoucherType: &cpv, CheckRequestId: &checkId}, false},
		{"rejected with check only", Transaction{Status: TransactionStatusRejected, CheckRequestId: &checkId}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.txn.deletable()
			if tc.ok && err != nil {
				t.Fatalf("deletable: %v", err)
			}
			if !tc.ok && !errors.Is(err, utils.ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}
		})
	}
}
