package models

import "strings"

type TransactionType string

const (
	TransactionTypeReceiptPayment  TransactionType = "receipt_payment"
	TransactionTypeSuspencePayment TransactionType = "suspence_payment"
	TransactionTypeCheckPayment    TransactionType = "check_payment"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeReceiptPayment, TransactionTypeSuspencePayment, TransactionTypeCheckPayment:
		return true
	}
	return false
}

// VoucherType is the serial counter a payment path draws from.
func (t TransactionType) VoucherType() VoucherType {
	if t == TransactionTypeCheckPayment {
		return VoucherTypeCPV
	}
	return VoucherTypePCPV
}

type TransactionStatus string

const (
	TransactionStatusRequested TransactionStatus = "requested"
	TransactionStatusApproved  TransactionStatus = "approved"
	TransactionStatusSuspense  TransactionStatus = "suspense"
	TransactionStatusPaid      TransactionStatus = "paid"
	TransactionStatusRejected  TransactionStatus = "rejected"
)

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusRequested, TransactionStatusApproved, TransactionStatusSuspense,
		TransactionStatusPaid, TransactionStatusRejected:
		return true
	}
	return false
}

// IsTerminal is true for paid and rejected.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusPaid || s == TransactionStatusRejected
}

type VoucherType string

const (
	VoucherTypePCPV VoucherType = "pcpv"
	VoucherTypeCPV  VoucherType = "cpv"
)

func (v VoucherType) counterColumn() string {
	if v == VoucherTypeCPV {
		return "cpv"
	}
	return "pcpv"
}

// Prefix is printed in front of the serial on vouchers, e.g. PCPV-000042.
func (v VoucherType) Prefix() string {
	return strings.ToUpper(string(v))
}

type CheckStatus string

const (
	CheckStatusPrepared CheckStatus = "prepared"
	CheckStatusPaid     CheckStatus = "paid"
	CheckStatusRejected CheckStatus = "rejected"
)

type UserRole string

const (
	UserRoleOwner      UserRole = "owner"
	UserRoleAccountant UserRole = "accountant"
	UserRoleCashier    UserRole = "cashier"
	UserRoleRequester  UserRole = "requester"
	UserRoleFleet      UserRole = "fleet"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleOwner, UserRoleAccountant, UserRoleCashier, UserRoleRequester, UserRoleFleet:
		return true
	}
	return false
}

type MaintenanceCategory string

const (
	MaintenanceCategoryService   MaintenanceCategory = "service"
	MaintenanceCategoryRepair    MaintenanceCategory = "repair"
	MaintenanceCategoryTyre      MaintenanceCategory = "tyre"
	MaintenanceCategoryInsurance MaintenanceCategory = "insurance"
	MaintenanceCategoryOther     MaintenanceCategory = "other"
)

func (c MaintenanceCategory) IsValid() bool {
	switch c {
	case MaintenanceCategoryService, MaintenanceCategoryRepair, MaintenanceCategoryTyre,
		MaintenanceCategoryInsurance, MaintenanceCategoryOther:
		return true
	}
	return false
}

// reference types recorded in histories
const (
	ReferenceTypeTransaction  = "transactions"
	ReferenceTypeCheckRequest = "check_requests"
	ReferenceTypeCashAccount  = "cash_accounts"
	ReferenceTypeStock        = "stocks"
)

// history action types
const (
	HistoryActionCreate  = "CREATE"
	HistoryActionUpdate  = "UPDATE"
	HistoryActionDelete  = "DELETE"
	HistoryActionApprove = "APPROVE"
	HistoryActionReject  = "REJECT"
	HistoryActionPay     = "PAY"
	HistoryActionSuspend = "SUSPENSE"
	HistoryActionCheck   = "CHECK"
	HistoryActionTopUp   = "TOPUP"
	HistoryActionAdjust  = "ADJUST"
)
