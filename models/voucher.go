package models

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const voucherSheet = "Voucher"

// VoucherData is everything printed on a PCPV/CPV voucher.
type VoucherData struct {
	VoucherNumber    string
	Title            string
	Date             time.Time
	Description      string
	Amount           decimal.Decimal
	AmountUsed       decimal.Decimal
	ReturnAmount     decimal.Decimal
	CashAccount      string
	CheckNumber      string
	Bank             string
	Payee            string
	ReceiptReference string
	RequestedBy      string
	ApprovedBy       string
	PaidBy           string
}

func voucherTitle(voucherType VoucherType) string {
	if voucherType == VoucherTypeCPV {
		return "Check Payment Voucher"
	}
	return "Petty Cash Payment Voucher"
}

// RenderVoucher lays the voucher out on a single sheet.
func RenderVoucher(data *VoucherData) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", voucherSheet); err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := f.MergeCell(voucherSheet, "A1", "D1"); err != nil {
		return nil, err
	}
	f.SetCellValue(voucherSheet, "A1", data.Title)
	f.SetCellStyle(voucherSheet, "A1", "D1", titleStyle)
	f.SetColWidth(voucherSheet, "A", "A", 22)
	f.SetColWidth(voucherSheet, "B", "D", 24)

	rows := [][2]interface{}{
		{"Voucher No.", data.VoucherNumber},
		{"Date", data.Date.Format("2006-01-02")},
		{"Description", data.Description},
		{"Amount", data.Amount.StringFixed(2)},
	}
	if !data.ReturnAmount.IsZero() || !data.AmountUsed.Equal(data.Amount) {
		rows = append(rows,
			[2]interface{}{"Amount Used", data.AmountUsed.StringFixed(2)},
			[2]interface{}{"Returned", data.ReturnAmount.StringFixed(2)})
	}
	if data.CashAccount != "" {
		rows = append(rows, [2]interface{}{"Cash Account", data.CashAccount})
	}
	if data.CheckNumber != "" {
		rows = append(rows,
			[2]interface{}{"Check No.", data.CheckNumber},
			[2]interface{}{"Bank", data.Bank},
			[2]interface{}{"Payee", data.Payee})
	}
	if data.ReceiptReference != "" {
		rows = append(rows, [2]interface{}{"Receipt", data.ReceiptReference})
	}
	rows = append(rows,
		[2]interface{}{"Requested By", data.RequestedBy},
		[2]interface{}{"Approved By", data.ApprovedBy},
		[2]interface{}{"Paid By", data.PaidBy})

	for i, row := range rows {
		rowNo := i + 3
		f.SetCellValue(voucherSheet, fmt.Sprintf("A%d", rowNo), row[0])
		f.SetCellValue(voucherSheet, fmt.Sprintf("B%d", rowNo), row[1])
		f.SetCellStyle(voucherSheet, fmt.Sprintf("A%d", rowNo), fmt.Sprintf("A%d", rowNo), labelStyle)
	}
	return f, nil
}

func userDisplayName(ctx context.Context, id *int) string {
	if id == nil {
		return ""
	}
	user, err := GetUser(ctx, *id)
	if err != nil {
		return fmt.Sprint(*id)
	}
	return user.Name
}

func loadVoucherData(ctx context.Context, transaction *Transaction) (*VoucherData, error) {
	if !transaction.HasSerial() {
		return nil, fmt.Errorf("%w: transaction %d has no voucher yet", utils.ErrInvalidTransition, transaction.ID)
	}
	date := transaction.UpdatedAt
	if transaction.PaidAt != nil {
		date = *transaction.PaidAt
	}
	if local, err := utils.ConvertToDate(date, config.Timezone()); err == nil {
		date = local
	}

	data := VoucherData{
		VoucherNumber:    transaction.VoucherNumber(),
		Title:            voucherTitle(*transaction.VoucherType),
		Date:             date,
		Description:      transaction.Description,
		Amount:           transaction.Amount,
		AmountUsed:       transaction.AmountUsed,
		ReturnAmount:     transaction.ReturnAmount,
		ReceiptReference: transaction.ReceiptReference,
		RequestedBy:      userDisplayName(ctx, &transaction.RequestedBy),
		ApprovedBy:       userDisplayName(ctx, transaction.ApprovedBy),
		PaidBy:           userDisplayName(ctx, transaction.PaidBy),
	}
	if transaction.Status == TransactionStatusSuspense {
		data.Amount = transaction.SuspenceAmount
		data.AmountUsed = transaction.SuspenceAmount
	}
	if transaction.CashAccountId != nil {
		if account, err := GetCashAccount(ctx, *transaction.CashAccountId); err == nil {
			data.CashAccount = account.Name
		}
	}
	if transaction.CheckRequestId != nil {
		check, err := GetCheckRequest(ctx, *transaction.CheckRequestId)
		if err != nil {
			return nil, err
		}
		data.CheckNumber = check.CheckNumber
		data.Bank = check.Bank
		data.Payee = check.Payee
	}
	return &data, nil
}

// VoucherWorkbook renders the voucher of a paid or advanced transaction as xlsx bytes.
func VoucherWorkbook(ctx context.Context, transactionId int) ([]byte, string, error) {
	transaction, err := GetTransaction(ctx, transactionId)
	if err != nil {
		return nil, "", err
	}
	data, err := loadVoucherData(ctx, transaction)
	if err != nil {
		return nil, "", err
	}
	f, err := RenderVoucher(data)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), data.VoucherNumber + ".xlsx", nil
}
