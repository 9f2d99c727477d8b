package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/models"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// setupIntegration starts throwaway mysql + redis containers and migrates a fresh schema.
func setupIntegration(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "finops_test")
	t.Setenv("PUBSUB_TOPIC", "")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")
	ctx = utils.SetUsernameInContext(ctx, "test")
	ctx = utils.SetUserRoleInContext(ctx, string(models.UserRoleOwner))
	return ctx
}

func approvedTransaction(t *testing.T, ctx context.Context, typ models.TransactionType, amount string) *models.Transaction {
	t.Helper()
	txn, err := models.CreateTransaction(ctx, &models.NewTransaction{
		Type:        typ,
		Description: "integration " + string(typ),
		Amount:      decimal.RequireFromString(amount),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	txn, err = models.ApproveTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("ApproveTransaction: %v", err)
	}
	return txn
}

func TestCashflowLifecycle(t *testing.T) {
	ctx := setupIntegration(t)

	account, err := models.CreateCashAccount(ctx, &models.NewCashAccount{
		Name:           "Main Petty Cash",
		OpeningBalance: decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatalf("CreateCashAccount: %v", err)
	}

	// receipt payment: 1000 - 500
	receipt := approvedTransaction(t, ctx, models.TransactionTypeReceiptPayment, "500")
	paid, err := models.PayCash(ctx, &models.NewCashPayment{
		TransactionId:    receipt.ID,
		CashAccountId:    account.ID,
		Type:             models.TransactionTypeReceiptPayment,
		ReceiptReference: "R-001",
	})
	if err != nil {
		t.Fatalf("PayCash: %v", err)
	}
	if paid.Status != models.TransactionStatusPaid || paid.VoucherNumber() != "PCPV-000001" {
		t.Fatalf("paid = %s %s", paid.Status, paid.VoucherNumber())
	}
	assertBalance(t, ctx, account.ID, "500")

	// paying twice must not move money again
	if _, err := models.PayCash(ctx, &models.NewCashPayment{
		TransactionId: receipt.ID, CashAccountId: account.ID, Type: models.TransactionTypeReceiptPayment,
	}); err == nil {
		t.Fatal("second payment accepted")
	}
	assertBalance(t, ctx, account.ID, "500")

	// overdraw is refused and leaves no serial behind
	big := approvedTransaction(t, ctx, models.TransactionTypeReceiptPayment, "600")
	if _, err := models.PayCash(ctx, &models.NewCashPayment{
		TransactionId: big.ID, CashAccountId: account.ID, Type: models.TransactionTypeReceiptPayment,
	}); err == nil {
		t.Fatal("overdraw accepted")
	}
	if reloaded, _ := models.GetTransaction(ctx, big.ID); reloaded.HasSerial() || reloaded.Status != models.TransactionStatusApproved {
		t.Fatalf("failed payment left state behind: %+v", reloaded)
	}

	// suspense: advance 300, then settle with 120 returned
	advance := approvedTransaction(t, ctx, models.TransactionTypeSuspencePayment, "300")
	suspended, err := models.MoveToSuspense(ctx, &models.NewSuspense{TransactionId: advance.ID, CashAccountId: account.ID})
	if err != nil {
		t.Fatalf("MoveToSuspense: %v", err)
	}
	if suspended.VoucherNumber() != "PCPV-000002" {
		t.Fatalf("suspense voucher = %s", suspended.VoucherNumber())
	}
	assertBalance(t, ctx, account.ID, "200")

	returned := decimal.NewFromInt(120)
	settled, err := models.PayCash(ctx, &models.NewCashPayment{
		TransactionId: advance.ID, CashAccountId: account.ID,
		Type: models.TransactionTypeSuspencePayment, ReturnAmount: &returned,
	})
	if err != nil {
		t.Fatalf("settle suspense: %v", err)
	}
	if settled.VoucherNumber() != "PCPV-000002" || !settled.AmountUsed.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("settled = %s used %s", settled.VoucherNumber(), settled.AmountUsed)
	}
	assertBalance(t, ctx, account.ID, "320")

	// check payment draws from the CPV counter
	checkTxn := approvedTransaction(t, ctx, models.TransactionTypeCheckPayment, "2500")
	check, err := models.PrepareCheck(ctx, &models.NewCheckRequest{
		TransactionId: checkTxn.ID, CheckNumber: "CHK-0001", Bank: "KBZ", Payee: "Supplier Co",
	})
	if err != nil {
		t.Fatalf("PrepareCheck: %v", err)
	}
	if _, err := models.ConfirmCheckPayment(ctx, &models.CheckDecision{TransactionId: checkTxn.ID}); err != nil {
		t.Fatalf("ConfirmCheckPayment: %v", err)
	}
	checkTxn, _ = models.GetTransaction(ctx, checkTxn.ID)
	if checkTxn.Status != models.TransactionStatusPaid || checkTxn.VoucherNumber() != "CPV-000001" {
		t.Fatalf("check transaction = %s %s (check %d)", checkTxn.Status, checkTxn.VoucherNumber(), check.ID)
	}
	assertBalance(t, ctx, account.ID, "320")

	counter, err := models.GetCounter(ctx)
	if err != nil || counter.Pcpv != 2 || counter.Cpv != 1 {
		t.Fatalf("counter = %+v, %v", counter, err)
	}

	history, err := models.ListHistory(ctx, models.ReferenceTypeTransaction, advance.ID)
	if err != nil || len(history) < 4 {
		t.Fatalf("history for suspense transaction: %d rows, %v", len(history), err)
	}
}

func TestSuspenseSettlesOnAdvancingAccount(t *testing.T) {
	ctx := setupIntegration(t)

	advancing, err := models.CreateCashAccount(ctx, &models.NewCashAccount{Name: "Office Cash", OpeningBalance: decimal.NewFromInt(1000)})
	if err != nil {
		t.Fatalf("CreateCashAccount: %v", err)
	}
	other, err := models.CreateCashAccount(ctx, &models.NewCashAccount{Name: "Site Cash", OpeningBalance: decimal.Zero})
	if err != nil {
		t.Fatalf("CreateCashAccount: %v", err)
	}

	advance := approvedTransaction(t, ctx, models.TransactionTypeSuspencePayment, "300")
	if _, err := models.MoveToSuspense(ctx, &models.NewSuspense{TransactionId: advance.ID, CashAccountId: advancing.ID}); err != nil {
		t.Fatalf("MoveToSuspense: %v", err)
	}
	assertBalance(t, ctx, advancing.ID, "700")

	returned := decimal.NewFromInt(120)
	_, err = models.PayCash(ctx, &models.NewCashPayment{
		TransactionId: advance.ID, CashAccountId: other.ID,
		Type: models.TransactionTypeSuspencePayment, ReturnAmount: &returned,
	})
	if !errors.Is(err, utils.ErrInvalidInput) {
		t.Fatalf("settling on another account: expected ErrInvalidInput, got %v", err)
	}
	assertBalance(t, ctx, advancing.ID, "700")
	assertBalance(t, ctx, other.ID, "0")

	reloaded, err := models.GetTransaction(ctx, advance.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if reloaded.Status != models.TransactionStatusSuspense || reloaded.CashAccountId == nil || *reloaded.CashAccountId != advancing.ID {
		t.Fatalf("refused settlement changed the transaction: %+v", reloaded)
	}

	if _, err := models.PayCash(ctx, &models.NewCashPayment{
		TransactionId: advance.ID, CashAccountId: advancing.ID,
		Type: models.TransactionTypeSuspencePayment, ReturnAmount: &returned,
	}); err != nil {
		t.Fatalf("settle on advancing account: %v", err)
	}
	assertBalance(t, ctx, advancing.ID, "820")
	assertBalance(t, ctx, other.ID, "0")
}

func TestRejectedCheckTransactionIsKept(t *testing.T) {
	ctx := setupIntegration(t)

	checkTxn := approvedTransaction(t, ctx, models.TransactionTypeCheckPayment, "900")
	check, err := models.PrepareCheck(ctx, &models.NewCheckRequest{
		TransactionId: checkTxn.ID, CheckNumber: "CHK-0100", Bank: "AYA", Payee: "Garage Ltd",
	})
	if err != nil {
		t.Fatalf("PrepareCheck: %v", err)
	}
	if _, err := models.RejectCheck(ctx, &models.CheckDecision{TransactionId: checkTxn.ID, Reason: "wrong payee"}); err != nil {
		t.Fatalf("RejectCheck: %v", err)
	}

	if _, err := models.DeleteTransaction(ctx, checkTxn.ID); !errors.Is(err, utils.ErrInvalidTransition) {
		t.Fatalf("DeleteTransaction on rejected check: expected ErrInvalidTransition, got %v", err)
	}
	kept, err := models.GetTransaction(ctx, checkTxn.ID)
	if err != nil {
		t.Fatalf("transaction gone after refused delete: %v", err)
	}
	if kept.Status != models.TransactionStatusRejected || kept.VoucherNumber() != "CPV-000001" {
		t.Fatalf("kept = %s %s", kept.Status, kept.VoucherNumber())
	}
	if _, err := models.GetCheckRequest(ctx, check.ID); err != nil {
		t.Fatalf("check request gone: %v", err)
	}

	// a plain rejected request never received a serial and can still go
	plain := approvedTransaction(t, ctx, models.TransactionTypeReceiptPayment, "10")
	if _, err := models.RejectTransaction(ctx, plain.ID, "duplicate"); err != nil {
		t.Fatalf("RejectTransaction: %v", err)
	}
	if _, err := models.DeleteTransaction(ctx, plain.ID); err != nil {
		t.Fatalf("DeleteTransaction on plain rejected: %v", err)
	}
}

func assertBalance(t *testing.T, ctx context.Context, accountId int, want string) {
	t.Helper()
	account, err := models.GetCashAccount(ctx, accountId)
	if err != nil {
		t.Fatalf("GetCashAccount: %v", err)
	}
	if !account.Balance.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("balance = %s, want %s", account.Balance, want)
	}
}

func TestConcurrentSerialAllocationIsUnique(t *testing.T) {
	ctx := setupIntegration(t)
	db := config.GetDB()

	const workers = 40
	serials := make([]int64, workers)
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				serial, err := models.AllocateSerial(tx, models.VoucherTypePCPV)
				serials[i] = serial
				return err
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("AllocateSerial: %v", err)
		}
	}

	sort.Slice(serials, func(i, j int) bool { return serials[i] < serials[j] })
	for i, s := range serials {
		if s != int64(i+1) {
			t.Fatalf("serials not gapless and unique: %v", serials)
		}
	}
}

func TestStockSnapshotIsIdempotent(t *testing.T) {
	ctx := setupIntegration(t)

	product, err := models.CreateProduct(ctx, &models.NewProduct{Sku: "DSL-001", Name: "Diesel", Unit: "L"})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	warehouse, err := models.CreateWarehouse(ctx, &models.NewWarehouse{Name: "Yard"})
	if err != nil {
		t.Fatalf("CreateWarehouse: %v", err)
	}
	if _, err := models.SetStock(ctx, &models.NewStock{
		ProductId: product.ID, WarehouseId: warehouse.ID, Quantity: decimal.NewFromInt(40),
	}); err != nil {
		t.Fatalf("SetStock: %v", err)
	}

	day := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		count, err := models.TakeStockSnapshot(ctx, day)
		if err != nil || count != 1 {
			t.Fatalf("TakeStockSnapshot run %d = %d, %v", i, count, err)
		}
	}

	if _, err := models.AdjustStock(ctx, &models.StockAdjustment{
		ProductId: product.ID, WarehouseId: warehouse.ID, Delta: decimal.NewFromInt(-15), Reason: "issued",
	}); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if _, err := models.TakeStockSnapshot(ctx, day); err != nil {
		t.Fatalf("TakeStockSnapshot rerun: %v", err)
	}

	snapshots, err := models.ListStockSnapshots(ctx, &models.StockSnapshotFilter{Date: "2024-06-30"})
	if err != nil {
		t.Fatalf("ListStockSnapshots: %v", err)
	}
	if len(snapshots) != 1 || !snapshots[0].Quantity.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("snapshots = %+v", snapshots)
	}

	if _, err := models.AdjustStock(ctx, &models.StockAdjustment{
		ProductId: product.ID, WarehouseId: warehouse.ID, Delta: decimal.NewFromInt(-26),
	}); err == nil {
		t.Fatal("negative stock accepted")
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("finops-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := dockerRun("exec", name, "redis-cli", "ping"); err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("finops-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=finops_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent"); err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	m := regexp.MustCompile(`:(\d+)`).FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	b, err := exec.Command("docker", args...).CombinedOutput()
	return string(b), err
}
