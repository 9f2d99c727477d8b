package models

import (
	"fmt"

	"bitbucket.org/mmdatafocus/finops_backend/utils"
)

type Resource string

const (
	ResourceUser               Resource = "users"
	ResourceTransaction        Resource = "transactions"
	ResourceCash               Resource = "cash"
	ResourceSuspense           Resource = "suspence"
	ResourceCheck              Resource = "checks"
	ResourceCashAccount        Resource = "cash_accounts"
	ResourceCounter            Resource = "counter"
	ResourceVehicle            Resource = "vehicles"
	ResourceFuelTransaction    Resource = "fuel_transactions"
	ResourceVehicleTransaction Resource = "vehicle_transactions"
	ResourceProduct            Resource = "products"
	ResourceWarehouse          Resource = "warehouses"
	ResourceStock              Resource = "stocks"
	ResourceStockSnapshot      Resource = "stock_snapshots"
)

type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionPay     Action = "pay"
)

var (
	readOnly  = []Action{ActionRead}
	readWrite = []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete}
)

// policies lists what each non-owner role may do. Owners may do everything.
var policies = map[UserRole]map[Resource][]Action{
	UserRoleAccountant: {
		ResourceTransaction:        {ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionApprove, ActionReject},
		ResourceCash:               {ActionPay},
		ResourceSuspense:           {ActionPay},
		ResourceCheck:              {ActionRead, ActionCreate, ActionPay, ActionReject},
		ResourceCashAccount:        readWrite,
		ResourceCounter:            readOnly,
		ResourceVehicle:            readOnly,
		ResourceFuelTransaction:    readOnly,
		ResourceVehicleTransaction: readOnly,
		ResourceProduct:            readOnly,
		ResourceWarehouse:          readOnly,
		ResourceStock:              readOnly,
		ResourceStockSnapshot:      readOnly,
	},
	UserRoleCashier: {
		ResourceTransaction: {ActionRead, ActionCreate, ActionUpdate},
		ResourceCash:        {ActionPay},
		ResourceSuspense:    {ActionPay},
		ResourceCheck:       {ActionRead, ActionCreate},
		ResourceCashAccount: {ActionRead, ActionUpdate},
		ResourceCounter:     readOnly,
	},
	UserRoleRequester: {
		ResourceTransaction: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
	},
	UserRoleFleet: {
		ResourceTransaction:        {ActionRead, ActionCreate},
		ResourceVehicle:            readWrite,
		ResourceFuelTransaction:    readWrite,
		ResourceVehicleTransaction: readWrite,
		ResourceProduct:            readWrite,
		ResourceWarehouse:          readWrite,
		ResourceStock:              {ActionRead, ActionUpdate},
		ResourceStockSnapshot:      {ActionRead, ActionCreate},
	},
}

// Authorize returns ErrForbidden unless role may perform action on resource.
func Authorize(role UserRole, resource Resource, action Action) error {
	if role == UserRoleOwner {
		return nil
	}
	for _, allowed := range policies[role][resource] {
		if allowed == action {
			return nil
		}
	}
	return fmt.Errorf("%w: %s cannot %s %s", utils.ErrForbidden, role, action, resource)
}
