package models

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/finops_backend/utils"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		role     UserRole
		resource Resource
		action   Action
		allowed  bool
	}{
		{UserRoleOwner, ResourceUser, ActionDelete, true},
		{UserRoleOwner, ResourceStockSnapshot, ActionCreate, true},
		{UserRoleAccountant, ResourceTransaction, ActionApprove, true},
		{UserRoleAccountant, ResourceCheck, ActionPay, true},
		{UserRoleAccountant, ResourceUser, ActionRead, false},
		{UserRoleAccountant, ResourceVehicle, ActionCreate, false},
		{UserRoleCashier, ResourceCash, ActionPay, true},
		{UserRoleCashier, ResourceSuspense, ActionPay, true},
		{UserRoleCashier, ResourceTransaction, ActionApprove, false},
		{UserRoleCashier, ResourceCheck, ActionPay, false},
		{UserRoleRequester, ResourceTransaction, ActionCreate, true},
		{UserRoleRequester, ResourceTransaction, ActionApprove, false},
		{UserRoleRequester, ResourceCash, ActionPay, false},
		{UserRoleFleet, ResourceFuelTransaction, ActionCreate, true},
		{UserRoleFleet, ResourceStock, ActionUpdate, true},
		{UserRoleFleet, ResourceCashAccount, ActionRead, false},
		{UserRole("intruder"), ResourceTransaction, ActionRead, false},
	}
	for _, tc := range cases {
		err := Authorize(tc.role, tc.resource, tc.action)
		if tc.allowed && err != nil {
			t.Errorf("%s %s %s: unexpected %v", tc.role, tc.action, tc.resource, err)
		}
		if !tc.allowed && !errors.Is(err, utils.ErrForbidden) {
			t.Errorf("%s %s %s: expected ErrForbidden, got %v", tc.role, tc.action, tc.resource, err)
		}
	}
}

func TestNoRoleButOwnerManagesUsers(t *testing.T) {
	for role := range policies {
		for _, action := range []Action{ActionCreate, ActionUpdate, ActionDelete} {
			if Authorize(role, ResourceUser, action) == nil {
				t.Errorf("%s may %s users", role, action)
			}
		}
	}
}
