package utils

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/finops_backend/config"
)

// ValidateResourceId reports ErrorRecordNotFound when no T row has id.
func ValidateResourceId[T any](ctx context.Context, id int) error {
	count, err := ResourceCountWhere[T](ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrorRecordNotFound
	}
	return nil
}

// ValidateUnique rejects value when another T row already holds it in column.
// exceptId is the row being updated, zero on create.
func ValidateUnique[T any](ctx context.Context, column string, value any, exceptId int) error {
	condition, args := column+" = ?", []any{value}
	if exceptId > 0 {
		condition += " AND id <> ?"
		args = append(args, exceptId)
	}
	count, err := ResourceCountWhere[T](ctx, condition, args...)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s %v is already taken", ErrDuplicate, column, value)
	}
	return nil
}

func ResourceCountWhere[T any](ctx context.Context, condition string, args ...any) (int64, error) {
	var count int64
	err := config.GetDB().WithContext(ctx).Model(new(T)).Where(condition, args...).Count(&count).Error
	return count, err
}
