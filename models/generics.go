package models

import (
	"context"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"gorm.io/gorm"
)

// first find in redis, then in db, cache result
// (may return RecordNotFound error)
func GetResource[T any](ctx context.Context, id int, associations ...string) (*T, error) {
	// find in redis
	result, err := utils.RetrieveRedis[T](id)
	if err != nil {
		config.GetLogger().WithField("type", utils.GetTypeName[T]()).WithError(err).Warn("redis read failed")
		result = nil
	}
	if result != nil {
		return result, nil
	}

	// fetch from db
	result, err = utils.FetchModel[T](ctx, id, associations...)
	if err != nil {
		return nil, err
	}
	// store in redis
	if err := utils.StoreRedis[T](result, id); err != nil {
		config.GetLogger().WithField("type", utils.GetTypeName[T]()).WithError(err).Warn("redis write failed")
	}
	return result, nil
}

func ToggleActiveModel[T any](ctx context.Context, id int, isActive bool) (*T, error) {

	var result *T
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = utils.FetchModelForUpdate[T](tx, id)
		if err != nil {
			return err
		}

		Tx := tx.Model(result).UpdateColumn("IsActive", isActive)
		if Tx.Error != nil {
			return Tx.Error
		}

		referenceType := Tx.Statement.Table
		var actionType string
		if isActive {
			actionType = "*ACTIVE*"
		} else {
			actionType = "*INACTIVE*"
		}
		return createHistory(tx, actionType, id, referenceType, nil, nil, "toggled "+utils.GetTypeName[T]())
	})
	if err != nil {
		return nil, err
	}

	// clear cache
	if err := utils.RemoveRedisItem[T](id); err != nil {
		config.GetLogger().WithField("type", utils.GetTypeName[T]()).WithError(err).Warn("redis delete failed")
	}
	return result, nil
}
