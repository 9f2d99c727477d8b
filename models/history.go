package models

import (
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"gorm.io/gorm"
)

// History is the change trail of state transitions and balance mutations.
type History struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ActionType    string    `gorm:"size:10;not null" json:"actionType"`
	Before        string    `gorm:"type:text" json:"before"`
	After         string    `gorm:"type:text" json:"after"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ReferenceID   int       `gorm:"index:idx_history_reference" json:"referenceId"`
	ReferenceType string    `gorm:"size:50;index:idx_history_reference" json:"referenceType"`
	UserId        int       `gorm:"index;not null" json:"userId"`
	UserName      string    `gorm:"size:100" json:"userName"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func createHistory(tx *gorm.DB,
	actionType string,
	referenceId int,
	referenceType string,
	before interface{},
	after interface{},
	description string) error {

	userId, userName, err := utils.CurrentUser(tx.Statement.Context)
	if err != nil {
		return err
	}

	history := History{
		ActionType:    actionType,
		Description:   description,
		ReferenceID:   referenceId,
		ReferenceType: referenceType,
		UserId:        userId,
		UserName:      userName,
	}
	if before != nil {
		b, _ := json.Marshal(before)
		history.Before = string(b)
	}
	if after != nil {
		a, _ := json.Marshal(after)
		history.After = string(a)
	}

	return tx.Create(&history).Error
}

func ListHistory(ctx context.Context, referenceType string, referenceId int) ([]*History, error) {
	db := config.GetDB()
	var results []*History
	err := db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceId).
		Order("id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
