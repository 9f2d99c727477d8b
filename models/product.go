package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
)

type Product struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Sku       string    `gorm:"size:50;not null;uniqueIndex" json:"sku"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Unit      string    `gorm:"size:20" json:"unit"`
	IsActive  *bool     `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewProduct struct {
	Sku  string `json:"sku" binding:"required"`
	Name string `json:"name" binding:"required"`
	Unit string `json:"unit"`
}

func (input *NewProduct) validate(ctx context.Context, id int) error {
	input.Sku = strings.TrimSpace(input.Sku)
	input.Name = strings.TrimSpace(input.Name)
	if input.Sku == "" || input.Name == "" {
		return utils.ErrMissingFields
	}
	return utils.ValidateUnique[Product](ctx, "sku", input.Sku, id)
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}
	product := Product{
		Sku:      input.Sku,
		Name:     input.Name,
		Unit:     strings.TrimSpace(input.Unit),
		IsActive: utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"Sku":  input.Sku,
		"Name": input.Name,
		"Unit": strings.TrimSpace(input.Unit),
	}).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Product](id); err != nil {
		return nil, err
	}
	return product, nil
}

func ToggleActiveProduct(ctx context.Context, id int, isActive bool) (*Product, error) {
	return ToggleActiveModel[Product](ctx, id, isActive)
}

// DeleteProduct refuses while any warehouse still holds stock of it.
func DeleteProduct(ctx context.Context, id int) (*Product, error) {
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := utils.ResourceCountWhere[Stock](ctx, "product_id = ? AND quantity <> 0", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.InvalidInput("product still has stock in %d warehouse(s)", count)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Where("product_id = ?", id).Delete(&Stock{}).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(product).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Product](id); err != nil {
		return nil, err
	}
	return product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return GetResource[Product](ctx, id)
}

func ListProducts(ctx context.Context, search string, isActive *bool) ([]*Product, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + search + "%"
		dbCtx = dbCtx.Where("sku LIKE ? OR name LIKE ?", like, like)
	}
	if isActive != nil {
		dbCtx = dbCtx.Where("is_active = ?", *isActive)
	}
	var results []*Product
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
