package models

import (
	"encoding/base64"
	"strconv"

	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type PageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

type Page[T any] struct {
	Items    []*T     `json:"items"`
	PageInfo PageInfo `json:"pageInfo"`
}

func EncodeCursor(id int) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(id)))
}

func DecodeCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	b, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, utils.InvalidInput("invalid cursor")
	}
	id, err := strconv.Atoi(string(b))
	if err != nil || id < 0 {
		return 0, utils.InvalidInput("invalid cursor")
	}
	return id, nil
}

func pageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// paginate lists newest first, keyed on id, fetching one extra row to detect a next page.
func paginate[T any](dbCtx *gorm.DB, after string, limit int, idOf func(*T) int) (*Page[T], error) {
	afterId, err := DecodeCursor(after)
	if err != nil {
		return nil, err
	}
	size := pageSize(limit)
	if afterId > 0 {
		dbCtx = dbCtx.Where("id < ?", afterId)
	}

	var items []*T
	if err := dbCtx.Order("id DESC").Limit(size + 1).Find(&items).Error; err != nil {
		return nil, err
	}

	page := Page[T]{Items: items}
	if len(items) > size {
		page.Items = items[:size]
		page.PageInfo.HasNextPage = true
	}
	if n := len(page.Items); n > 0 {
		page.PageInfo.EndCursor = EncodeCursor(idOf(page.Items[n-1]))
	}
	if page.Items == nil {
		page.Items = []*T{}
	}
	return &page, nil
}
