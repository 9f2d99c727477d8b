package utils

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
)

const entityCachePrefix = "finops:entity:"

// GetCacheLifespan reads CACHE_LIFESPAN in hours, default 1.
func GetCacheLifespan() time.Duration {
	if hours, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN")); err == nil && hours > 0 {
		return time.Duration(hours) * time.Hour
	}
	return time.Hour
}

func GetTypeName[T any]() string {
	return reflect.TypeFor[T]().Name()
}

// entityKey is finops:entity:<type>:<id>, e.g. finops:entity:vehicle:12
func entityKey[T any](id int) string {
	return entityCachePrefix + strings.ToLower(GetTypeName[T]()) + ":" + strconv.Itoa(id)
}

func StoreRedis[T any](obj *T, id int) error {
	return config.SetRedisObject(entityKey[T](id), obj, GetCacheLifespan())
}

// RetrieveRedis returns nil, nil on a cache miss.
func RetrieveRedis[T any](id int) (*T, error) {
	var cached T
	hit, err := config.GetRedisObject(entityKey[T](id), &cached)
	if err != nil || !hit {
		return nil, err
	}
	return &cached, nil
}

// RemoveRedisItem evicts a cached entity after it was updated or deleted.
func RemoveRedisItem[T any](id int) error {
	return config.RemoveRedisKey(entityKey[T](id))
}
