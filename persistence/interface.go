// persistence/interface.go
package persistence

import (
	"fmt"
)

// CollectionKey is the fixed key the whole collection lives under, in the
// primary store and the legacy file alike.
const CollectionKey = "boardgame-vault-data"

// KeyValue 键值存储接口
type KeyValue interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
