package store

import (
	"encoding/json"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/immutable-ratings/goratings/pkg/logger"
)

// Service 持久化服务接口
type Service interface {
	NewStore(prefix, id, tag string) Store
}

// Store 存储接口
type Store interface {
	Save(data interface{}) error
	Load(data interface{}) error
}

// ErrNotExists 表示数据不存在
var ErrNotExists = errors.New("store: data not exists")

// BadgerService 基于 Badger 的持久化服务。
// 每次 Save 都在单个事务内完成，天然满足全有或全无。
type BadgerService struct {
	db *badger.DB
}

// Open 打开（或创建）位于 path 的存储
func Open(path string) (*BadgerService, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store: path is required")
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger")
	}
	return &BadgerService{db: db}, nil
}

// OpenInMemory 打开内存存储（测试用）
func OpenInMemory() (*BadgerService, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger")
	}
	return &BadgerService{db: db}, nil
}

// Close 关闭存储
func (s *BadgerService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewStore 创建新的存储
func (s *BadgerService) NewStore(prefix, id, tag string) Store {
	key := fmt.Sprintf("%s:%s:%s", prefix, id, tag)
	return &badgerStore{db: s.db, key: key}
}

type badgerStore struct {
	db  *badger.DB
	key string
}

// Save 保存数据
func (s *badgerStore) Save(data interface{}) error {
	logger.Debugf("[store] Save: key=%s", s.key)
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(s.key), b)
	})
}

// Load 加载数据
func (s *badgerStore) Load(data interface{}) error {
	logger.Debugf("[store] Load: key=%s", s.key)
	var b []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(s.key))
		if err != nil {
			return err
		}
		b, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotExists
	}
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return ErrNotExists
	}
	return json.Unmarshal(b, data)
}
