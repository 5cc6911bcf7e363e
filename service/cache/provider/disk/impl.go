package disk

import (
	"encoding/binary"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/service/cache/provider"
)

// every value is stored behind an 8 byte big endian expiry in unix nanos, 0 is forever
const headerSize = 8

type impl struct {
	name string
	db   *leveldb.DB
}

// Provider is a disk layer that must be closed on shutdown.
type Provider interface {
	provider.Provider
	Close() error
}

func NewDisk(name, path string) (Provider, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		ErrorIfMissing: false,
		Compression:    opt.NoCompression,
	})
	if err != nil {
		return nil, err
	}
	return &impl{name, db}, nil
}

func (im *impl) Name() string {
	return im.name
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	raw, err := im.db.Get([]byte(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, 0, provider.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).WithField("key", key).Error("leveldb.Get failed")
		return nil, 0, err
	}
	if len(raw) < headerSize {
		_ = im.db.Delete([]byte(key), nil)
		return nil, 0, provider.ErrNotFound
	}

	var ttl time.Duration
	if exp := int64(binary.BigEndian.Uint64(raw[:headerSize])); exp != 0 {
		ttl = time.Until(time.Unix(0, exp))
		if ttl <= 0 {
			if err := im.db.Delete([]byte(key), nil); err != nil {
				c.WithField("err", err).WithField("key", key).Warn("leveldb.Delete failed")
			}
			return nil, 0, provider.ErrNotFound
		}
	}
	return raw[headerSize:], ttl, nil
}

func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	raw := make([]byte, headerSize+len(value))
	if ttl > 0 {
		binary.BigEndian.PutUint64(raw[:headerSize], uint64(time.Now().Add(ttl).UnixNano()))
	}
	copy(raw[headerSize:], value)

	if err := im.db.Put([]byte(key), raw, nil); err != nil {
		c.WithField("err", err).WithField("key", key).Error("leveldb.Put failed")
		return err
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	if err := im.db.Delete([]byte(key), nil); err != nil {
		c.WithField("err", err).WithField("key", key).Error("leveldb.Delete failed")
		return err
	}
	return nil
}

func (im *impl) Close() error {
	return im.db.Close()
}
