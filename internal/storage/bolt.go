package storage

import (
	"fmt"

	json "github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"

	"github.com/VigiaStudios/VigiaGuardGo/pkg/logger"
)

var bucketName = []byte("vigia")

// BoltGateway persists the agent state in a single-file bbolt database.
// Values are stored as JSON so lists and scalars share one bucket.
type BoltGateway struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the cache file at path.
func OpenBolt(path string) (*BoltGateway, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("error abriendo la caché local: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Success(fmt.Sprintf("Caché local abierta en %s", path), "STORAGE")
	return &BoltGateway{db: db}, nil
}

func (g *BoltGateway) get(key string, out interface{}) (bool, error) {
	found := false
	err := g.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, out)
	})
	return found, err
}

func (g *BoltGateway) put(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return g.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), raw)
	})
}

func (g *BoltGateway) GetString(key string) (string, error) {
	var v string
	_, err := g.get(key, &v)
	return v, err
}

func (g *BoltGateway) SetString(key, value string) error {
	return g.put(key, value)
}

func (g *BoltGateway) GetBool(key string) (bool, error) {
	var v bool
	_, err := g.get(key, &v)
	return v, err
}

func (g *BoltGateway) SetBool(key string, value bool) error {
	return g.put(key, value)
}

func (g *BoltGateway) GetList(key string) ([]string, error) {
	var v []string
	_, err := g.get(key, &v)
	return v, err
}

func (g *BoltGateway) SetList(key string, values []string) error {
	return g.put(key, values)
}

func (g *BoltGateway) AppendList(key, value string) error {
	list, err := g.GetList(key)
	if err != nil {
		return err
	}
	for _, v := range list {
		if v == value {
			return nil
		}
	}
	return g.put(key, append(list, value))
}

func (g *BoltGateway) Close() error {
	return g.db.Close()
}
