// Package persistence loads and saves the collection through a tiered chain
// of storage providers: the primary SQLite store, a legacy flat file, and a
// bundled seed dataset.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/wfunc/boardvault/logger"
	"github.com/wfunc/boardvault/models"
)

// Gateway 分层存储网关
type Gateway struct {
	primary KeyValue
	legacy  *LegacyFile
	seed    *Seed

	// OnSave, when set, observes every save attempt. Used for metrics.
	OnSave func(duration time.Duration, err error)
}

func NewGateway(primary KeyValue, legacy *LegacyFile, seed *Seed) *Gateway {
	return &Gateway{
		primary: primary,
		legacy:  legacy,
		seed:    seed,
	}
}

// Load walks the tier chain and returns the first hit, decoded but NOT
// normalized; normalization is the caller's job, done once at startup.
// Tier order:
//
//  1. primary store — a hit (even an empty array) is final
//  2. legacy file   — migrated into the primary store, then deleted
//  3. bundled seed  — copied into the primary store
//
// Any failure is logged and treated as "tier yielded nothing"; the terminal
// fallback is an empty collection, never an error.
func (g *Gateway) Load(ctx context.Context) ([]interface{}, error) {
	// Tier 1: primary store.
	if data, err := g.primary.Get(CollectionKey); err == nil {
		games, derr := decodeCollection(data)
		if derr == nil {
			return games, nil
		}
		logger.Log.Errorf("Primary store holds undecodable data: %v", derr)
	} else if !errors.Is(err, ErrRecordNotFound) {
		logger.Log.Errorf("Failed to read primary store: %v", err)
	}

	// Tier 2: legacy file, migrated at most once.
	if data, err := g.legacy.Read(); err == nil {
		games, derr := decodeCollection(data)
		if derr == nil {
			if perr := g.primary.Put(CollectionKey, data); perr != nil {
				logger.Log.Errorf("Failed to migrate legacy data into primary store: %v", perr)
			} else if rerr := g.legacy.Remove(); rerr != nil {
				logger.Log.Warnf("Migrated legacy data but could not remove %s: %v", g.legacy.Path, rerr)
			} else {
				logger.Log.Infof("Migrated legacy collection from %s", g.legacy.Path)
			}
			return games, nil
		}
		logger.Log.Errorf("Legacy file holds undecodable data: %v", derr)
	} else if !errors.Is(err, ErrRecordNotFound) {
		logger.Log.Errorf("Failed to read legacy file: %v", err)
	}

	// Tier 3: bundled seed.
	if data, err := g.seed.Read(); err == nil {
		games, derr := decodeCollection(data)
		if derr == nil {
			if perr := g.primary.Put(CollectionKey, data); perr != nil {
				logger.Log.Errorf("Failed to persist seed data: %v", perr)
			}
			return games, nil
		}
		logger.Log.Errorf("Seed data is undecodable: %v", derr)
	} else {
		logger.Log.Errorf("Failed to read seed data: %v", err)
	}

	return []interface{}{}, nil
}

// Save overwrites the primary store with the full collection. Write failures
// are returned, not swallowed: losing a save must be visible.
func (g *Gateway) Save(ctx context.Context, games []models.BoardGame) error {
	start := time.Now()

	data, err := json.Marshal(games)
	if err == nil {
		err = g.primary.Put(CollectionKey, data)
	}

	if g.OnSave != nil {
		g.OnSave(time.Since(start), err)
	}
	return err
}

func decodeCollection(data []byte) ([]interface{}, error) {
	var games []interface{}
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, err
	}
	if games == nil {
		games = []interface{}{}
	}
	return games, nil
}
