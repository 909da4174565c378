// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package persistence

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"sort"

	dgbadger "github.com/dgraph-io/badger/v4"

	badgerstore "github.com/aleutian-labs/vocabcat/services/vocabcat/storage/badger"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/vocaberr"
)

// Key prefixes, versioned so a future record-shape change can coexist with
// old rows during a migration rather than colliding silently (spec.md
// §4.8/§9).
const (
	usersPrefix        = "users/v1/"
	sessionsPrefix     = "sessions/v1/"
	responsesPrefix    = "responses/v1/"
	goalSessionsPrefix = "goal_sessions/v1/"
	learnedWordsPrefix = "learned_words/v1/"

	// responsesBySessionPrefix indexes response keys by session so
	// LoadResponses does not need a full-table scan.
	responsesBySessionPrefix = "responses_by_session/v1/"
	// learnedWordsByGoalPrefix indexes learned-word keys by goal session.
	learnedWordsByGoalPrefix = "learned_words_by_goal/v1/"
	// sessionsByUserPrefix indexes session keys by user.
	sessionsByUserPrefix = "sessions_by_user/v1/"
)

// BadgerPort implements Port against a single embedded BadgerDB instance.
type BadgerPort struct {
	db *badgerstore.DB
}

// NewBadgerPort wraps an already-open DB.
func NewBadgerPort(db *badgerstore.DB) *BadgerPort {
	return &BadgerPort{db: db}
}

func gobEncode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

func gobDecode(data []byte, v interface{}) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("gob decode: %w", err)
	}
	return nil
}

// get reads one record at key, decoding into dst. Returns vocaberr.NotFound
// on a missing key, vocaberr.PersistenceUnavailable on any other storage
// error.
func (p *BadgerPort) get(ctx context.Context, key string, dst interface{}) error {
	var raw []byte
	err := p.db.WithReadTxn(ctx, func(txn *dgbadger.Txn) error {
		it, err := txn.Get([]byte(key))
		if errors.Is(err, dgbadger.ErrKeyNotFound) {
			return err
		}
		if err != nil {
			return err
		}
		raw, err = it.ValueCopy(nil)
		return err
	})
	if errors.Is(err, dgbadger.ErrKeyNotFound) {
		return vocaberr.New(vocaberr.NotFound, "record not found: "+key)
	}
	if err != nil {
		return vocaberr.Wrap(vocaberr.PersistenceUnavailable, "read failed", err)
	}
	return gobDecode(raw, dst)
}

// put writes one record at key plus any index keys, all in a single
// transaction.
func (p *BadgerPort) put(ctx context.Context, key string, v interface{}, indexKeys ...string) error {
	raw, err := gobEncode(v)
	if err != nil {
		return vocaberr.Wrap(vocaberr.Internal, "encode failed", err)
	}
	err = p.db.WithTxn(ctx, func(txn *dgbadger.Txn) error {
		if err := txn.Set([]byte(key), raw); err != nil {
			return err
		}
		for _, ik := range indexKeys {
			if err := txn.Set([]byte(ik), []byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return vocaberr.Wrap(vocaberr.PersistenceUnavailable, "write failed", err)
	}
	return nil
}

// scanByPrefix returns the primary-record keys referenced by every index
// key under prefix, in lexical (insertion-ish) order.
func (p *BadgerPort) scanByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := p.db.WithReadTxn(ctx, func(txn *dgbadger.Txn) error {
		opts := dgbadger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			keys = append(keys, string(val))
		}
		return nil
	})
	if err != nil {
		return nil, vocaberr.Wrap(vocaberr.PersistenceUnavailable, "scan failed", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (p *BadgerPort) UpsertUser(ctx context.Context, rec UserRecord) error {
	return p.put(ctx, usersPrefix+rec.ID, rec)
}

func (p *BadgerPort) GetUser(ctx context.Context, userID string) (UserRecord, error) {
	var rec UserRecord
	err := p.get(ctx, usersPrefix+userID, &rec)
	return rec, err
}

func (p *BadgerPort) ArchiveSession(ctx context.Context, rec SessionRecord) error {
	key := sessionsPrefix + rec.ID
	indexKey := sessionsByUserPrefix + rec.UserID + "/" + rec.ID
	return p.put(ctx, key, rec, indexKey)
}

func (p *BadgerPort) LoadHistory(ctx context.Context, userID string) ([]SessionRecord, error) {
	keys, err := p.scanByPrefix(ctx, sessionsByUserPrefix+userID+"/")
	if err != nil {
		return nil, err
	}
	out := make([]SessionRecord, 0, len(keys))
	for _, k := range keys {
		var rec SessionRecord
		if err := p.get(ctx, k, &rec); err != nil {
			if vocaberr.Is(err, vocaberr.NotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (p *BadgerPort) AppendResponse(ctx context.Context, rec ResponseRecord) error {
	key := responsesPrefix + rec.ID
	indexKey := responsesBySessionPrefix + rec.SessionID + "/" + fmt.Sprintf("%08d", rec.SequenceIdx)
	return p.put(ctx, key, rec, indexKey)
}

func (p *BadgerPort) LoadResponses(ctx context.Context, sessionID string) ([]ResponseRecord, error) {
	keys, err := p.scanByPrefix(ctx, responsesBySessionPrefix+sessionID+"/")
	if err != nil {
		return nil, err
	}
	out := make([]ResponseRecord, 0, len(keys))
	for _, k := range keys {
		var rec ResponseRecord
		if err := p.get(ctx, k, &rec); err != nil {
			if vocaberr.Is(err, vocaberr.NotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceIdx < out[j].SequenceIdx })
	return out, nil
}

func (p *BadgerPort) SaveGoalSession(ctx context.Context, rec GoalSessionRecord) error {
	return p.put(ctx, goalSessionsPrefix+rec.ID, rec)
}

func (p *BadgerPort) LoadGoalSession(ctx context.Context, id string) (GoalSessionRecord, error) {
	var rec GoalSessionRecord
	err := p.get(ctx, goalSessionsPrefix+id, &rec)
	return rec, err
}

func (p *BadgerPort) UpsertLearnedWord(ctx context.Context, rec LearnedWordRecord) error {
	key := learnedWordsPrefix + rec.ID
	indexKey := learnedWordsByGoalPrefix + rec.GoalSessionID + "/" + rec.ID
	return p.put(ctx, key, rec, indexKey)
}

func (p *BadgerPort) LoadLearnedWords(ctx context.Context, goalSessionID string) ([]LearnedWordRecord, error) {
	keys, err := p.scanByPrefix(ctx, learnedWordsByGoalPrefix+goalSessionID+"/")
	if err != nil {
		return nil, err
	}
	out := make([]LearnedWordRecord, 0, len(keys))
	for _, k := range keys {
		var rec LearnedWordRecord
		if err := p.get(ctx, k, &rec); err != nil {
			if vocaberr.Is(err, vocaberr.NotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
