// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package badger wraps a single embedded BadgerDB instance: the engine's
// durable store for users, CAT sessions, responses, goal sessions, and
// learned-word progress (spec.md §4.8). Every persistence-backed package in
// this service opens its records through this wrapper rather than touching
// dgraph-io/badger directly, so transaction handling and logging stay in one
// place.
package badger

import (
	"context"
	"fmt"
	"log/slog"

	dgbadger "github.com/dgraph-io/badger/v4"
)

// Config controls how the embedded store is opened.
type Config struct {
	// Path is the on-disk directory BadgerDB writes its SSTables and value
	// log to. Must be writable.
	Path string

	// InMemory runs BadgerDB with no disk footprint, for tests.
	InMemory bool

	// Logger receives BadgerDB's internal log lines at Debug level. A nil
	// Logger falls back to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config pointed at the service's default cache
// directory. Callers typically override Path before calling OpenDB.
func DefaultConfig() Config {
	return Config{Path: "./data/vocabcat", Logger: slog.Default()}
}

// DB wraps an open BadgerDB instance.
type DB struct {
	inner  *dgbadger.DB
	logger *slog.Logger
}

// badgerLogAdapter routes BadgerDB's internal logger interface to slog at
// Debug level, since Badger's own log lines are mostly compaction/GC noise
// that would be too verbose at Info.
type badgerLogAdapter struct {
	logger *slog.Logger
}

func (a badgerLogAdapter) Errorf(f string, args ...interface{})   { a.logger.Error(fmt.Sprintf(f, args...)) }
func (a badgerLogAdapter) Warningf(f string, args ...interface{}) { a.logger.Warn(fmt.Sprintf(f, args...)) }
func (a badgerLogAdapter) Infof(f string, args ...interface{})    { a.logger.Debug(fmt.Sprintf(f, args...)) }
func (a badgerLogAdapter) Debugf(f string, args ...interface{})   { a.logger.Debug(fmt.Sprintf(f, args...)) }

// OpenDB opens (or creates) the BadgerDB instance at cfg.Path.
func OpenDB(cfg Config) (*DB, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := dgbadger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogAdapter{logger: logger})

	inner, err := dgbadger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db at %q: %w", cfg.Path, err)
	}
	return &DB{inner: inner, logger: logger}, nil
}

// Close flushes and closes the underlying BadgerDB instance.
func (db *DB) Close() error {
	if err := db.inner.Close(); err != nil {
		return fmt.Errorf("close badger db: %w", err)
	}
	return nil
}

// WithTxn runs fn inside a read-write BadgerDB transaction, committing on a
// nil return and discarding on error. ctx is accepted for call-site symmetry
// with WithReadTxn and future cancellation support; BadgerDB transactions
// themselves are not context-aware.
func (db *DB) WithTxn(ctx context.Context, fn func(txn *dgbadger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.inner.Update(fn)
}

// WithReadTxn runs fn inside a read-only BadgerDB transaction.
func (db *DB) WithReadTxn(ctx context.Context, fn func(txn *dgbadger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.inner.View(fn)
}

// RunGC runs BadgerDB's value-log garbage collection once, reclaiming space
// from TTL-expired and overwritten entries. Intended to be called
// periodically by the service's background sweeper.
func (db *DB) RunGC(discardRatio float64) error {
	err := db.inner.RunValueLogGC(discardRatio)
	if err == dgbadger.ErrNoRewrite {
		return nil
	}
	return err
}
