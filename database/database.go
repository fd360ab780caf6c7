/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package database configures and opens the MongoDB client the repositories
// run on.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/suparena/docstore/registry"
)

// PingTimeout bounds the connectivity check done by Connect.
const PingTimeout = 5 * time.Second

// DB is a connected client and its default database.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
	logger   zerolog.Logger
}

// Connect opens a client for cfg, verifies it with a ping and, when
// database.auto_index is set, creates the registered indexes.
func Connect(ctx context.Context, cfg Config, opts ...Option) (*DB, error) {
	s := newSettings(opts)

	client, err := mongo.Connect(ctx, CreateOptions(cfg, opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	db := &DB{
		Client:   client,
		Database: client.Database(cfg.Database.Name),
		logger:   s.logger,
	}
	if err := db.Ping(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s.logger.Info().
		Str("database", cfg.Database.Name).
		Str("env", cfg.App.Env).
		Bool("debug", Debug()).
		Msg("database connection established")

	if cfg.Database.AutoIndex {
		if err := db.EnsureIndexes(ctx, registry.Indexes()); err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, err
		}
	}
	return db, nil
}

// Ping checks the primary is reachable within PingTimeout.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	return db.Client.Ping(ctx, readpref.Primary())
}

// Collection returns a handle on the named collection of the default database.
func (db *DB) Collection(name string) *mongo.Collection {
	return db.Database.Collection(name)
}

// Close disconnects the client.
func (db *DB) Close(ctx context.Context) error {
	if err := db.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	db.logger.Info().Msg("database connection closed")
	return nil
}

// EnsureIndexes creates idx on the default database.
func (db *DB) EnsureIndexes(ctx context.Context, idx map[string][]registry.IndexSpec) error {
	created, err := EnsureIndexes(ctx, func(collection string) IndexView {
		return db.Database.Collection(collection).Indexes()
	}, idx)
	for coll, names := range created {
		db.logger.Info().Str("collection", coll).Strs("indexes", names).Msg("indexes ensured")
	}
	return err
}
