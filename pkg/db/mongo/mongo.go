// Package mongo предоставляет подключение к MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"useraccounts/pkg/logger"
)

// Константы для сообщений logger.
const (
	LogConnecting = "connecting to MongoDB"
	LogConnected  = "successfully connected to MongoDB"
	LogClosing    = "closing MongoDB connection"
)

// Константы для сообщений об ошибках.
const (
	ErrEmptyURI      = "mongodb URI is empty"
	ErrEmptyDatabase = "mongodb database name is empty"
	ErrConnect       = "failed to create mongodb client"
	ErrPing          = "failed to ping mongodb"
	ErrDisconnect    = "failed to disconnect from mongodb"
)

// Database представляет соединение с базой MongoDB.
type Database struct {
	client *mongo.Client
	db     *mongo.Database
}

// New подключается к MongoDB и проверяет доступность первичного узла.
func New(ctx context.Context, uri, database string, connectTimeout time.Duration) (*Database, error) {
	log := logger.Log(ctx).With(zap.String("database", database))

	if uri == "" {
		return nil, fmt.Errorf("%s", ErrEmptyURI)
	}
	if database == "" {
		return nil, fmt.Errorf("%s", ErrEmptyDatabase)
	}

	log.Info(ctx, LogConnecting)

	opts := options.Client().ApplyURI(uri)
	if connectTimeout > 0 {
		opts.SetConnectTimeout(connectTimeout).SetServerSelectionTimeout(connectTimeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		log.Error(ctx, ErrConnect, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrConnect, err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		log.Error(ctx, ErrPing, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrPing, err)
	}

	log.Info(ctx, LogConnected)
	return &Database{client: client, db: client.Database(database)}, nil
}

// Collection возвращает коллекцию базы.
func (d *Database) Collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

// Ping проверяет доступность MongoDB.
func (d *Database) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// Close отключается от MongoDB.
func (d *Database) Close(ctx context.Context) error {
	logger.Log(ctx).Info(ctx, LogClosing)
	if err := d.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrDisconnect, err)
	}
	return nil
}
