package db

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/D-Marc1/Simple-MySQLi/internal/locale"
)

// Executor fans one statement out to the managed connections.
type Executor struct {
	manager *Manager
	cache   *Cache
}

type Summary struct {
	Successful int
	Failed     int
}

func NewExecutor(manager *Manager, cache *Cache) *Executor {
	return &Executor{
		manager: manager,
		cache:   cache,
	}
}

// ParallelQuery runs the query on every selected connection, at most
// workers at a time, and materializes each result. An empty connections
// slice selects all of them. Failures are collected per connection; one
// slow or broken database never fails the others.
func (ex *Executor) ParallelQuery(
	ctx context.Context, workers uint8, query string, args []any,
	connections []string, useCache bool,
) (map[string]*ResultSet, map[string]error) {
	var mu sync.Mutex
	results := make(map[string]*ResultSet)
	failures := make(map[string]error)

	g := &errgroup.Group{}
	g.SetLimit(int(workers))

	summary := Summary{}

	for name, conn := range ex.manager.GetConnections() {
		if len(connections) > 0 && !slices.Contains(connections, name) {
			continue
		}

		g.Go(func() error {
			res, err := ex.queryOne(ctx, conn, name, query, args, useCache)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.ErrorContext(ctx, locale.L.Logs.ErrorRunningQueryOnConn, "connection", name, "error", err)
				failures[name] = err
				summary.Failed++
			} else {
				slog.InfoContext(ctx, locale.L.Logs.QuerySuccessfulOnConn, "connection", name)
				results[name] = res
				summary.Successful++
			}
			return nil
		})
	}

	g.Wait()

	slog.InfoContext(ctx, locale.L.Logs.QuerySummary,
		"successful", summary.Successful, "failed", summary.Failed)

	return results, failures
}

func (ex *Executor) queryOne(
	ctx context.Context, conn *Connection, name string,
	query string, args []any, useCache bool,
) (*ResultSet, error) {
	if conn.err != nil {
		slog.ErrorContext(ctx, locale.L.Logs.SkippingConnectionError, "connection", name, "error", conn.err)
		return nil, conn.err
	}
	if conn.db == nil {
		return nil, fmt.Errorf("connection to %s is null", name)
	}

	if useCache && ex.cache != nil {
		if res, ok := ex.cache.Get(name, query, args); ok {
			slog.InfoContext(ctx, locale.L.Logs.QueryResultFromCache, "connection", name)
			return res, nil
		}
	}

	slog.InfoContext(ctx, locale.L.Logs.RunningQueryOnConn, "connection", name)

	res, err := conn.QueryAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	if useCache && ex.cache != nil {
		ex.cache.Set(name, query, args, res)
	}
	return res, nil
}
