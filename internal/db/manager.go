package db

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/D-Marc1/Simple-MySQLi/internal/config"
)

// Manager holds the named database connections for one environment.
type Manager struct {
	connections map[string]*Connection
}

func NewManager() *Manager {
	return &Manager{}
}

func (dm *Manager) GetConnection(name string) *Connection {
	return dm.connections[name]
}

func (dm *Manager) GetConnections() map[string]*Connection {
	return dm.connections
}

func (dm *Manager) Close() {
	for _, conn := range dm.connections {
		if conn.db != nil {
			conn.db.Close()
		}
	}
}

// Loads the database connections from the configuration
func (dm *Manager) LoadConnections(conf *config.Config, environment string) {
	dm.connections = make(map[string]*Connection)

	for name, conn := range conf.Connections {
		env := conn.Environment[environment]
		if env == nil || env.Disabled {
			slog.Warn("Environment is disabled", "connection", name, "environment", environment)
			continue
		}

		driver, dsn, err := buildDSN(conn, env, conf.Timeout)
		if err != nil {
			dm.connections[name] = &Connection{err: err}
			continue
		}

		database, err := sql.Open(driver, dsn)
		if err != nil {
			dm.connections[name] = &Connection{
				err: fmt.Errorf("unable to connect to %s: %w", env.Host, err),
			}
			continue
		}
		if conf.MaxConnections > 0 {
			database.SetMaxOpenConns(int(conf.MaxConnections))
		}
		dm.connections[name] = &Connection{db: database}
	}
}

func buildDSN(conn *config.Connection, env *config.Environment, timeout uint8) (string, string, error) {
	switch conn.Engine {
	case "mysql", "mariadb":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&timeout=%ds",
			env.Username, env.Password, env.Host, env.Port, env.Database, timeout,
		)
		return "mysql", dsn, nil
	case "postgres", "postgresql":
		sslMode := conn.SSLMode
		if sslMode == "" {
			sslMode = "prefer"
		}
		dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s connect_timeout=%d sslmode=%s",
			env.Host, env.Port, env.Database, env.Username, env.Password, timeout,
			sslMode,
		)
		return "pgx", dsn, nil
	}
	return "", "", fmt.Errorf("unsupported engine %q", conn.Engine)
}
