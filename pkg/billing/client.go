// Package billing reads GCP billing export line items out of ClickHouse.
// Every fetch is preceded by a dry-run cost estimate so a misconfigured
// query can be stopped before it scans the whole table.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"costwatch/pkg/config"
)

// Client wraps a ClickHouse connection
type Client struct {
	conn   driver.Conn
	config *config.ClickHouseConfig
}

// NewClient connects to ClickHouse and verifies the connection
func NewClient(cfg *config.ClickHouseConfig) (*Client, error) {
	opts := &clickhouse.Options{
		Addr: cfg.GetAddresses(),
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug:    cfg.Debug,
		Protocol: cfg.GetProtocol(),
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      30 * time.Second,
		MaxOpenConns:     10,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	}

	// 只有在 Native 协议时才设置压缩，HTTP 协议不支持 LZ4 压缩
	if cfg.GetProtocol() == clickhouse.Native {
		opts.Compression = &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &Client{conn: conn, config: cfg}, nil
}

// Close closes the underlying connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Ping verifies the connection is alive
func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Query runs a parameterized query
func (c *Client) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	return c.conn.Query(ctx, query, args...)
}
