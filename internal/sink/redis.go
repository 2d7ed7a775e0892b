package sink

import (
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

// RedisWriter pushes record lines onto a Redis list.
type RedisWriter struct {
	pool *redis.Pool
	key  string
}

// NewRedisWriter dials addr lazily; auth may be empty.
func NewRedisWriter(addr, auth, key string) *RedisWriter {
	return NewRedisWriterPool(&redis.Pool{
		MaxIdle:     2,
		IdleTimeout: time.Minute,
		Dial: func() (redis.Conn, error) {
			return redisDial(addr, auth)
		},
	}, key)
}

// NewRedisWriterPool uses an existing pool.
func NewRedisWriterPool(pool *redis.Pool, key string) *RedisWriter {
	return &RedisWriter{pool: pool, key: key}
}

func redisDial(addr, auth string) (redis.Conn, error) {
	conn, err := redis.Dial("tcp", addr, redis.DialConnectTimeout(5*time.Second))
	if err != nil {
		return nil, err
	}
	if auth != "" {
		res, err := redis.String(conn.Do("AUTH", auth))
		if err != nil {
			conn.Close()
			return nil, err
		}
		if res != "OK" {
			conn.Close()
			return nil, fmt.Errorf("redis auth: expected 'OK', got '%s'", res)
		}
	}
	return conn, nil
}

// Ping checks that the server is reachable.
func (rw *RedisWriter) Ping() error {
	conn := rw.pool.Get()
	defer conn.Close()
	_, err := conn.Do("PING")
	return err
}

func (rw *RedisWriter) WriteLine(line string) error {
	conn := rw.pool.Get()
	defer conn.Close()
	if _, err := redis.Int(conn.Do("RPUSH", rw.key, line)); err != nil {
		return fmt.Errorf("rpush %s: %w", rw.key, err)
	}
	return nil
}

func (rw *RedisWriter) Close() error {
	return rw.pool.Close()
}
