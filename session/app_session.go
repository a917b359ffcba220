// Package session keeps worker login sessions in Redis. Each session is a hash
// under app:sess:<id>; app:worker_sessions:<workerID> indexes a worker's
// session ids so they can be revoked together.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("session not found")

type AppSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAppSessionStore(rdb *redis.Client, ttl time.Duration) *AppSessionStore {
	return &AppSessionStore{rdb: rdb, ttl: ttl}
}

func (s *AppSessionStore) TTL() time.Duration { return s.ttl }

// AppSession 的字段与 Redis hash 的 field 一一对应
type AppSession struct {
	WorkerID  string `redis:"wid"`
	Role      string `redis:"role"`
	IssuedAt  int64  `redis:"iat"`
	ExpiresAt int64  `redis:"exp"`
}

func key(id string) string           { return fmt.Sprintf("app:sess:%s", id) }
func workerSetKey(wid string) string { return fmt.Sprintf("app:worker_sessions:%s", wid) }

// Create 写入会话 hash 并登记到人员索引，两者同一个 MULTI 提交
func (s *AppSessionStore) Create(ctx context.Context, workerID, role string) (string, error) {
	id := uuid.NewString()
	now := time.Now()
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key(id),
			"wid", workerID,
			"role", role,
			"iat", now.Unix(),
			"exp", now.Add(s.ttl).Unix())
		pipe.Expire(ctx, key(id), s.ttl)
		// 索引随最新会话续期
		pipe.SAdd(ctx, workerSetKey(workerID), id)
		pipe.Expire(ctx, workerSetKey(workerID), s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (s *AppSessionStore) Get(ctx context.Context, id string) (*AppSession, error) {
	cmd := s.rdb.HGetAll(ctx, key(id))
	fields, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNoSession
	}
	var as AppSession
	if err := cmd.Scan(&as); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if as.WorkerID == "" {
		return nil, ErrNoSession
	}
	return &as, nil
}

// Delete 删除单个会话；会话已不存在时不报错
func (s *AppSessionStore) Delete(ctx context.Context, id string) error {
	wid, err := s.rdb.HGet(ctx, key(id), "wid").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete session: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key(id))
		if wid != "" {
			pipe.SRem(ctx, workerSetKey(wid), id)
		}
		return nil
	})
	return err
}

// RevokeAllForWorker 撤销该人员的所有会话
func (s *AppSessionStore) RevokeAllForWorker(ctx context.Context, workerID string) error {
	ids, err := s.rdb.SMembers(ctx, workerSetKey(workerID)).Result()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, key(id))
	}
	keys = append(keys, workerSetKey(workerID))
	return s.rdb.Del(ctx, keys...).Err()
}
