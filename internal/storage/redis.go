package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/constants"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/tracing"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/types"
)

// ErrNotFound key不存在时返回，封装底层的 redis.Nil
var ErrNotFound = redis.Nil

var redisTracer = otel.Tracer("resume-scorer/storage/redis")

// Redis操作按key前缀的采样率配置，高频低价值操作降采样
var redisKeySamplingRates = map[string]float64{
	"app:file:":  0.05, // MD5去重操作量大，采样5%
	"app:job:":   0.25,
	"app:score:": 0.25,
}

var (
	rnd      *rand.Rand
	rndMutex sync.Mutex
)

func init() {
	rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// shouldSampleRedisOp 根据key前缀决定是否创建span
func shouldSampleRedisOp(key string) bool {
	if key == "" {
		return false
	}
	for prefix, rate := range redisKeySamplingRates {
		if strings.HasPrefix(key, prefix) {
			return randFloat() < rate
		}
	}
	return randFloat() < 0.05
}

func randFloat() float64 {
	rndMutex.Lock()
	defer rndMutex.Unlock()
	return rnd.Float64()
}

// Redis 封装Redis客户端
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端连接
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis配置不能为空")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis地址不能为空")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,

		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute,
	}

	client := redis.NewClient(opt)

	// OpenTelemetry钩子，记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("为Redis注册OpenTelemetry钩子失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("连接Redis失败 %s: %w", cfg.Address, err)
	}

	return &Redis{Client: client, config: cfg}, nil
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping 检查Redis连接
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	return r.Client.Ping(ctx).Err()
}

// GetMD5ExpireDuration 返回配置的MD5记录过期时间
func (r *Redis) GetMD5ExpireDuration() time.Duration {
	days := r.config.MD5RecordExpireDays
	if days <= 0 {
		days = 365
	}
	return time.Duration(days) * 24 * time.Hour
}

// GetJobCacheDuration 返回配置的岗位缓存过期时间
func (r *Redis) GetJobCacheDuration() time.Duration {
	hours := r.config.JobCacheExpireHours
	if hours <= 0 {
		return constants.JobCacheDuration
	}
	return time.Duration(hours) * time.Hour
}

// CheckAndAddRawFileMD5 原子地检查并添加原始文件MD5，返回之前是否已存在
func (r *Redis) CheckAndAddRawFileMD5(ctx context.Context, md5Hex string) (bool, error) {
	return r.checkAndAddMD5(ctx, constants.KeyFileMD5Set, md5Hex)
}

// CheckAndAddParsedTextMD5 原子地检查并添加解析文本MD5，返回之前是否已存在
func (r *Redis) CheckAndAddParsedTextMD5(ctx context.Context, md5Hex string) (bool, error) {
	return r.checkAndAddMD5(ctx, constants.KeyTextMD5Set, md5Hex)
}

// checkAndAddMD5 用Lua脚本原子地完成SISMEMBER+SADD+EXPIRE
func (r *Redis) checkAndAddMD5(ctx context.Context, setKey string, md5Hex string) (exists bool, err error) {
	ctx, span := redisTracer.Start(ctx, "Redis.CheckAndAddMD5",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("net.peer.name", r.config.Address),
		attribute.String("db.operation", "EVAL"),
		attribute.String("db.redis.key", setKey),
	)

	if r.Client == nil {
		err = fmt.Errorf("redis客户端未初始化")
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, err
	}

	script := `
		local exists = redis.call('SISMEMBER', KEYS[1], ARGV[1])
		redis.call('SADD', KEYS[1], ARGV[1])
		redis.call('EXPIRE', KEYS[1], ARGV[2])
		return exists
	`
	expiry := r.GetMD5ExpireDuration().Seconds()

	res, err := r.Client.Eval(ctx, script, []string{setKey}, md5Hex, expiry).Result()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, fmt.Errorf("执行原子检查和添加操作失败: %w", err)
	}

	existsVal, ok := res.(int64)
	if !ok {
		err = fmt.Errorf("意外的Redis返回类型: %T", res)
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, err
	}

	exists = existsVal == 1
	span.SetAttributes(attribute.Bool("already_exists", exists))
	span.SetStatus(codes.Ok, "")
	return exists, nil
}

// RemoveRawFileMD5 从去重集合中移除原始文件MD5（处理失败后回滚用）
func (r *Redis) RemoveRawFileMD5(ctx context.Context, md5Hex string) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	if err := r.Client.SRem(ctx, constants.KeyFileMD5Set, md5Hex).Err(); err != nil {
		return fmt.Errorf("从集合中移除MD5失败: %w", err)
	}
	return nil
}

// SetFileMD5Submission 记录文件MD5到SubmissionUUID的映射
func (r *Redis) SetFileMD5Submission(ctx context.Context, md5Hex string, submissionUUID string) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	mapKey := fmt.Sprintf(constants.KeyFileMD5ToSubmissionUUID, md5Hex)
	return r.Client.Set(ctx, mapKey, submissionUUID, r.GetMD5ExpireDuration()).Err()
}

// GetFileMD5Submission 查询文件MD5对应的SubmissionUUID，不存在时返回ErrNotFound
func (r *Redis) GetFileMD5Submission(ctx context.Context, md5Hex string) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis客户端未初始化")
	}
	mapKey := fmt.Sprintf(constants.KeyFileMD5ToSubmissionUUID, md5Hex)
	return r.Client.Get(ctx, mapKey).Result()
}

// SetJobRequirement 缓存岗位要求（JSON序列化）
func (r *Redis) SetJobRequirement(ctx context.Context, jobID string, req *types.JobRequirement) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("序列化岗位要求失败: %w", err)
	}
	key := fmt.Sprintf(constants.KeyJobRequirement, jobID)
	return r.Client.Set(ctx, key, data, r.GetJobCacheDuration()).Err()
}

// GetJobRequirement 读取岗位要求缓存，未命中时返回ErrNotFound
func (r *Redis) GetJobRequirement(ctx context.Context, jobID string) (*types.JobRequirement, error) {
	if r.Client == nil {
		return nil, fmt.Errorf("redis客户端未初始化")
	}
	key := fmt.Sprintf(constants.KeyJobRequirement, jobID)
	data, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		return nil, err // 包括 redis.Nil
	}

	var req types.JobRequirement
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return nil, fmt.Errorf("反序列化岗位要求缓存失败: %w", err)
	}
	return &req, nil
}

// InvalidateJobRequirement 删除岗位要求缓存（岗位更新后调用）
func (r *Redis) InvalidateJobRequirement(ctx context.Context, jobID string) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	key := fmt.Sprintf(constants.KeyJobRequirement, jobID)
	return r.Client.Del(ctx, key).Err()
}

// CacheScoreReport 缓存评分报告JSON
func (r *Redis) CacheScoreReport(ctx context.Context, submissionUUID string, reportJSON string, ttl time.Duration) error {
	key := fmt.Sprintf(constants.KeyScoreReport, submissionUUID)
	return r.Set(ctx, key, reportJSON, ttl)
}

// GetCachedScoreReport 读取评分报告缓存，未命中时返回ErrNotFound
func (r *Redis) GetCachedScoreReport(ctx context.Context, submissionUUID string) (string, error) {
	key := fmt.Sprintf(constants.KeyScoreReport, submissionUUID)
	return r.Get(ctx, key)
}

// Get 获取键的值，按前缀采样创建span
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis客户端未初始化")
	}

	var span trace.Span
	if shouldSampleRedisOp(key) {
		ctx, span = redisTracer.Start(ctx, "Redis.Get", trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()

		span.SetAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", "GET"),
			attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
		)
	}

	val, err := r.Client.Get(ctx, key).Result()

	if span != nil {
		if err != nil {
			// key不存在不算错误
			if err == redis.Nil {
				span.SetStatus(codes.Ok, "key not found")
				span.SetAttributes(attribute.Bool("db.redis.key_exists", false))
			} else {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return "", err
		}
		span.SetAttributes(
			attribute.Bool("db.redis.key_exists", true),
			attribute.Int("db.redis.value_length", len(val)),
		)
		span.SetStatus(codes.Ok, "")
	}

	return val, err
}

// Set 设置键的值，按前缀采样创建span
func (r *Redis) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	var span trace.Span
	if shouldSampleRedisOp(key) {
		ctx, span = redisTracer.Start(ctx, "Redis.Set", trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()

		span.SetAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", "SET"),
			attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
			attribute.Int("db.redis.value_length", len(value)),
		)
		if expiration > 0 {
			span.SetAttributes(attribute.Int64("db.redis.expiration_ms", expiration.Milliseconds()))
		}
	}

	err := r.Client.Set(ctx, key, value, expiration).Err()

	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		span.SetStatus(codes.Ok, "")
	}

	return err
}

// IncrementScoreRetry 递增一份提交的消费重试计数并返回当前值
// 计数24小时后自动过期，避免残留
func (r *Redis) IncrementScoreRetry(ctx context.Context, submissionUUID string) (int64, error) {
	if r.Client == nil {
		return 0, fmt.Errorf("redis客户端未初始化")
	}
	key := fmt.Sprintf(constants.KeyScoreRetry, submissionUUID)
	count, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.Client.Expire(ctx, key, 24*time.Hour).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// AcquireLock 尝试获取一个分布式锁，成功时返回锁持有者标识，失败时返回空串
func (r *Redis) AcquireLock(ctx context.Context, lockKey string, expiration time.Duration) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis客户端未初始化")
	}
	lockValue := fmt.Sprintf("%d", time.Now().UnixNano())
	ok, err := r.Client.SetNX(ctx, lockKey, lockValue, expiration).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return lockValue, nil
	}
	return "", nil
}

// ReleaseLock 释放分布式锁，用Lua脚本保证只有持有者能释放
func (r *Redis) ReleaseLock(ctx context.Context, lockKey string, lockValue string) (bool, error) {
	if r.Client == nil {
		return false, fmt.Errorf("redis客户端未初始化")
	}
	script := `
        if redis.call("get", KEYS[1]) == ARGV[1] then
            return redis.call("del", KEYS[1])
        else
            return 0
        end
    `
	res, err := r.Client.Eval(ctx, script, []string{lockKey}, lockValue).Result()
	if err != nil {
		return false, err
	}
	if released, ok := res.(int64); ok && released == 1 {
		return true, nil
	}
	return false, nil
}
