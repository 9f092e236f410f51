package constants

import "time"

const (
	// JobCacheDuration 岗位缓存默认过期时间
	JobCacheDuration = 24 * time.Hour
)
