package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/logger"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/storage"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/storage/models"
)

// StartScoringConsumers 声明消息拓扑并启动评分队列的消费者
// 返回各worker的停止通道，关闭即停止对应消费者
func StartScoringConsumers(svc ScoreService, storageManager *storage.Storage, cfg *config.Config) ([]chan<- struct{}, error) {
	if storageManager == nil || storageManager.RabbitMQ == nil {
		return nil, fmt.Errorf("RabbitMQ未初始化，无法启动评分消费者")
	}

	if err := storageManager.RabbitMQ.SetupScoringTopology(); err != nil {
		return nil, fmt.Errorf("声明评分消息拓扑失败: %w", err)
	}

	workers := cfg.RabbitMQ.ScoringWorkers
	if workers <= 0 {
		workers = 1
	}
	// 单条消息的处理上限，覆盖下载、提取和评分全程
	messageTimeout := config.GetDuration(cfg.Scoring.Timeout, 30*time.Second)
	// 失败消息重新入队前的等待，避免瞬态故障下的热循环
	retryInterval := config.GetDuration(cfg.RabbitMQ.RetryInterval, 5*time.Second)
	maxRetries := cfg.RabbitMQ.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	stops := make([]chan<- struct{}, 0, workers)
	for i := 0; i < workers; i++ {
		stop, err := storageManager.RabbitMQ.StartConsumer(
			cfg.RabbitMQ.ScoringQueue,
			cfg.RabbitMQ.PrefetchCount,
			func(body []byte) bool {
				var message storage.ResumeUploadMessage
				if err := json.Unmarshal(body, &message); err != nil {
					// 格式错误的消息重试也无法解析，确认后丢弃
					logger.Error().Err(err).Msg("上传消息反序列化失败，丢弃消息")
					return true
				}

				ctx, cancel := context.WithTimeout(logger.WithContext(context.Background()), messageTimeout)
				defer cancel()

				if err := svc.ProcessUploadedResume(ctx, message); err != nil {
					log := logger.Error().Err(err).Str("submission_uuid", message.SubmissionUUID)

					// 超过重试上限的消息标记失败并确认，防止毒消息无限循环
					// 处理超时的情况下ctx已经结束，兜底操作用不继承取消的上下文
					cleanupCtx := context.WithoutCancel(ctx)
					if storageManager.Redis != nil {
						attempts, cntErr := storageManager.Redis.IncrementScoreRetry(cleanupCtx, message.SubmissionUUID)
						if cntErr == nil && attempts >= int64(maxRetries) {
							log.Int64("attempts", attempts).Msg("处理上传消息失败且重试次数超限，标记评分失败")
							if storageManager.MySQL != nil {
								if updErr := storageManager.MySQL.UpdateResumeProcessingFailure(
									cleanupCtx, message.SubmissionUUID, models.StatusScoringFailed,
									fmt.Sprintf("重试%d次后仍然失败: %v", attempts, err)); updErr != nil {
									logger.Error().Err(updErr).Msg("标记评分失败状态出错")
								}
							}
							return true
						}
					}

					log.Msg("处理上传消息失败，消息将重新入队")
					time.Sleep(retryInterval)
					return false
				}
				return true
			},
		)
		if err != nil {
			// 已启动的worker由调用方通过返回的通道停止
			for _, s := range stops {
				close(s)
			}
			return nil, fmt.Errorf("启动评分消费者失败: %w", err)
		}
		stops = append(stops, stop)
	}

	logger.Info().Int("workers", workers).Str("queue", cfg.RabbitMQ.ScoringQueue).Msg("评分消费者已全部启动")
	return stops, nil
}
