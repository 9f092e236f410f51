package outbox

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/logger"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/storage"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/storage/models"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/tracing"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultBatchSize    = 50
	defaultMaxRetries   = 5
)

// MessageRelay 轮询outbox表并把待发布消息投递到RabbitMQ
// 与评分事务同库落盘的事件经由中继发布，保证业务状态与事件的最终一致
type MessageRelay struct {
	db           *gorm.DB
	publisher    *storage.RabbitMQ
	pollInterval time.Duration
	batchSize    int
	maxRetries   int
	done         chan struct{}
	tracer       trace.Tracer
}

// NewMessageRelay 创建消息中继，配置缺省值兜底
func NewMessageRelay(db *gorm.DB, publisher *storage.RabbitMQ, cfg *config.OutboxConfig) *MessageRelay {
	relay := &MessageRelay{
		db:           db,
		publisher:    publisher,
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
		maxRetries:   defaultMaxRetries,
		done:         make(chan struct{}),
		tracer:       otel.Tracer("outbox-relay"),
	}
	if cfg != nil {
		if d := config.GetDuration(cfg.PollInterval, 0); d > 0 {
			relay.pollInterval = d
		}
		if cfg.BatchSize > 0 {
			relay.batchSize = cfg.BatchSize
		}
		if cfg.MaxRetries > 0 {
			relay.maxRetries = cfg.MaxRetries
		}
	}
	return relay
}

// Start 启动后台轮询
func (r *MessageRelay) Start() {
	logger.Info().
		Dur("poll_interval", r.pollInterval).
		Int("batch_size", r.batchSize).
		Msg("outbox消息中继启动")
	ticker := time.NewTicker(r.pollInterval)

	go func() {
		for {
			select {
			case <-r.done:
				ticker.Stop()
				logger.Info().Msg("outbox消息中继已停止")
				return
			case <-ticker.C:
				if err := r.processPendingMessages(context.Background()); err != nil {
					logger.Error().Err(err).Msg("处理outbox待发布消息失败")
				}
			}
		}
	}()
}

// Stop 优雅停止中继
func (r *MessageRelay) Stop() {
	close(r.done)
}

// processPendingMessages 取一批PENDING消息发布并更新状态
// FOR UPDATE SKIP LOCKED让多实例部署时互不争抢同一批消息
func (r *MessageRelay) processPendingMessages(ctx context.Context) error {
	var messages []models.OutboxMessage

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", models.OutboxStatusPending).
		Order("created_at asc").
		Limit(r.batchSize).
		Find(&messages).Error
	if err != nil {
		return err
	}

	// 空轮询不建span
	if len(messages) == 0 {
		return tx.Commit().Error
	}

	ctx, span := r.tracer.Start(ctx, "outbox.ProcessBatch",
		trace.WithAttributes(
			attribute.Int("messaging.batch.message_count", len(messages)),
		),
	)
	defer span.End()

	logger.Debug().Int("count", len(messages)).Msg("取到待发布的outbox消息")

	for _, msg := range messages {
		err := r.publisher.PublishMessage(
			ctx,
			msg.TargetExchange,
			msg.TargetRoutingKey,
			[]byte(msg.Payload),
			true,
		)

		if err != nil {
			logger.Warn().
				Err(err).
				Uint64("message_id", msg.ID).
				Str("aggregate_id", msg.AggregateID).
				Int("retry_count", msg.RetryCount+1).
				Msg("发布outbox消息失败")
			tracing.RecordRabbitMQNack(span, msg.AggregateID, err.Error())
			msg.RetryCount++
			msg.ErrorMessage = err.Error()
			if msg.RetryCount >= r.maxRetries {
				msg.Status = models.OutboxStatusFailed
			}
		} else {
			msg.Status = models.OutboxStatusSent
			now := time.Now()
			msg.ProcessedAt = &now
			msg.ErrorMessage = ""
		}

		// 更新失败则整批回滚，下一轮重新拾取
		if err := tx.Save(&msg).Error; err != nil {
			span.RecordError(err)
			return err
		}
	}

	return tx.Commit().Error
}
