package framework

import (
	"time"

	"catering/internal/app/infra/mq/lmstfy"
)

// MessageSource 消息源接口（适配不同 MQ）
type MessageSource interface {
	// Consume 消费消息（阻塞，直到拉取到消息或超时）
	Consume(queue string, timeout time.Duration, ttr time.Duration) (*lmstfy.Message, error)

	// Ack 确认消息（删除消息）
	Ack(queue string, jobID string) error
}
