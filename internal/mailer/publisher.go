package mailer

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

// Publisher 把邮件放入消息队列，由 mail worker 负责真正发送
type Publisher interface {
	Publish(ctx context.Context, message domain.MailMessage) error
}

type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type QueuePublisher struct {
	ch      Channel
	queue   string
	timeout time.Duration
}

func NewQueuePublisher(ch Channel, queue string, timeout time.Duration) *QueuePublisher {
	return &QueuePublisher{
		ch:      ch,
		queue:   queue,
		timeout: timeout,
	}
}

func (p *QueuePublisher) Publish(ctx context.Context, message domain.MailMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// DeclareQueue 声明持久化的邮件队列
func DeclareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // 持久化
		false, // 不自动删除
		false, // 不独占
		false, // 等待确认
		nil,
	)
	return err
}
