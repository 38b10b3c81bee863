package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/metrics"
)

type Sender interface {
	DialAndSend(messages ...*mail.Msg) error
}

type Renderer interface {
	Render(message domain.MailMessage) (*mail.Msg, error)
}

// Outcome 表示一条消息处理完之后应该如何确认
type Outcome int

const (
	OutcomeAck     Outcome = iota // 发送成功
	OutcomeDrop                   // 消息本身有问题，重试也没有用
	OutcomeRequeue                // 发送失败，重新入队
)

type Worker struct {
	sender   Sender
	renderer Renderer
}

func NewWorker(sender Sender, renderer Renderer) *Worker {
	return &Worker{
		sender:   sender,
		renderer: renderer,
	}
}

func (w *Worker) Handle(body []byte) Outcome {
	message := domain.MailMessage{}
	if err := json.Unmarshal(body, &message); err != nil {
		slog.Error("邮件信息反序列化失败", "error", err)
		metrics.MailsHandled.WithLabelValues("unknown", "dropped").Inc()
		return OutcomeDrop
	}

	m, err := w.renderer.Render(message)
	if err != nil {
		slog.Error("无法构建邮件", "type", message.Type, "error", err)
		metrics.MailsHandled.WithLabelValues(message.Type, "dropped").Inc()
		return OutcomeDrop
	}

	if err := w.sender.DialAndSend(m); err != nil {
		slog.Error("邮件发送失败", "type", message.Type, "to", message.To, "error", err)
		metrics.MailsHandled.WithLabelValues(message.Type, "requeued").Inc()
		return OutcomeRequeue
	}

	slog.Info("邮件发送成功", "type", message.Type, "to", message.To)
	metrics.MailsHandled.WithLabelValues(message.Type, "sent").Inc()
	return OutcomeAck
}

// Run 持续消费消息，直到 ctx 被取消或者通道被关闭
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("消息通道已关闭")
			}

			var err error
			switch w.Handle(msg.Body) {
			case OutcomeAck:
				err = msg.Ack(false)
			case OutcomeDrop:
				err = msg.Nack(false, false)
			case OutcomeRequeue:
				err = msg.Nack(false, true)
			}
			if err != nil {
				slog.Error("无法确认消息", "error", err)
			}
		}
	}
}

// Consume 在队列上注册一个消费者，消息需要手动确认
func Consume(ch *amqp.Channel, queue string) (<-chan amqp.Delivery, error) {
	return ch.Consume(
		queue,
		"",    // 由 RabbitMQ 分配消费者标识
		false, // 手动确认
		false,
		false,
		false,
		nil,
	)
}
