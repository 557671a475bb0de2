package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bakery/internal/models"
	"bakery/internal/repository"
)

// Notifier relays order events to the external messaging platform.
// Calls return once the message is queued; delivery is best effort.
type Notifier interface {
	NotifyNewOrder(order *models.Order)
	NotifyStatusChange(orderID uint, status models.OrderStatus, chatID string)
	NotifyDigest(counts map[models.OrderStatus]int64, since time.Time)
}

// MessageSender is the transport used by the relay worker.
type MessageSender interface {
	SendTextMessage(ctx context.Context, chatID, text string) error
}

type NotificationConfig struct {
	AdminChatID    string
	QueueSize      int
	Workers        int
	SendTimeout    time.Duration
	EnqueueTimeout time.Duration
}

var statusLabels = map[models.OrderStatus]string{
	models.StatusNew:        "новый",
	models.StatusProcessing: "в обработке",
	models.StatusBaking:     "готовится",
	models.StatusReady:      "готов",
	models.StatusDelivered:  "доставлен",
	models.StatusCancelled:  "отменён",
}

// StatusLabel returns the customer-facing label of a status, or the raw code
// when there is none.
func StatusLabel(status models.OrderStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

type notificationJob struct {
	orderID *uint
	kind    models.NotificationKind
	chatID  string
	text    string
}

type NotificationService struct {
	sender MessageSender
	repo   repository.NotificationRepository
	cfg    NotificationConfig
	logger *slog.Logger

	queue   chan notificationJob
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
	stopped bool
}

func NewNotificationService(sender MessageSender, repo repository.NotificationRepository, cfg NotificationConfig, logger *slog.Logger) *NotificationService {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = 5 * time.Second
	}
	return &NotificationService{
		sender: sender,
		repo:   repo,
		cfg:    cfg,
		logger: logger.With("component", "notification_relay"),
		queue:  make(chan notificationJob, cfg.QueueSize),
	}
}

// Start launches the relay workers. Calling it more than once is a no-op.
func (s *NotificationService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true

	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	s.logger.Info("notification relay started", "workers", s.cfg.Workers, "queue_size", s.cfg.QueueSize)
}

// Stop rejects new messages, lets the workers drain the queue and waits for them.
func (s *NotificationService) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("notification relay stopped")
}

func (s *NotificationService) NotifyNewOrder(order *models.Order) {
	if s.cfg.AdminChatID == "" {
		s.logger.Debug("admin chat not configured, skipping new order notification", "order_id", order.ID)
		return
	}
	orderID := order.ID
	s.enqueue(notificationJob{
		orderID: &orderID,
		kind:    models.NotificationNewOrder,
		chatID:  s.cfg.AdminChatID,
		text:    formatNewOrderMessage(order),
	})
}

func (s *NotificationService) NotifyStatusChange(orderID uint, status models.OrderStatus, chatID string) {
	if chatID == "" {
		return
	}
	s.enqueue(notificationJob{
		orderID: &orderID,
		kind:    models.NotificationStatusChanged,
		chatID:  chatID,
		text:    formatStatusMessage(orderID, status),
	})
}

func (s *NotificationService) NotifyDigest(counts map[models.OrderStatus]int64, since time.Time) {
	if s.cfg.AdminChatID == "" {
		return
	}
	s.enqueue(notificationJob{
		kind:   models.NotificationDigest,
		chatID: s.cfg.AdminChatID,
		text:   formatDigestMessage(counts, since),
	})
}

func (s *NotificationService) enqueue(job notificationJob) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		s.logger.Warn("relay stopped, notification dropped", "kind", job.kind, "chat_id", job.chatID)
		return
	}

	select {
	case s.queue <- job:
		return
	default:
	}

	timer := time.NewTimer(s.cfg.EnqueueTimeout)
	defer timer.Stop()
	select {
	case s.queue <- job:
	case <-timer.C:
		s.logger.Warn("relay queue full, notification dropped", "kind", job.kind, "chat_id", job.chatID)
	}
}

func (s *NotificationService) worker() {
	defer s.wg.Done()
	for job := range s.queue {
		s.deliver(job)
	}
}

// deliver sends one message. Failures are logged and recorded, never retried.
func (s *NotificationService) deliver(job notificationJob) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SendTimeout)
	defer cancel()

	record := &models.Notification{
		OrderID: job.orderID,
		Kind:    job.kind,
		ChatID:  job.chatID,
		Text:    job.text,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to record notification", "kind", job.kind, "error", err)
		record = nil
	}

	logger := s.logger.With("kind", job.kind, "chat_id", job.chatID)
	if job.orderID != nil {
		logger = logger.With("order_id", *job.orderID)
	}

	if err := s.sender.SendTextMessage(ctx, job.chatID, job.text); err != nil {
		logger.Warn("notification send failed", "error", err)
		if record != nil {
			if markErr := s.repo.MarkAsFailed(ctx, record.ID, err.Error()); markErr != nil {
				logger.Error("failed to mark notification as failed", "error", markErr)
			}
		}
		return
	}

	logger.Debug("notification sent")
	if record != nil {
		if err := s.repo.MarkAsSent(ctx, record.ID); err != nil {
			logger.Error("failed to mark notification as sent", "error", err)
		}
	}
}

func formatNewOrderMessage(order *models.Order) string {
	var b strings.Builder
	b.WriteString("🔔 Новый заказ!\n\n")
	fmt.Fprintf(&b, "ID заказа: %d\n", order.ID)
	fmt.Fprintf(&b, "Клиент: %s\n", order.User.Username)
	fmt.Fprintf(&b, "Сумма: %.2f ₽\n", order.TotalPrice)
	fmt.Fprintf(&b, "Источник: %s\n", order.Source)
	b.WriteString("\nТовары:\n")
	for _, item := range order.Items {
		name := item.Product.Name
		if name == "" {
			name = fmt.Sprintf("товар #%d", item.ProductID)
		}
		fmt.Fprintf(&b, "- %s x%d (%.2f ₽)\n", name, item.Quantity, item.Price)
	}
	comment := strings.TrimSpace(order.Comment)
	if comment == "" {
		comment = "Нет"
	}
	fmt.Fprintf(&b, "\nКомментарий: %s", comment)
	return b.String()
}

func formatStatusMessage(orderID uint, status models.OrderStatus) string {
	return fmt.Sprintf("📦 Статус вашего заказа #%d изменён на: %s", orderID, StatusLabel(status))
}

func formatDigestMessage(counts map[models.OrderStatus]int64, since time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Заказы с %s\n\n", since.Format("02.01.2006 15:04"))
	var total int64
	for _, status := range models.OrderStatuses() {
		fmt.Fprintf(&b, "%s: %d\n", StatusLabel(status), counts[status])
		total += counts[status]
	}
	fmt.Fprintf(&b, "\nВсего: %d", total)
	return b.String()
}
