package network

import (
	"sync"

	"tower-server/pkg/api"
	"tower-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Размер личного буфера подписчика. Медленный клиент пропускает кадры.
const subscriberBuffer = 64

// Broadcaster занимается только рассылкой снимков подписчикам
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: ID подписчика (ULID соединения) -> Личный канал
	subscribers map[string]chan api.ServerResponse
	// Последний разосланный снимок: новый подписчик получает его сразу
	last *api.ServerResponse

	log *logrus.Entry
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan api.ServerResponse),
		log:         logger.Log.WithFields(logrus.Fields{"component": "hub"}),
	}
}

// Register создает личный канал подписчика
func (b *Broadcaster) Register(id string) <-chan api.ServerResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[id]; ok {
		close(old)
	}

	ch := make(chan api.ServerResponse, subscriberBuffer)
	if b.last != nil {
		ch <- *b.last
	}
	b.subscribers[id] = ch

	b.log.WithFields(logrus.Fields{"subscriber": id, "total": len(b.subscribers)}).Info("Subscriber registered")
	return ch
}

// Unregister удаляет подписчика и закрывает его канал
func (b *Broadcaster) Unregister(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
		b.log.WithField("subscriber", id).Info("Subscriber removed")
	}
}

// SendTo отправляет сообщение одному подписчику (ошибки команды)
func (b *Broadcaster) SendTo(id string, msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ch, ok := b.subscribers[id]; ok {
		b.offer(id, ch, msg)
	}
}

// Broadcast отправляет снимок всем подписчикам
func (b *Broadcaster) Broadcast(msg api.ServerResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last = &msg
	for id, ch := range b.subscribers {
		b.offer(id, ch, msg)
	}
}

func (b *Broadcaster) offer(id string, ch chan api.ServerResponse, msg api.ServerResponse) {
	select {
	case ch <- msg:
	default:
		b.log.WithField("subscriber", id).Debug("Channel full, message dropped")
	}
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
