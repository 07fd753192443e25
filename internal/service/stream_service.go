package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/girmmy/gimmyai/internal/domain"
	"github.com/girmmy/gimmyai/internal/repository"
)

// ChangeFeed notifica cambios por conversación. Publish se llama después de
// cada append; Subscribe entrega una senal por cada cambio publicado.
type ChangeFeed interface {
	Publish(ctx context.Context, conversationID string) error
	Subscribe(ctx context.Context, conversationID string) (<-chan struct{}, func(), error)
}

const changeFeedChannelPrefix = "conv:changed:"

// RedisChangeFeed implementa ChangeFeed sobre pub/sub de redis, de modo que
// varias instancias del API comparten las notificaciones.
type RedisChangeFeed struct {
	client *redis.Client
}

func NewRedisChangeFeed(client *redis.Client) *RedisChangeFeed {
	if client == nil {
		return nil
	}
	return &RedisChangeFeed{client: client}
}

func (f *RedisChangeFeed) Publish(ctx context.Context, conversationID string) error {
	if f == nil || f.client == nil {
		return nil
	}
	return f.client.Publish(ctx, changeFeedChannelPrefix+conversationID, "changed").Err()
}

func (f *RedisChangeFeed) Subscribe(ctx context.Context, conversationID string) (<-chan struct{}, func(), error) {
	if f == nil || f.client == nil {
		return nil, nil, fmt.Errorf("change feed not configured")
	}
	pubsub := f.client.Subscribe(ctx, changeFeedChannelPrefix+conversationID)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	notify := make(chan struct{}, 1)
	go func() {
		for range pubsub.Channel() {
			select {
			case notify <- struct{}{}:
			default:
				// Ya hay una senal pendiente; el snapshot siguiente la absorbe.
			}
		}
		close(notify)
	}()

	return notify, func() { pubsub.Close() }, nil
}

// MemoryChangeFeed es la variante en proceso, usada cuando no hay redis
// configurado y en tests.
type MemoryChangeFeed struct {
	mu   sync.Mutex
	subs map[string][]chan struct{}
}

func NewMemoryChangeFeed() *MemoryChangeFeed {
	return &MemoryChangeFeed{subs: make(map[string][]chan struct{})}
}

func (f *MemoryChangeFeed) Publish(_ context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[conversationID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (f *MemoryChangeFeed) Subscribe(_ context.Context, conversationID string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	f.subs[conversationID] = append(f.subs[conversationID], ch)
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subs[conversationID]
		for i, c := range subs {
			if c == ch {
				f.subs[conversationID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	return ch, cancel, nil
}

// StreamService entrega el feed en vivo de una conversación: snapshot completo
// ordenado inmediatamente, y de nuevo tras cada notificación de cambio.
type StreamService struct {
	messages repository.MessageRepository
	feed     ChangeFeed
}

func NewStreamService(messages repository.MessageRepository, feed ChangeFeed) *StreamService {
	return &StreamService{messages: messages, feed: feed}
}

// Stream emite la lista completa de mensajes (con el mensaje de bienvenida
// sintético al frente) en cada cambio. Se cierra al cancelar el contexto.
func (s *StreamService) Stream(ctx context.Context, conversationID string) (<-chan []domain.Message, error) {
	notify, stop, err := s.feed.Subscribe(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.snapshot(ctx, conversationID)
	if err != nil {
		stop()
		return nil, err
	}

	out := make(chan []domain.Message, 1)
	out <- snapshot

	go func() {
		defer close(out)
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-notify:
				if !ok {
					return
				}
				snap, err := s.snapshot(ctx, conversationID)
				if err != nil {
					// La próxima notificación reintenta; el cliente conserva
					// el último snapshot bueno.
					continue
				}
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (s *StreamService) snapshot(ctx context.Context, conversationID string) ([]domain.Message, error) {
	messages, err := s.messages.ListByConversationID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	out := make([]domain.Message, 0, len(messages)+1)
	out = append(out, domain.WelcomeMessage(conversationID))
	out = append(out, messages...)
	return out, nil
}
