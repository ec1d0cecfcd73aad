package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// SubscriberStore remembers which chats get the daily digest.
type SubscriberStore interface {
	Upsert(ctx context.Context, sub model.Subscriber) (model.Subscriber, error)
	ChatIDs(ctx context.Context) ([]int64, error)
}

// SubscriberRepository keeps subscribers in SQLite so digests survive restarts.
type SubscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// Upsert finds the subscriber by chat id and refreshes its profile, or creates it.
func (r *SubscriberRepository) Upsert(ctx context.Context, sub model.Subscriber) (model.Subscriber, error) {
	var existing model.Subscriber
	db := r.db.WithContext(ctx)
	err := db.Where("chat_id = ?", sub.ChatID).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"first_name": sub.FirstName,
			"username":   sub.Username,
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return model.Subscriber{}, fmt.Errorf("update subscriber: %w", err)
		}
		return existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub.ID = 0
		if err := db.Create(&sub).Error; err != nil {
			return model.Subscriber{}, fmt.Errorf("create subscriber: %w", err)
		}
		return sub, nil
	default:
		return model.Subscriber{}, fmt.Errorf("find subscriber: %w", err)
	}
}

// ChatIDs lists subscribed chats in ascending order.
func (r *SubscriberRepository) ChatIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&model.Subscriber{}).Order("chat_id").Pluck("chat_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return ids, nil
}

// MemorySubscribers is the in-process SubscriberStore used with the memory driver.
// Subscriptions are lost on restart, like the tasks next to them.
type MemorySubscribers struct {
	mu   sync.Mutex
	subs map[int64]model.Subscriber
}

func NewMemorySubscribers() *MemorySubscribers {
	return &MemorySubscribers{subs: make(map[int64]model.Subscriber)}
}

func (m *MemorySubscribers) Upsert(ctx context.Context, sub model.Subscriber) (model.Subscriber, error) {
	if err := ctx.Err(); err != nil {
		return model.Subscriber{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.ChatID] = sub
	return sub, nil
}

func (m *MemorySubscribers) ChatIDs(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
