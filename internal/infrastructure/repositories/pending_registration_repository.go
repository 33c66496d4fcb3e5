package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/redis/go-redis/v9"
)

// PendingRegistrationRepositoryImpl implements domain.PendingRegistrationStore using Redis
type PendingRegistrationRepositoryImpl struct {
	client *redis.Client
	prefix string
}

// NewPendingRegistrationRepository creates a new pending registration store
func NewPendingRegistrationRepository(client *redis.Client) domain.PendingRegistrationStore {
	return &PendingRegistrationRepositoryImpl{
		client: client,
		prefix: "pending_registration:",
	}
}

// Save implements domain.PendingRegistrationStore. An existing record is never replaced;
// the second writer gets domain.ErrOTPAlreadyPending.
func (r *PendingRegistrationRepositoryImpl) Save(ctx context.Context, pending *domain.PendingRegistration, ttl time.Duration) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending registration: %w", err)
	}
	created, err := r.client.SetNX(ctx, r.prefix+pending.Email, data, ttl).Result()
	if err != nil {
		return err
	}
	if !created {
		return domain.ErrOTPAlreadyPending
	}
	return nil
}

// Take implements domain.PendingRegistrationStore. The record is gone after a successful read.
func (r *PendingRegistrationRepositoryImpl) Take(ctx context.Context, email string) (*domain.PendingRegistration, error) {
	data, err := r.client.GetDel(ctx, r.prefix+email).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrRegistrationExpired
		}
		return nil, err
	}

	var pending domain.PendingRegistration
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending registration: %w", err)
	}
	return &pending, nil
}

// Delete implements domain.PendingRegistrationStore
func (r *PendingRegistrationRepositoryImpl) Delete(ctx context.Context, email string) error {
	return r.client.Del(ctx, r.prefix+email).Err()
}
