package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/redis/go-redis/v9"
)

// createOTPScript stores the record only when no live one exists for the key.
// ARGV: id, email, code_hash, purpose, expires_at_ms, ttl_ms, now_ms
var createOTPScript = redis.NewScript(`
local exp = redis.call('HGET', KEYS[1], 'expires_at')
if exp and tonumber(exp) > tonumber(ARGV[7]) then
  return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], 'id', ARGV[1], 'email', ARGV[2], 'code_hash', ARGV[3],
  'purpose', ARGV[4], 'expires_at', ARGV[5], 'attempts', 0)
redis.call('PEXPIRE', KEYS[1], ARGV[6])
return 1
`)

// recordAttemptScript consumes one attempt before the caller compares codes.
// ARGV: now_ms, max_attempts
var recordAttemptScript = redis.NewScript(`
local h = redis.call('HGETALL', KEYS[1])
if #h == 0 then
  return {'missing'}
end
local rec = {}
for i = 1, #h, 2 do
  rec[h[i]] = h[i + 1]
end
if tonumber(rec['expires_at']) <= tonumber(ARGV[1]) then
  redis.call('DEL', KEYS[1])
  return {'expired'}
end
if tonumber(rec['attempts']) >= tonumber(ARGV[2]) then
  redis.call('DEL', KEYS[1])
  return {'exhausted'}
end
local attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
return {'ok', rec['id'], rec['email'], rec['code_hash'], rec['purpose'], rec['expires_at'], tostring(attempts)}
`)

// consumeOTPScript deletes the record only if it is still the one identified by ARGV[1]
var consumeOTPScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'id') == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// OTPRepositoryImpl implements domain.OTPStore using Redis hashes and Lua scripts
type OTPRepositoryImpl struct {
	client *redis.Client
	prefix string
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(client *redis.Client) domain.OTPStore {
	return &OTPRepositoryImpl{
		client: client,
		prefix: "otp:",
	}
}

// Create implements domain.OTPStore. The issue time is taken as ExpiresAt minus ttl.
func (r *OTPRepositoryImpl) Create(ctx context.Context, record *domain.OTPRecord, ttl time.Duration) error {
	issuedAt := record.ExpiresAt.Add(-ttl)
	created, err := createOTPScript.Run(ctx, r.client, []string{r.key(record.Email)},
		record.ID,
		record.Email,
		record.CodeHash,
		string(record.Purpose),
		record.ExpiresAt.UnixMilli(),
		ttl.Milliseconds(),
		issuedAt.UnixMilli(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to create otp: %w", err)
	}
	if created == 0 {
		return domain.ErrOTPAlreadyPending
	}
	return nil
}

// RecordAttempt implements domain.OTPStore
func (r *OTPRepositoryImpl) RecordAttempt(ctx context.Context, email string, now time.Time, maxAttempts int) (*domain.OTPRecord, error) {
	res, err := recordAttemptScript.Run(ctx, r.client, []string{r.key(email)}, now.UnixMilli(), maxAttempts).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to record otp attempt: %w", err)
	}
	if len(res) == 0 {
		return nil, errors.New("empty otp attempt result")
	}

	switch res[0] {
	case "missing":
		return nil, domain.ErrOTPNotFound
	case "expired":
		return nil, domain.ErrOTPExpired
	case "exhausted":
		return nil, domain.ErrOTPMaxAttempts
	case "ok":
		if len(res) != 7 {
			return nil, fmt.Errorf("malformed otp attempt result: %d fields", len(res))
		}
		return parseOTPFields(map[string]string{
			"id":         res[1],
			"email":      res[2],
			"code_hash":  res[3],
			"purpose":    res[4],
			"expires_at": res[5],
			"attempts":   res[6],
		})
	default:
		return nil, fmt.Errorf("unexpected otp attempt status %q", res[0])
	}
}

// Consume implements domain.OTPStore
func (r *OTPRepositoryImpl) Consume(ctx context.Context, email, recordID string) (bool, error) {
	n, err := consumeOTPScript.Run(ctx, r.client, []string{r.key(email)}, recordID).Int()
	if err != nil {
		return false, fmt.Errorf("failed to consume otp: %w", err)
	}
	return n == 1, nil
}

// Get implements domain.OTPStore
func (r *OTPRepositoryImpl) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	fields, err := r.client.HGetAll(ctx, r.key(email)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrOTPNotFound
	}
	return parseOTPFields(fields)
}

// Delete implements domain.OTPStore
func (r *OTPRepositoryImpl) Delete(ctx context.Context, email string) error {
	return r.client.Del(ctx, r.key(email)).Err()
}

func (r *OTPRepositoryImpl) key(email string) string {
	return r.prefix + email
}

func parseOTPFields(fields map[string]string) (*domain.OTPRecord, error) {
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid otp expires_at: %w", err)
	}
	attempts, err := strconv.Atoi(fields["attempts"])
	if err != nil {
		return nil, fmt.Errorf("invalid otp attempts: %w", err)
	}
	return &domain.OTPRecord{
		ID:        fields["id"],
		Email:     fields["email"],
		CodeHash:  fields["code_hash"],
		Purpose:   domain.OTPPurpose(fields["purpose"]),
		ExpiresAt: time.UnixMilli(expiresAt).UTC(),
		Attempts:  attempts,
	}, nil
}
