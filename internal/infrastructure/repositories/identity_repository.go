package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityRepositoryImpl implements domain.IdentityRepository using GORM
type IdentityRepositoryImpl struct {
	db  *gorm.DB
	now func() time.Time
}

// DBIdentity represents the database model for Identity (with GORM tags)
type DBIdentity struct {
	ID            string    `gorm:"primaryKey;size:36"`
	Email         string    `gorm:"uniqueIndex;size:255;not null"`
	FullName      string    `gorm:"size:255"`
	PictureURL    string    `gorm:"size:1024"`
	EmailVerified bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (DBIdentity) TableName() string {
	return "identities"
}

// NewIdentityRepository creates a new identity repository
func NewIdentityRepository(db *gorm.DB) domain.IdentityRepository {
	return &IdentityRepositoryImpl{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// UpsertFromOAuth implements domain.IdentityRepository.
// A new identity is created verified. An existing one only receives non-empty profile
// fields that differ, plus the verified promotion; nothing is written when nothing changed.
func (r *IdentityRepositoryImpl) UpsertFromOAuth(ctx context.Context, profile domain.OAuthProfile) (*domain.Identity, error) {
	email := normalizeEmail(profile.Email)
	if email == "" {
		return nil, domain.ErrInvalidEmail
	}
	profile.Email = email

	now := r.now()
	row := &DBIdentity{
		ID:            uuid.NewString(),
		Email:         email,
		FullName:      profile.DisplayName(),
		PictureURL:    profile.Picture,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	created, err := r.insertIfAbsent(ctx, row)
	if err != nil {
		return nil, err
	}
	if created {
		return r.dbToDomain(row), nil
	}

	existing, err := r.findOne(ctx, "email = ?", email)
	if err != nil {
		return nil, err
	}

	// a provider without a name never replaces a stored one
	updates := map[string]any{}
	name := strings.TrimSpace(profile.FullName)
	if name == "" && existing.FullName == "" {
		name = profile.DisplayName()
	}
	if name != "" && name != existing.FullName {
		updates["full_name"] = name
	}
	if profile.Picture != "" && profile.Picture != existing.PictureURL {
		updates["picture_url"] = profile.Picture
	}
	if !existing.EmailVerified {
		updates["email_verified"] = true
	}
	if len(updates) == 0 {
		return r.dbToDomain(existing), nil
	}
	updates["updated_at"] = now

	if err := r.db.WithContext(ctx).Model(&DBIdentity{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, existing.ID)
}

// CreateFromRegistration implements domain.IdentityRepository.
// Registration never takes over an existing identity, including one created through OAuth.
func (r *IdentityRepositoryImpl) CreateFromRegistration(ctx context.Context, reg domain.Registration) (*domain.Identity, error) {
	email := normalizeEmail(reg.Email)
	if email == "" {
		return nil, domain.ErrInvalidEmail
	}

	now := r.now()
	row := &DBIdentity{
		ID:            uuid.NewString(),
		Email:         email,
		FullName:      strings.TrimSpace(reg.FullName),
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	created, err := r.insertIfAbsent(ctx, row)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, domain.ErrUserAlreadyExists
	}
	return r.dbToDomain(row), nil
}

// FindByEmail implements domain.IdentityRepository
func (r *IdentityRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	row, err := r.findOne(ctx, "email = ?", normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return r.dbToDomain(row), nil
}

// FindByID implements domain.IdentityRepository
func (r *IdentityRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	row, err := r.findOne(ctx, "id = ?", id)
	if err != nil {
		return nil, err
	}
	return r.dbToDomain(row), nil
}

// MarkEmailVerified implements domain.IdentityRepository. The flag only ever moves to true.
func (r *IdentityRepositoryImpl) MarkEmailVerified(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	res := r.db.WithContext(ctx).Model(&DBIdentity{}).
		Where("email = ? AND email_verified = ?", email, false).
		Updates(map[string]any{"email_verified": true, "updated_at": r.now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	_, err := r.findOne(ctx, "email = ?", email)
	return err
}

// insertIfAbsent relies on the unique email index so concurrent writers get exactly one winner
func (r *IdentityRepositoryImpl) insertIfAbsent(ctx context.Context, row *DBIdentity) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *IdentityRepositoryImpl) findOne(ctx context.Context, query string, arg any) (*DBIdentity, error) {
	var row DBIdentity
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &row, nil
}

// dbToDomain converts database identity to domain identity
func (r *IdentityRepositoryImpl) dbToDomain(row *DBIdentity) *domain.Identity {
	return &domain.Identity{
		ID:            row.ID,
		Email:         row.Email,
		FullName:      row.FullName,
		PictureURL:    row.PictureURL,
		EmailVerified: row.EmailVerified,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
