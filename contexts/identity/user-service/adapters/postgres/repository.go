package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainerrors "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/domain/errors"
	"github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/ports"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// Models returns the row models this repository owns, for schema migration.
func Models() []any {
	return []any{&userModel{}}
}

func (r *Repository) CreateUser(ctx context.Context, user ports.User) (ports.User, error) {
	row := userModelFromEntity(user)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.User{}, domainerrors.ErrEmailTaken
		}
		return ports.User{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (ports.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, domainerrors.ErrUserNotFound
		}
		return ports.User{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (ports.User, bool, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, false, nil
		}
		return ports.User{}, false, err
	}
	return row.toEntity(), true, nil
}

type userModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (userModel) TableName() string {
	return "users"
}

func userModelFromEntity(user ports.User) userModel {
	return userModel{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC(),
	}
}

func (m userModel) toEntity() ports.User {
	return ports.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
