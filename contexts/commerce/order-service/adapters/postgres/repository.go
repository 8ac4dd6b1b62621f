package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainerrors "github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/domain/errors"
	"github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/ports"
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
	return []any{&orderModel{}, &knownUserModel{}}
}

func (r *Repository) CreateOrder(ctx context.Context, order ports.Order) (ports.Order, error) {
	row := orderModelFromEntity(order)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return ports.Order{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id string) (ports.Order, error) {
	var row orderModel
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Order{}, domainerrors.ErrOrderNotFound
		}
		return ports.Order{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetOrdersByUser(ctx context.Context, userID string) ([]ports.Order, error) {
	var rows []orderModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	orders := make([]ports.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toEntity())
	}
	return orders, nil
}

func (r *Repository) GetKnownUserByID(ctx context.Context, userID string) (ports.KnownUser, bool, error) {
	var row knownUserModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.KnownUser{}, false, nil
		}
		return ports.KnownUser{}, false, err
	}
	return ports.KnownUser{UserID: row.UserID, Email: row.Email}, true, nil
}

// CreateKnownUser resolves same-key races at the storage layer: concurrent
// inserts for one user id collapse to the first surviving row.
func (r *Repository) CreateKnownUser(ctx context.Context, knownUser ports.KnownUser) error {
	row := knownUserModel{UserID: knownUser.UserID, Email: knownUser.Email}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
}

type orderModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	UserID    string    `gorm:"column:user_id;index"`
	Product   string    `gorm:"column:product"`
	Quantity  int       `gorm:"column:quantity"`
	Price     float64   `gorm:"column:price"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (orderModel) TableName() string {
	return "orders"
}

func orderModelFromEntity(order ports.Order) orderModel {
	return orderModel{
		ID:        order.ID,
		UserID:    order.UserID,
		Product:   order.Product,
		Quantity:  order.Quantity,
		Price:     order.Price,
		CreatedAt: order.CreatedAt.UTC(),
	}
}

func (m orderModel) toEntity() ports.Order {
	return ports.Order{
		ID:        m.ID,
		UserID:    m.UserID,
		Product:   m.Product,
		Quantity:  m.Quantity,
		Price:     m.Price,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type knownUserModel struct {
	UserID string `gorm:"column:user_id;primaryKey"`
	Email  string `gorm:"column:email"`
}

func (knownUserModel) TableName() string {
	return "known_users"
}
