package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pollsbot/contexts/identity-access/permission-service/domain/entities"
)

type userModel struct {
	UserID       string    `gorm:"column:id;primaryKey"`
	Username     string    `gorm:"column:username"`
	Tier         string    `gorm:"column:tier"`
	LastActivity time.Time `gorm:"column:last_activity"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (userModel) TableName() string { return "users" }

func (m userModel) toEntity() entities.User {
	return entities.User{
		UserID:       m.UserID,
		Username:     m.Username,
		Tier:         entities.Tier(m.Tier),
		LastActivity: m.LastActivity,
		CreatedAt:    m.CreatedAt,
	}
}

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

func (r *Repository) GetUser(ctx context.Context, userID string) (entities.User, bool, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, false, nil
		}
		r.logger.Error("user lookup failed",
			"event", "permission_repo_get_user_failed",
			"module", "identity-access/permission-service",
			"layer", "adapter",
			"user_id", strings.TrimSpace(userID),
			"error", err.Error(),
		)
		return entities.User{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveUser(ctx context.Context, user entities.User) error {
	row := userModel{
		UserID:       strings.TrimSpace(user.UserID),
		Username:     user.Username,
		Tier:         string(user.Tier),
		LastActivity: user.LastActivity,
		CreatedAt:    user.CreatedAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"username":      row.Username,
			"tier":          row.Tier,
			"last_activity": row.LastActivity,
		}),
	}).Create(&row).Error
	if err != nil {
		r.logger.Error("user save failed",
			"event", "permission_repo_save_user_failed",
			"module", "identity-access/permission-service",
			"layer", "adapter",
			"user_id", row.UserID,
			"error", err.Error(),
		)
		return err
	}
	return nil
}
