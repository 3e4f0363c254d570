package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pollsbot/contexts/polling/template-service/domain/entities"
	domainerrors "pollsbot/contexts/polling/template-service/domain/errors"
)

type templateModel struct {
	Name         string    `gorm:"column:name;primaryKey"`
	Question     string    `gorm:"column:question"`
	Options      string    `gorm:"column:options"`
	Description  string    `gorm:"column:description"`
	Variables    string    `gorm:"column:variables"`
	CreatorID    string    `gorm:"column:creator_id"`
	UsageCount   int       `gorm:"column:usage_count"`
	Threshold    int       `gorm:"column:threshold"`
	NonAnonymous bool      `gorm:"column:non_anonymous"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (templateModel) TableName() string { return "templates" }

func templateModelFromEntity(tpl entities.Template) templateModel {
	options, _ := json.Marshal(tpl.Options)
	variables, _ := json.Marshal(tpl.Variables)
	return templateModel{
		Name:         strings.TrimSpace(tpl.Name),
		Question:     tpl.Question,
		Options:      string(options),
		Description:  tpl.Description,
		Variables:    string(variables),
		CreatorID:    tpl.CreatorID,
		UsageCount:   tpl.UsageCount,
		Threshold:    tpl.Threshold,
		NonAnonymous: tpl.NonAnonymous,
		CreatedAt:    tpl.CreatedAt,
	}
}

func (m templateModel) toEntity() entities.Template {
	var options, variables []string
	_ = json.Unmarshal([]byte(m.Options), &options)
	_ = json.Unmarshal([]byte(m.Variables), &variables)
	return entities.Template{
		Name:         m.Name,
		Question:     m.Question,
		Options:      options,
		Description:  m.Description,
		Variables:    variables,
		CreatorID:    m.CreatorID,
		UsageCount:   m.UsageCount,
		Threshold:    m.Threshold,
		NonAnonymous: m.NonAnonymous,
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

func (r *Repository) GetTemplate(ctx context.Context, name string) (entities.Template, bool, error) {
	var row templateModel
	err := r.db.WithContext(ctx).
		Where("name = ?", strings.TrimSpace(name)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Template{}, false, nil
		}
		return entities.Template{}, false, r.logError("template_repo_get_failed", err, "template", strings.TrimSpace(name))
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveTemplate(ctx context.Context, template entities.Template) error {
	row := templateModelFromEntity(template)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{
			"question":      row.Question,
			"options":       row.Options,
			"description":   row.Description,
			"variables":     row.Variables,
			"threshold":     row.Threshold,
			"non_anonymous": row.NonAnonymous,
		}),
	}).Create(&row).Error
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrTemplateExists
		}
		return r.logError("template_repo_save_failed", err, "template", row.Name)
	}
	return nil
}

func (r *Repository) DeleteTemplate(ctx context.Context, name string) error {
	err := r.db.WithContext(ctx).
		Where("name = ?", strings.TrimSpace(name)).
		Delete(&templateModel{}).
		Error
	if err != nil {
		return r.logError("template_repo_delete_failed", err, "template", strings.TrimSpace(name))
	}
	return nil
}

func (r *Repository) ListTemplates(ctx context.Context) ([]entities.Template, error) {
	var rows []templateModel
	err := r.db.WithContext(ctx).
		Order("usage_count DESC, name ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("template_repo_list_failed", err)
	}
	templates := make([]entities.Template, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, row.toEntity())
	}
	return templates, nil
}

func (r *Repository) IncrementUsage(ctx context.Context, name string) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&templateModel{}).
			Where("name = ?", strings.TrimSpace(name)).
			UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrTemplateNotFound
		}
		var row templateModel
		if err := tx.Select("usage_count").Where("name = ?", strings.TrimSpace(name)).First(&row).Error; err != nil {
			return err
		}
		count = row.UsageCount
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrTemplateNotFound) {
			return 0, err
		}
		return 0, r.logError("template_repo_increment_usage_failed", err, "template", strings.TrimSpace(name))
	}
	return count, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "polling/template-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("template repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
