package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pollsbot/contexts/polling/conversation-service/domain/entities"
)

type dialogueModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	ChatID    string    `gorm:"column:chat_id"`
	Kind      string    `gorm:"column:kind"`
	Stage     string    `gorm:"column:stage"`
	Draft     string    `gorm:"column:draft"`
	StartedAt time.Time `gorm:"column:started_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;index"`
}

func (dialogueModel) TableName() string { return "dialogues" }

// draftPayload is the JSON column shape; only the draft matching Kind is
// populated.
type draftPayload struct {
	Poll          entities.PollDraft          `json:"poll,omitempty"`
	Template      entities.TemplateDraft      `json:"template,omitempty"`
	Instantiation entities.InstantiationDraft `json:"instantiation,omitempty"`
}

func dialogueModelFromEntity(dialogue entities.Dialogue) dialogueModel {
	draft, _ := json.Marshal(draftPayload{
		Poll:          dialogue.Poll,
		Template:      dialogue.Template,
		Instantiation: dialogue.Instantiation,
	})
	return dialogueModel{
		UserID:    strings.TrimSpace(dialogue.UserID),
		ChatID:    dialogue.ChatID,
		Kind:      string(dialogue.Kind),
		Stage:     string(dialogue.Stage),
		Draft:     string(draft),
		StartedAt: dialogue.StartedAt,
		UpdatedAt: dialogue.UpdatedAt,
	}
}

func (m dialogueModel) toEntity() entities.Dialogue {
	var draft draftPayload
	_ = json.Unmarshal([]byte(m.Draft), &draft)
	return entities.Dialogue{
		UserID:        m.UserID,
		ChatID:        m.ChatID,
		Kind:          entities.Kind(m.Kind),
		Stage:         entities.Stage(m.Stage),
		Poll:          draft.Poll,
		Template:      draft.Template,
		Instantiation: draft.Instantiation,
		StartedAt:     m.StartedAt,
		UpdatedAt:     m.UpdatedAt,
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

func (r *Repository) GetDialogue(ctx context.Context, userID string) (entities.Dialogue, bool, error) {
	var row dialogueModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Dialogue{}, false, nil
		}
		r.logError("dialogue lookup failed", "conversation_repo_get_failed", userID, err)
		return entities.Dialogue{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveDialogue(ctx context.Context, dialogue entities.Dialogue) error {
	row := dialogueModelFromEntity(dialogue)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"chat_id":    row.ChatID,
			"kind":       row.Kind,
			"stage":      row.Stage,
			"draft":      row.Draft,
			"started_at": row.StartedAt,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		r.logError("dialogue save failed", "conversation_repo_save_failed", dialogue.UserID, err)
		return err
	}
	return nil
}

func (r *Repository) DeleteDialogue(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Delete(&dialogueModel{}).
		Error
	if err != nil {
		r.logError("dialogue delete failed", "conversation_repo_delete_failed", userID, err)
		return err
	}
	return nil
}

func (r *Repository) ListIdleSince(ctx context.Context, cutoff time.Time) ([]entities.Dialogue, error) {
	var rows []dialogueModel
	err := r.db.WithContext(ctx).
		Where("updated_at <= ?", cutoff).
		Find(&rows).
		Error
	if err != nil {
		r.logError("idle dialogue list failed", "conversation_repo_list_idle_failed", "", err)
		return nil, err
	}
	dialogues := make([]entities.Dialogue, 0, len(rows))
	for _, row := range rows {
		dialogues = append(dialogues, row.toEntity())
	}
	return dialogues, nil
}

func (r *Repository) logError(msg, event, userID string, err error) {
	r.logger.Error(msg,
		"event", event,
		"module", "polling/conversation-service",
		"layer", "adapter",
		"user_id", strings.TrimSpace(userID),
		"error", err.Error(),
	)
}
