package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"pollsbot/contexts/polling/poll-engine/domain/entities"
	domainerrors "pollsbot/contexts/polling/poll-engine/domain/errors"
)

type pollModel struct {
	PollID          string     `gorm:"column:id;primaryKey"`
	ChatID          string     `gorm:"column:chat_id;index"`
	CreatorID       string     `gorm:"column:creator_id"`
	Question        string     `gorm:"column:question"`
	Options         string     `gorm:"column:options"`
	VotingType      string     `gorm:"column:voting_type"`
	Threshold       int        `gorm:"column:threshold"`
	NonAnonymous    bool       `gorm:"column:non_anonymous"`
	MaxParticipants int        `gorm:"column:max_participants"`
	TemplateUsed    string     `gorm:"column:template_used"`
	DecisionNumber  *int       `gorm:"column:decision_number"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	ClosedAt        *time.Time `gorm:"column:closed_at"`
	CloseReason     string     `gorm:"column:close_reason"`
}

func (pollModel) TableName() string { return "polls" }

type voteModel struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PollID      string    `gorm:"column:poll_id;index"`
	UserID      string    `gorm:"column:user_id"`
	OptionIndex int       `gorm:"column:option_index"`
	Superseded  bool      `gorm:"column:superseded"`
	CastAt      time.Time `gorm:"column:cast_at"`
}

func (voteModel) TableName() string { return "votes" }

type decisionCounterModel struct {
	ChatID  string `gorm:"column:chat_id;primaryKey"`
	Counter int    `gorm:"column:counter"`
}

func (decisionCounterModel) TableName() string { return "chat_decision_counters" }

func pollModelFromEntity(poll entities.Poll) pollModel {
	options, _ := json.Marshal(poll.Options)
	return pollModel{
		PollID:          strings.TrimSpace(poll.PollID),
		ChatID:          poll.ChatID,
		CreatorID:       poll.CreatorID,
		Question:        poll.Question,
		Options:         string(options),
		VotingType:      string(poll.VotingType),
		Threshold:       poll.Threshold,
		NonAnonymous:    poll.NonAnonymous,
		MaxParticipants: poll.MaxParticipants,
		TemplateUsed:    poll.TemplateUsed,
		DecisionNumber:  poll.DecisionNumber,
		CreatedAt:       poll.CreatedAt,
		ClosedAt:        poll.ClosedAt,
		CloseReason:     string(poll.CloseReason),
	}
}

func (m pollModel) toEntity() entities.Poll {
	var options []string
	_ = json.Unmarshal([]byte(m.Options), &options)
	return entities.Poll{
		PollID:          m.PollID,
		ChatID:          m.ChatID,
		CreatorID:       m.CreatorID,
		Question:        m.Question,
		Options:         options,
		VotingType:      entities.VotingType(m.VotingType),
		Threshold:       m.Threshold,
		NonAnonymous:    m.NonAnonymous,
		MaxParticipants: m.MaxParticipants,
		TemplateUsed:    m.TemplateUsed,
		DecisionNumber:  m.DecisionNumber,
		CreatedAt:       m.CreatedAt,
		ClosedAt:        m.ClosedAt,
		CloseReason:     entities.CloseReason(m.CloseReason),
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

func (r *Repository) CreatePoll(ctx context.Context, poll entities.Poll) error {
	row := pollModelFromEntity(poll)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		r.logError("poll create failed", "poll_repo_create_failed", poll.PollID, err)
		return err
	}
	return nil
}

func (r *Repository) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	var row pollModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(pollID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, domainerrors.ErrPollNotFound
		}
		r.logError("poll lookup failed", "poll_repo_get_failed", pollID, err)
		return entities.Poll{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdatePoll(ctx context.Context, poll entities.Poll) error {
	row := pollModelFromEntity(poll)
	result := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("id = ?", row.PollID).
		Updates(map[string]any{
			"decision_number": row.DecisionNumber,
			"closed_at":       row.ClosedAt,
			"close_reason":    row.CloseReason,
		})
	if result.Error != nil {
		r.logError("poll update failed", "poll_repo_update_failed", poll.PollID, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPollNotFound
	}
	return nil
}

// CastVote retires any active vote of the voter on the poll and inserts the
// new one, in one transaction.
func (r *Repository) CastVote(ctx context.Context, vote entities.Vote) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&voteModel{}).
			Where("poll_id = ? AND user_id = ? AND NOT superseded", vote.PollID, vote.UserID).
			Update("superseded", true).
			Error; err != nil {
			return err
		}
		row := voteModel{
			PollID:      vote.PollID,
			UserID:      vote.UserID,
			OptionIndex: vote.OptionIndex,
			Superseded:  vote.Superseded,
			CastAt:      vote.CastAt,
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		r.logError("vote cast failed", "poll_repo_cast_vote_failed", vote.PollID, err)
		return err
	}
	return nil
}

func (r *Repository) ListVotes(ctx context.Context, pollID string) ([]entities.Vote, error) {
	var rows []voteModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Order("cast_at ASC, id ASC").
		Find(&rows).
		Error
	if err != nil {
		r.logError("vote list failed", "poll_repo_list_votes_failed", pollID, err)
		return nil, err
	}
	votes := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		votes = append(votes, entities.Vote{
			PollID:      row.PollID,
			UserID:      row.UserID,
			OptionIndex: row.OptionIndex,
			Superseded:  row.Superseded,
			CastAt:      row.CastAt,
		})
	}
	return votes, nil
}

func (r *Repository) ListOpenPolls(ctx context.Context) ([]entities.Poll, error) {
	var rows []pollModel
	err := r.db.WithContext(ctx).
		Where("closed_at IS NULL").
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		r.logError("open poll list failed", "poll_repo_list_open_failed", "", err)
		return nil, err
	}
	polls := make([]entities.Poll, 0, len(rows))
	for _, row := range rows {
		polls = append(polls, row.toEntity())
	}
	return polls, nil
}

func (r *Repository) ListChatPolls(ctx context.Context, chatID string, limit int) ([]entities.Poll, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []pollModel
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", strings.TrimSpace(chatID)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		r.logError("chat poll list failed", "poll_repo_list_chat_failed", "", err)
		return nil, err
	}
	polls := make([]entities.Poll, 0, len(rows))
	for _, row := range rows {
		polls = append(polls, row.toEntity())
	}
	return polls, nil
}

// NextDecisionNumber relies on the upsert to serialize concurrent increments
// on the chat's counter row.
func (r *Repository) NextDecisionNumber(ctx context.Context, chatID string) (int, error) {
	var number int
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO chat_decision_counters (chat_id, counter)
		 VALUES (?, 1)
		 ON CONFLICT (chat_id) DO UPDATE SET counter = chat_decision_counters.counter + 1
		 RETURNING counter`,
		strings.TrimSpace(chatID),
	).Scan(&number).Error
	if err != nil {
		r.logError("decision number allocation failed", "poll_repo_decision_number_failed", "", err)
		return 0, err
	}
	return number, nil
}

func (r *Repository) logError(msg, event, pollID string, err error) {
	r.logger.Error(msg,
		"event", event,
		"module", "polling/poll-engine",
		"layer", "adapter",
		"poll_id", pollID,
		"error", err.Error(),
	)
}
