package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/database"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type draftStore interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.TeacherDraftItem, error)
	List(ctx context.Context, exec sqlx.ExtContext, filter models.PlacementFilter) ([]models.TeacherDraftItem, error)
	Create(ctx context.Context, exec sqlx.ExtContext, draft *models.TeacherDraftItem) error
	Update(ctx context.Context, exec sqlx.ExtContext, draft *models.TeacherDraftItem) error
	UpdateValidation(ctx context.Context, exec sqlx.ExtContext, id int64, report types.JSONText) error
	SetLocked(ctx context.Context, exec sqlx.ExtContext, id int64, locked bool) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error
	DeleteByFilter(ctx context.Context, exec sqlx.ExtContext, filter models.PlacementFilter) (int64, error)
}

// DraftService edits unpublished placements.
type DraftService struct {
	drafts     draftStore
	rules      placementValidator
	tx         database.TxBeginner
	maxRetries int
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewDraftService wires draft editing.
func NewDraftService(drafts draftStore, rules placementValidator, tx database.TxBeginner, maxRetries int, validate *validator.Validate, logger *zap.Logger) *DraftService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftService{drafts: drafts, rules: rules, tx: tx, maxRetries: maxRetries, validator: validate, logger: logger}
}

func draftNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "draft not found")
	}
	return internalError(err, "failed to load draft")
}

// ListWeek returns unpublished drafts of a week.
func (s *DraftService) ListWeek(ctx context.Context, query dto.WeekQuery) ([]models.TeacherDraftItem, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid week query")
	}
	weekStart, err := ParseWeekStart(query.WeekStart)
	if err != nil {
		return nil, err
	}
	filter := weekFilter(weekStart)
	filter.CourseID = query.CourseID
	filter.TeacherID = query.TeacherID
	filter.Status = models.DraftStatusDraft
	if query.GroupID != nil {
		filter.GroupIDs = []int64{*query.GroupID}
	}
	drafts, err := s.drafts.List(ctx, nil, filter)
	if err != nil {
		return nil, internalError(err, "failed to list drafts")
	}
	if drafts == nil {
		drafts = []models.TeacherDraftItem{}
	}
	return drafts, nil
}

// Validate runs the draft-mode checker without writing.
func (s *DraftService) Validate(ctx context.Context, req dto.PlacementRequest) (*models.ValidationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement payload")
	}
	return s.rules.ValidateDraft(ctx, nil, req.Placement(), ValidateOptions{ExcludeDraftID: req.ID, AllowNonWorkingDay: req.AllowNonWorkingDay})
}

// Upsert creates or updates a draft and stores its validation report. Drafts
// with blocking errors are rejected.
func (s *DraftService) Upsert(ctx context.Context, req dto.PlacementRequest) (*dto.UpsertResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement payload")
	}
	var resp *dto.UpsertResponse
	err := database.WithSerializableTx(ctx, s.tx, s.maxRetries, func(tx *sqlx.Tx) error {
		var existing *models.TeacherDraftItem
		if req.ID != nil {
			found, err := s.drafts.FindByID(ctx, tx, *req.ID)
			if err != nil {
				return draftNotFound(err)
			}
			if found.Status != models.DraftStatusDraft {
				return appErrors.Clone(appErrors.ErrConflict, "draft is already published")
			}
			existing = found
		}
		candidate := req.Placement()
		res, err := s.rules.ValidateDraft(ctx, tx, candidate, ValidateOptions{ExcludeDraftID: req.ID, AllowNonWorkingDay: req.AllowNonWorkingDay})
		if err != nil {
			return err
		}
		if !res.OK() {
			return validationError(res)
		}
		draft := &models.TeacherDraftItem{Placement: candidate, Status: models.DraftStatusDraft}
		if res.Report != nil {
			draft.ValidationWarnings = res.Report.JSON()
		}
		if existing != nil {
			draft.ID = existing.ID
			draft.BatchKey = existing.BatchKey
			if err := s.drafts.Update(ctx, tx, draft); err != nil {
				return internalError(err, "failed to update draft")
			}
		} else if err := s.drafts.Create(ctx, tx, draft); err != nil {
			return internalError(err, "failed to create draft")
		}
		resp = &dto.UpsertResponse{ID: draft.ID, Warnings: res.Warnings}
		return nil
	})
	if err != nil {
		return nil, translateTxError(err, "failed to save draft")
	}
	return resp, nil
}

// Delete removes an unlocked draft.
func (s *DraftService) Delete(ctx context.Context, id int64) error {
	err := database.WithSerializableTx(ctx, s.tx, s.maxRetries, func(tx *sqlx.Tx) error {
		draft, err := s.drafts.FindByID(ctx, tx, id)
		if err != nil {
			return draftNotFound(err)
		}
		if draft.IsLocked {
			return appErrors.Clone(appErrors.ErrLocked, "draft is locked")
		}
		if err := s.drafts.Delete(ctx, tx, id); err != nil {
			return internalError(err, "failed to delete draft")
		}
		return nil
	})
	if err != nil {
		return translateTxError(err, "failed to delete draft")
	}
	return nil
}

// SetDraftLock toggles whether a draft survives clears.
func (s *DraftService) SetDraftLock(ctx context.Context, id int64, req dto.DraftLockRequest) error {
	err := database.WithSerializableTx(ctx, s.tx, s.maxRetries, func(tx *sqlx.Tx) error {
		if _, err := s.drafts.FindByID(ctx, tx, id); err != nil {
			return draftNotFound(err)
		}
		if err := s.drafts.SetLocked(ctx, tx, id, req.Locked); err != nil {
			return internalError(err, "failed to lock draft")
		}
		return nil
	})
	if err != nil {
		return translateTxError(err, "failed to lock draft")
	}
	return nil
}

// ClearWeek deletes the unlocked drafts of a week in scope.
func (s *DraftService) ClearWeek(ctx context.Context, req dto.ClearWeekRequest) (*dto.ClearWeekResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid clear payload")
	}
	if req.WeekStart.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekStart is required")
	}
	filter := weekFilter(req.WeekStart)
	filter.CourseID = req.CourseID
	filter.OnlyUnlocked = true
	filter.Status = models.DraftStatusDraft
	if req.GroupID != nil {
		filter.GroupIDs = []int64{*req.GroupID}
	}
	resp := &dto.ClearWeekResponse{}
	err := database.WithSerializableTx(ctx, s.tx, s.maxRetries, func(tx *sqlx.Tx) error {
		deleted, err := s.drafts.DeleteByFilter(ctx, tx, filter)
		if err != nil {
			return internalError(err, "failed to clear drafts")
		}
		resp.Deleted = deleted
		return nil
	})
	if err != nil {
		return nil, translateTxError(err, "failed to clear drafts")
	}
	return resp, nil
}

// RevalidateDrafts re-runs the draft checker on every draft of the week and
// stores the fresh reports.
func (s *DraftService) RevalidateDrafts(ctx context.Context, req dto.RevalidateRequest) (*dto.RevalidateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid revalidate payload")
	}
	if req.WeekStart.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekStart is required")
	}
	filter := weekFilter(req.WeekStart)
	filter.TeacherID = req.TeacherID
	filter.Status = models.DraftStatusDraft
	resp := &dto.RevalidateResponse{}
	err := database.WithSerializableTx(ctx, s.tx, s.maxRetries, func(tx *sqlx.Tx) error {
		*resp = dto.RevalidateResponse{}
		drafts, err := s.drafts.List(ctx, tx, filter)
		if err != nil {
			return internalError(err, "failed to list drafts")
		}
		for i := range drafts {
			draft := drafts[i]
			res, err := s.rules.ValidateDraft(ctx, tx, draft.Placement, ValidateOptions{ExcludeDraftID: &draft.ID})
			if err != nil {
				return err
			}
			resp.Checked++
			if !res.OK() {
				resp.WithErrors++
			}
			if res.Report == nil {
				continue
			}
			if err := s.drafts.UpdateValidation(ctx, tx, draft.ID, res.Report.JSON()); err != nil {
				return internalError(err, "failed to store validation report")
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateTxError(err, "failed to revalidate drafts")
	}
	s.logger.Info("drafts revalidated", zap.String("week", filter.From.String()), zap.Int("checked", resp.Checked), zap.Int("with_errors", resp.WithErrors))
	return resp, nil
}
