package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hima852/expenseflow/internal/application/port"
	"github.com/hima852/expenseflow/internal/domain/entity"
	"github.com/hima852/expenseflow/internal/domain/visibility"
	"github.com/hima852/expenseflow/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

const (
	commentClaimCreated = "Expense created"
	commentEditReset    = "Expense updated and status set to pending"
	commentReceiptReset = "Status automatically reset to pending due to file update"
	dateLayout          = "2006-01-02"
)

// SubmitInput carries a new claim. Dates arrive parsed; the HTTP layer
// owns wire formats.
type SubmitInput struct {
	SiteName            string
	Unit                string
	ProjectID           string
	ProjectName         string
	JourneyDate         time.Time
	ReturnDate          *time.Time
	TransportMode       string
	ReturnTransportMode string
	AdvanceAmount       float64
	TrainFare           float64
	HotelFare           float64
	FoodCost            float64
	HotelReceipt        string
	FoodReceipt         string
	TransportReceipt    string
}

// ClaimPatch carries an owner edit. Nil fields are left untouched.
type ClaimPatch struct {
	SiteName            *string
	Unit                *string
	ProjectID           *string
	ProjectName         *string
	JourneyDate         *time.Time
	ReturnDate          *time.Time
	TransportMode       *string
	ReturnTransportMode *string
	AdvanceAmount       *float64
	TrainFare           *float64
	HotelFare           *float64
	FoodCost            *float64
	HotelReceipt        *string
	FoodReceipt         *string
	TransportReceipt    *string
}

// ReviewService is the core of the system: it validates and applies
// claim state transitions, enforces role and department gating, and
// writes audit entries atomically with claim updates.
type ReviewService interface {
	Submit(ctx context.Context, actor entity.Actor, in SubmitInput) (*entity.Claim, error)
	Review(ctx context.Context, actor entity.Actor, claimID int64, decision workflow.ReviewDecision) (*entity.Claim, error)
	Edit(ctx context.Context, actor entity.Actor, claimID int64, patch ClaimPatch) (*entity.Claim, error)
	GetDetail(ctx context.Context, claimID int64) (*entity.Claim, error)
	GetHistory(ctx context.Context, claimID int64) ([]*entity.HistoryEntry, error)
	ListVisible(ctx context.Context, actor entity.Actor, filters visibility.Filters) ([]*entity.Claim, error)
}

type reviewServiceImpl struct {
	claimRepo   port.ClaimRepository
	historyRepo port.HistoryRepository
	userRepo    port.UserRepository
	lookupRepo  port.LookupRepository
	txManager   port.TransactionManager
	logger      Logger
	now         func() time.Time
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	claimRepo port.ClaimRepository,
	historyRepo port.HistoryRepository,
	userRepo port.UserRepository,
	lookupRepo port.LookupRepository,
	txManager port.TransactionManager,
	logger Logger,
) ReviewService {
	return &reviewServiceImpl{
		claimRepo:   claimRepo,
		historyRepo: historyRepo,
		userRepo:    userRepo,
		lookupRepo:  lookupRepo,
		txManager:   txManager,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit validates and persists a new claim with its creation history
// entry in one transaction. The claim enters the chain as pending.
func (s *reviewServiceImpl) Submit(ctx context.Context, actor entity.Actor, in SubmitInput) (*entity.Claim, error) {
	owner, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	if owner == nil {
		return nil, &entity.NotFoundError{Kind: "user", ID: strconv.FormatInt(actor.UserID, 10)}
	}

	var missing []string
	if in.JourneyDate.IsZero() {
		missing = append(missing, "journeyDate")
	}
	if in.SiteName == "" {
		missing = append(missing, "siteName")
	}
	if in.Unit == "" {
		missing = append(missing, "unit")
	}
	if len(missing) > 0 {
		return nil, entity.NewMissingFieldsError(missing...)
	}

	if in.ReturnDate != nil && in.JourneyDate.After(*in.ReturnDate) {
		return nil, entity.NewInvalidDateRangeError()
	}

	claim := &entity.Claim{
		UserID: actor.UserID,

		EmployeeName: owner.Name,
		EmployeeID:   owner.EmployeeID,
		Designation:  owner.Designation,
		Department:   owner.Department,

		SiteName:    in.SiteName,
		Unit:        in.Unit,
		ProjectID:   in.ProjectID,
		ProjectName: in.ProjectName,

		JourneyDate:         in.JourneyDate,
		ReturnDate:          in.ReturnDate,
		TransportMode:       in.TransportMode,
		ReturnTransportMode: in.ReturnTransportMode,

		AdvanceAmount: in.AdvanceAmount,
		TrainFare:     in.TrainFare,
		HotelFare:     in.HotelFare,
		FoodCost:      in.FoodCost,

		Status: entity.StatusPending,

		HotelReceipt:     in.HotelReceipt,
		FoodReceipt:      in.FoodReceipt,
		TransportReceipt: in.TransportReceipt,

		UpdatedBy: actor.UserID,
	}
	if claim.Designation == "" {
		claim.Designation = "Employee"
	}
	claim.TotalExpense = claim.ComputeTotal()

	if claim.TotalExpense == 0 {
		return nil, &entity.ZeroAmountError{
			TrainFare: in.TrainFare,
			HotelFare: in.HotelFare,
			FoodCost:  in.FoodCost,
		}
	}

	if err := s.checkOverlap(ctx, claim, 0); err != nil {
		return nil, err
	}

	if err := s.upsertLookups(ctx, claim); err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimRepo.Create(txCtx, claim); err != nil {
			return fmt.Errorf("create claim: %w", err)
		}

		entry := &entity.HistoryEntry{
			ClaimID:        claim.ID,
			Status:         entity.StatusPending,
			PreviousStatus: nil,
			Comment:        commentClaimCreated,
			ChangedBy:      actor.UserID,
			ChangedAt:      s.now(),
			ProjectID:      claim.ProjectID,
			ProjectName:    claim.ProjectName,
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to submit claim", "error", err, "user_id", actor.UserID)
		return nil, err
	}

	s.logger.Info("Claim submitted", "claim_id", claim.ID, "user_id", actor.UserID, "total", claim.TotalExpense)
	return claim, nil
}

// Review applies one stage's decision. The claim update and its history
// entry are one atomic unit; the current-status precondition is
// re-checked inside the transaction so concurrent reviewers cannot both
// advance the claim.
func (s *reviewServiceImpl) Review(ctx context.Context, actor entity.Actor, claimID int64, decision workflow.ReviewDecision) (*entity.Claim, error) {
	if err := decision.Validate(); err != nil {
		return nil, err
	}

	if actor.Role != decision.Stage.Role() {
		return nil, &entity.NotAuthorizedError{
			Reason: fmt.Sprintf("role %q may not review at the %s stage", actor.Role, decision.Stage),
		}
	}

	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}
	if claim == nil {
		return nil, &entity.NotFoundError{Kind: "claim", ID: strconv.FormatInt(claimID, 10)}
	}

	// Coordinator review is department-scoped. Claims with no
	// department are department-agnostic.
	if decision.Stage == workflow.StageCoordinator {
		if claim.Department != "" && claim.Department != actor.Department {
			return nil, &entity.NotAuthorizedError{
				Reason: "claim belongs to a different department",
			}
		}
	}

	next, err := workflow.Next(workflow.Status(claim.Status), decision)
	if err != nil {
		return nil, err
	}

	prev := claim.Status
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		updated, err := s.claimRepo.ApplyReview(txCtx, claimID,
			decision.Stage.String(), actor.UserID, decision.Comment,
			prev, next.String())
		if err != nil {
			return fmt.Errorf("apply review: %w", err)
		}
		if !updated {
			// Lost the race: another transaction moved the claim first.
			return &entity.InvalidTransitionError{Current: prev, Requested: next.String()}
		}

		entry := &entity.HistoryEntry{
			ClaimID:        claimID,
			Status:         next.String(),
			PreviousStatus: &prev,
			Comment:        decision.Comment,
			ChangedBy:      actor.UserID,
			ChangedAt:      s.now(),
			ProjectID:      claim.ProjectID,
			ProjectName:    claim.ProjectName,
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to review claim", "error", err, "claim_id", claimID, "stage", decision.Stage.String())
		return nil, err
	}

	s.logger.Info("Claim reviewed",
		"claim_id", claimID,
		"stage", decision.Stage.String(),
		"status", next.String(),
		"reviewer_id", actor.UserID)

	claim, err = s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("reload claim: %w", err)
	}
	return claim, nil
}

// Edit applies an owner's patch, recomputes the total, forces the claim
// back to pending, and clears every reviewer triple. An edit made while
// rejected re-enters review instead of staying rejected, even when only
// a receipt file changed.
func (s *reviewServiceImpl) Edit(ctx context.Context, actor entity.Actor, claimID int64, patch ClaimPatch) (*entity.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}
	if claim == nil {
		return nil, &entity.NotFoundError{Kind: "claim", ID: strconv.FormatInt(claimID, 10)}
	}

	if claim.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, &entity.NotAuthorizedError{Reason: "only the claim owner may edit it"}
	}

	diffs, receiptsOnly := applyPatch(claim, patch)
	claim.TotalExpense = claim.ComputeTotal()

	if claim.ReturnDate != nil && claim.JourneyDate.After(*claim.ReturnDate) {
		return nil, entity.NewInvalidDateRangeError()
	}
	if err := s.checkOverlap(ctx, claim, claim.ID); err != nil {
		return nil, err
	}
	if err := s.upsertLookups(ctx, claim); err != nil {
		return nil, err
	}

	prev := claim.Status
	claim.Status = workflow.ResetStatus().String()
	claim.ClearReviews()
	claim.UpdatedBy = actor.UserID
	claim.UpdatedAt = s.now()

	comment := commentEditReset
	if receiptsOnly {
		comment = commentReceiptReset
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimRepo.Update(txCtx, claim); err != nil {
			return fmt.Errorf("update claim: %w", err)
		}

		entry := &entity.HistoryEntry{
			ClaimID:        claim.ID,
			Status:         claim.Status,
			PreviousStatus: &prev,
			Comment:        comment,
			ChangedBy:      actor.UserID,
			ChangedAt:      s.now(),
			ProjectID:      claim.ProjectID,
			ProjectName:    claim.ProjectName,
			Changes:        diffs,
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to edit claim", "error", err, "claim_id", claimID)
		return nil, err
	}

	s.logger.Info("Claim edited and reset to pending",
		"claim_id", claim.ID,
		"previous_status", prev,
		"changed_fields", len(diffs))
	return claim, nil
}

// GetDetail retrieves a single claim.
func (s *reviewServiceImpl) GetDetail(ctx context.Context, claimID int64) (*entity.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}
	if claim == nil {
		return nil, &entity.NotFoundError{Kind: "claim", ID: strconv.FormatInt(claimID, 10)}
	}
	return claim, nil
}

// GetHistory retrieves the claim's audit trail, newest first.
func (s *reviewServiceImpl) GetHistory(ctx context.Context, claimID int64) ([]*entity.HistoryEntry, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}
	if claim == nil {
		return nil, &entity.NotFoundError{Kind: "claim", ID: strconv.FormatInt(claimID, 10)}
	}
	return s.historyRepo.ListByClaimID(ctx, claimID)
}

// ListVisible lists the claims the actor's role may see, AND-composed
// with any optional filters.
func (s *reviewServiceImpl) ListVisible(ctx context.Context, actor entity.Actor, filters visibility.Filters) ([]*entity.Claim, error) {
	q := visibility.Scope(actor, filters)
	claims, err := s.claimRepo.List(ctx, q)
	if err != nil {
		s.logger.Error("Failed to list claims", "error", err, "role", actor.Role)
		return nil, err
	}
	return claims, nil
}

// checkOverlap enforces the no-overlapping-windows invariant for the
// claim's owner, skipping rejected claims and the claim itself.
func (s *reviewServiceImpl) checkOverlap(ctx context.Context, claim *entity.Claim, excludeID int64) error {
	start, end := claim.Window()
	conflicts, err := s.claimRepo.FindOverlapping(ctx, claim.UserID, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("find overlapping: %w", err)
	}
	if len(conflicts) > 0 {
		ids := make([]int64, 0, len(conflicts))
		for _, c := range conflicts {
			ids = append(ids, c.ID)
		}
		return &entity.OverlapError{ConflictIDs: ids}
	}
	return nil
}

// upsertLookups keeps the reference tables current with whatever the
// claim names. Failures here are store errors, not validation errors.
func (s *reviewServiceImpl) upsertLookups(ctx context.Context, claim *entity.Claim) error {
	if claim.ProjectID != "" && claim.ProjectName != "" {
		if err := s.lookupRepo.UpsertProject(ctx, claim.ProjectID, claim.ProjectName); err != nil {
			return fmt.Errorf("upsert project: %w", err)
		}
	}
	for _, mode := range []string{claim.TransportMode, claim.ReturnTransportMode} {
		if mode == "" {
			continue
		}
		if err := s.lookupRepo.UpsertTransportMode(ctx, mode); err != nil {
			return fmt.Errorf("upsert transport mode: %w", err)
		}
	}
	return nil
}

// applyPatch mutates the claim in place and returns the field-level
// diff, plus whether receipt files were the only change.
func applyPatch(claim *entity.Claim, patch ClaimPatch) (entity.FieldDiffs, bool) {
	diffs := entity.FieldDiffs{}
	receiptChanged := false
	otherChanged := false

	setString := func(field string, dst *string, src *string, receipt bool) {
		if src == nil || *src == *dst {
			return
		}
		diffs[field] = entity.FieldDiff{OldValue: *dst, NewValue: *src}
		*dst = *src
		if receipt {
			receiptChanged = true
		} else {
			otherChanged = true
		}
	}
	setFloat := func(field string, dst *float64, src *float64) {
		if src == nil || *src == *dst {
			return
		}
		diffs[field] = entity.FieldDiff{
			OldValue: strconv.FormatFloat(*dst, 'f', 2, 64),
			NewValue: strconv.FormatFloat(*src, 'f', 2, 64),
		}
		*dst = *src
		otherChanged = true
	}

	setString("site_name", &claim.SiteName, patch.SiteName, false)
	setString("unit", &claim.Unit, patch.Unit, false)
	setString("project_id", &claim.ProjectID, patch.ProjectID, false)
	setString("project_name", &claim.ProjectName, patch.ProjectName, false)
	setString("transport_mode", &claim.TransportMode, patch.TransportMode, false)
	setString("return_transport_mode", &claim.ReturnTransportMode, patch.ReturnTransportMode, false)

	setFloat("advance_amount", &claim.AdvanceAmount, patch.AdvanceAmount)
	setFloat("train_fare", &claim.TrainFare, patch.TrainFare)
	setFloat("hotel_fare", &claim.HotelFare, patch.HotelFare)
	setFloat("food_cost", &claim.FoodCost, patch.FoodCost)

	if patch.JourneyDate != nil && !patch.JourneyDate.Equal(claim.JourneyDate) {
		diffs["journey_date"] = entity.FieldDiff{
			OldValue: claim.JourneyDate.Format(dateLayout),
			NewValue: patch.JourneyDate.Format(dateLayout),
		}
		claim.JourneyDate = *patch.JourneyDate
		otherChanged = true
	}
	if patch.ReturnDate != nil && (claim.ReturnDate == nil || !patch.ReturnDate.Equal(*claim.ReturnDate)) {
		old := ""
		if claim.ReturnDate != nil {
			old = claim.ReturnDate.Format(dateLayout)
		}
		diffs["return_date"] = entity.FieldDiff{
			OldValue: old,
			NewValue: patch.ReturnDate.Format(dateLayout),
		}
		d := *patch.ReturnDate
		claim.ReturnDate = &d
		otherChanged = true
	}

	setString("hotel_receipt", &claim.HotelReceipt, patch.HotelReceipt, true)
	setString("food_receipt", &claim.FoodReceipt, patch.FoodReceipt, true)
	setString("transport_receipt", &claim.TransportReceipt, patch.TransportReceipt, true)

	return diffs, receiptChanged && !otherChanged
}
