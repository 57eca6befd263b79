package budget

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/bajeti/core"
)

var (
	// errors
	ErrNotFound          = errors.New("budget version not found")
	ErrInvalidTransition = errors.New("invalid budget status transition")
)

type (
	Repository interface {
		CreateVersion(ctx context.Context, v Version) (Version, error)
		GetVersion(ctx context.Context, id string) (Version, error)
		QueryVersions(ctx context.Context) ([]Version, error)
		// GetApprovedVersion returns ErrNotFound when no version is approved
		// for the fiscal year.
		GetApprovedVersion(ctx context.Context, fiscalYear int) (Version, error)
		UpdateVersion(ctx context.Context, v Version) (Version, error)

		GetStatementLines(ctx context.Context, versionID string) ([]StatementLine, error)
		ReplaceStatementLines(ctx context.Context, versionID string, lines []StatementLine) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		// notify receives workflow notifications (submit/approve)
		notify []mail.Address
	}
)

func NewService(repo Repository, mailSvc core.EmailService, notify ...mail.Address) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, notify: notify}
}

func (svc *Service) Create(ctx context.Context, nv NewVersion) (Version, error) {
	if err := nv.Validate(); err != nil {
		return Version{}, err
	}
	now := time.Now().UTC()
	v := Version{
		ID:           uuid.New().String(),
		Name:         nv.Name,
		FiscalYear:   nv.FiscalYear,
		Status:       StatusDraft,
		ExchangeRate: nv.ExchangeRate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateVersion(ctx, v)
}

func (svc *Service) Get(ctx context.Context, id string) (Version, error) {
	return svc.repo.GetVersion(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Version, error) {
	return svc.repo.QueryVersions(ctx)
}

// Submit moves a draft version into review.
func (svc *Service) Submit(ctx context.Context, id string) (Version, error) {
	v, err := svc.transition(ctx, id, StatusSubmitted)
	if err != nil {
		return Version{}, err
	}
	svc.sendNotification(
		fmt.Sprintf("Budget %q submitted", v.Name),
		fmt.Sprintf("Budget version %q (FY %d) was submitted for approval.", v.Name, v.FiscalYear),
	)
	return v, nil
}

// Approve approves a submitted version and supersedes the previously approved
// version for the same fiscal year, if any.
func (svc *Service) Approve(ctx context.Context, id string) (Version, error) {
	v, err := svc.repo.GetVersion(ctx, id)
	if err != nil {
		return Version{}, err
	}

	if prev, err := svc.repo.GetApprovedVersion(ctx, v.FiscalYear); err == nil && prev.ID != v.ID {
		if _, err := svc.transition(ctx, prev.ID, StatusSuperseded); err != nil {
			return Version{}, pkgerrors.Wrap(err, "superseding prior approved version")
		}
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return Version{}, pkgerrors.Wrap(err, "looking up approved version")
	}

	v, err = svc.transition(ctx, id, StatusApproved)
	if err != nil {
		return Version{}, err
	}
	svc.sendNotification(
		fmt.Sprintf("Budget %q approved", v.Name),
		fmt.Sprintf("Budget version %q (FY %d) was approved and is now the active budget.", v.Name, v.FiscalYear),
	)
	return v, nil
}

// Reopen sends a submitted version back to draft for rework.
func (svc *Service) Reopen(ctx context.Context, id string) (Version, error) {
	return svc.transition(ctx, id, StatusDraft)
}

func (svc *Service) transition(ctx context.Context, id string, next Status) (Version, error) {
	v, err := svc.repo.GetVersion(ctx, id)
	if err != nil {
		return Version{}, err
	}
	if !v.Status.CanTransition(next) {
		return Version{}, core.NewValidationError(
			ErrInvalidTransition,
			core.FieldError{Field: "status", Error: fmt.Sprintf("cannot move from %s to %s", v.Status, next)},
		)
	}

	now := time.Now().UTC()
	v.Status = next
	v.UpdatedAt = now
	switch next {
	case StatusSubmitted:
		v.SubmittedAt = &now
	case StatusApproved:
		v.ApprovedAt = &now
	}
	return svc.repo.UpdateVersion(ctx, v)
}

// SetStatementLines replaces a version's statement lines wholesale.
func (svc *Service) SetStatementLines(ctx context.Context, id string, lines []StatementLine) error {
	if _, err := svc.repo.GetVersion(ctx, id); err != nil {
		return err
	}
	return svc.repo.ReplaceStatementLines(ctx, id, lines)
}

func (svc *Service) GetStatementLines(ctx context.Context, id string) ([]StatementLine, error) {
	if _, err := svc.repo.GetVersion(ctx, id); err != nil {
		return nil, err
	}
	return svc.repo.GetStatementLines(ctx, id)
}

// Summarize rolls a version's statement lines up into revenue/cost/capex
// totals with half-up money rounding, plus a fixed-rate conversion of the net.
func (svc *Service) Summarize(ctx context.Context, id string) (Summary, error) {
	v, err := svc.repo.GetVersion(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	lines, err := svc.repo.GetStatementLines(ctx, id)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(err, "loading statement lines")
	}

	var revenue, cost, capex decimal.Decimal
	for _, line := range lines {
		switch line.Kind {
		case LineRevenue:
			revenue = revenue.Add(line.Amount)
		case LineCost:
			cost = cost.Add(line.Amount)
		case LineCapex:
			capex = capex.Add(line.Amount)
		}
	}
	net := revenue.Sub(cost).Sub(capex)

	return Summary{
		Revenue:      revenue.Round(2),
		Cost:         cost.Round(2),
		Capex:        capex.Round(2),
		Net:          net.Round(2),
		NetConverted: net.Mul(v.ExchangeRate).Round(2),
	}, nil
}

func (svc *Service) sendNotification(subject, body string) {
	if svc.mailSvc == nil || len(svc.notify) == 0 {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      svc.notify,
		Subject: subject,
		Body:    body,
	})
}
