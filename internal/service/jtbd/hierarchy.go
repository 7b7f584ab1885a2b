package jtbd

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ignite/jtbd-explorer/internal/domain"
)

var inputValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return domain.ValidSlug(fl.Field().String())
	})
	return v
})

func validateInput(in any) error {
	err := inputValidator().Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return invalid("%s is required", field)
		case "slug":
			return invalid("%s must be lowercase kebab-case", field)
		case "max":
			return invalid("%s must be at most %s characters", field, fe.Param())
		}
		return invalid("%s is invalid", field)
	}
	return invalid("%v", err)
}

// BigJobInput carries the editable fields of a big job.
type BigJobInput struct {
	Slug        string   `json:"slug" validate:"required,max=120,slug"`
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Tags        []string `json:"tags"`
	OrderIndex  int      `json:"order_index" validate:"min=0"`
}

// LittleJobInput carries the editable fields of a little job. BigJobSlug
// names the parent.
type LittleJobInput struct {
	BigJobSlug  string `json:"big_job_slug"`
	Slug        string `json:"slug" validate:"required,max=120,slug"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	OrderIndex  int    `json:"order_index" validate:"min=0"`
}

// OutcomeInput carries the editable fields of an outcome. LittleJobSlug
// names the parent.
type OutcomeInput struct {
	LittleJobSlug string   `json:"little_job_slug"`
	Slug          string   `json:"slug" validate:"required,max=120,slug"`
	Name          string   `json:"name" validate:"required,max=300"`
	Description   string   `json:"description" validate:"max=2000"`
	Tags          []string `json:"tags"`
	OrderIndex    int      `json:"order_index" validate:"min=0"`
}

// Hierarchy returns the active tree of an org.
func (s *Service) Hierarchy(ctx context.Context, orgID string) (domain.Hierarchy, error) {
	return s.repo.Hierarchy(ctx, orgID, false)
}

// =============================================================================
// Big jobs
// =============================================================================

func (s *Service) CreateBigJob(ctx context.Context, orgID string, in BigJobInput) (*domain.BigJob, error) {
	in.Slug, in.Name = strings.TrimSpace(in.Slug), strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	b := &domain.BigJob{
		ID:          uuid.New().String(),
		OrgID:       orgID,
		Slug:        in.Slug,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Tags:        cleanTags(in.Tags),
		OrderIndex:  in.OrderIndex,
		Status:      domain.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.repo.InTx(ctx, func(r Repository) error {
		if err := r.CreateBigJob(ctx, b); err != nil {
			return err
		}
		return s.record(ctx, r, orgID, domain.EntityBigJob, b.ID, domain.ActionCreate, nil, b)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(orgID)
	s.log.Info("big job created", "org_id", orgID, "slug", b.Slug)
	return b, nil
}

func (s *Service) UpdateBigJob(ctx context.Context, orgID, slug string, in BigJobInput) (*domain.BigJob, error) {
	in.Slug, in.Name = strings.TrimSpace(in.Slug), strings.TrimSpace(in.Name)
	var updated *domain.BigJob
	err := s.repo.InTx(ctx, func(r Repository) error {
		cur, err := r.GetBigJob(ctx, orgID, slug)
		if err != nil {
			return err
		}
		if in.Slug == "" {
			in.Slug = cur.Slug
		}
		if err := validateInput(in); err != nil {
			return err
		}

		before := *cur
		cur.Slug = in.Slug
		cur.Name = in.Name
		cur.Description = strings.TrimSpace(in.Description)
		cur.Tags = cleanTags(in.Tags)
		cur.OrderIndex = in.OrderIndex
		cur.UpdatedAt = s.now().UTC()
		if err := r.UpdateBigJob(ctx, cur); err != nil {
			return err
		}
		updated = cur
		return s.record(ctx, r, orgID, domain.EntityBigJob, cur.ID, domain.ActionUpdate, before, cur)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(orgID)
	return updated, nil
}

// ArchiveBigJob hides a big job and, with it, its subtree from the active
// hierarchy and the import catalog.
func (s *Service) ArchiveBigJob(ctx context.Context, orgID, slug string) error {
	err := s.repo.InTx(ctx, func(r Repository) error {
		cur, err := r.GetBigJob(ctx, orgID, slug)
		if err != nil {
			return err
		}
		before := *cur
		cur.Status = domain.StatusArchived
		cur.UpdatedAt = s.now().UTC()
		if err := r.UpdateBigJob(ctx, cur); err != nil {
			return err
		}
		return s.record(ctx, r, orgID, domain.EntityBigJob, cur.ID, domain.ActionArchive, before, cur)
	})
	if err != nil {
		return err
	}
	s.invalidate(orgID)
	return nil
}

// DeleteBigJob removes a big job. Little jobs, outcomes and their results
// go with it.
func (s *Service) DeleteBigJob(ctx context.Context, orgID, slug string) error {
	err := s.repo.InTx(ctx, func(r Repository) error {
		cur, err := r.GetBigJob(ctx, orgID, slug)
		if err != nil {
			return err
		}
		if err := r.DeleteBigJob(ctx, orgID, cur.ID); err != nil {
			return err
		}
		return s.record(ctx, r, orgID, domain.EntityBigJob, cur.ID, domain.ActionDelete, cur, nil)
	})
	if err != nil {
		return err
	}
	s.invalidate(orgID)
	s.log.Info("big job deleted", "org_id", orgID, "slug", slug)
	return nil
}

// =============================================================================
// Little jobs
// =============================================================================

func (s *Service) CreateLittleJob(ctx context.Context, orgID string, in LittleJobInput) (*domain.LittleJob, error) {
	in.Slug, in.Name = strings.TrimSpace(in.Slug), strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.BigJobSlug) == "" {
		return nil, invalid("big_job_slug is required")
	}

	var l *domain.LittleJob
	err := s.repo.InTx(ctx, func(r Repository) error {
		parent, err := r.GetBigJob(ctx, orgID, in.BigJobSlug)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		l = &domain.LittleJob{
			ID:          uuid.New().String(),
			OrgID:       orgID,
			BigJobID:    parent.ID,
			Slug:        in.Slug,
			Name:        in.Name,
			Description: strings.TrimSpace(in.Description),
			OrderIndex:  in.OrderIndex,
			Status:      domain.StatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := r.CreateLittleJob(ctx, l); err != nil {
			return err
		}
		return s.record(ctx, r, orgID, domain.EntityLittleJob, l.ID, domain.ActionCreate, nil, l)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(orgID)
	s.log.Info("little job created", "org_id", orgID, "slug", l.Slug, "big_job", in.BigJobSlug)
	return l, nil
}

// UpdateLittleJob edits a little job. A non-empty BigJobSlug moves it under
// another big job.
func (s *Service) UpdateLittleJob(ctx context.Context, orgID, slug string, in LittleJobInput) (*domain.LittleJob, error) {
	in.Slug, in.Name = strings.TrimSpace(in.Slug), strings.TrimSpace(in.Name)
	var updated *domain.LittleJob
	err := s.repo.InTx(ctx, func(r Repository) error {
		cur, err := r.GetLittleJob(ctx, orgID, slug)
		if err != nil {
			return err
		}
		if in.Slug == "" {
			in.Slug = cur.Slug
		}
		if err := validateInput(in); err != nil {
			return err
		}

		before := *cur
		if p := strings.TrimSpace(in.BigJobSlug); p != "" {
			parent, err := r.GetBigJob(ctx, orgID, p)
			if err != nil {
				return err
			}
			cur.BigJobID = parent.ID
		}
		cur.Slug = in.Slug
		cur.Name = in.Name
		cur.Description = strings.TrimSpace(in.Description)
		cur.OrderIndex = in.OrderIndex
		cur.UpdatedAt = s.now().UTC()
		if err := r.UpdateLittleJob(ctx, cur); err != nil {
			return err
		}
		updated = cur
		return s.record(ctx, r, orgID, domain.EntityLittleJob, cur.ID, domain.ActionUpdate, before, cur)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(orgID)
	return updated, nil
}

func (s *Service) ArchiveLittleJob(ctx context.Context, orgID, slug string) error {
	err := s.repo.InTx(ctx, func(r Repository) error {
		cur, err := r.GetLittleJob(ctx, orgID, slug)
		if err != nil {
			return err
		}
		before := *cur
		cur.Status = domain.StatusArchived
		cur.UpdatedAt = s.now().UTC()
		if err := r.UpdateLittleJob(ctx, cur); err != nil {
			return err
		}
		return s.record(ctx, r, orgID, domain.EntityLittleJob, cur.ID, domain.ActionArchive, before, cur)
	})
	if err != nil {
		return err
	}
	s.invalidate(orgID)
	return nil
}

func (s *Service) DeleteLittleJob(ctx context.Context, orgID, slug string) error {
	err := s.repo.InTx(ctx, func(r Repository) error {
		cur, err := r.GetLittleJob(ctx, orgID, slug)
		if err != nil {
			return err
		}
		if err := r.DeleteLittleJob(ctx, orgID, cur.ID); err != nil {
			return err
		}
		return s.record(ctx, r, orgID, domain.EntityLittleJob, cur.ID, domain.ActionDelete, cur, nil)
	})
	if err != nil {
		return err
	}
	s.invalidate(orgID)
	return nil
}

// =============================================================================
// Outcomes
// =============================================================================

func (s *Service) CreateOutcome(ctx context.Context, orgID string, in OutcomeInput) (*domain.Outcome, error) {
	in.Slug, in.Name = strings.TrimSpace(in.Slug), strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.LittleJobSlug) == "" {
		return nil, invalid("little_job_slug is required")
	}

	var o *domain.Outcome
	err := s.repo.InTx(ctx, func(r Repository) error {
		parent, err := r.GetLittleJob(ctx, orgID, in.LittleJobSlug)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		o = &domain.Outcome{
			ID:          uuid.New().String(),
			OrgID:       orgID,
			LittleJobID: parent.ID,
			Slug:        in.Slug,
			Name:        in.Name,
			Description: strings.TrimSpace(in.Description),
			Tags:        cleanTags(in.Tags),
			OrderIndex:  in.OrderIndex,
			Status:      domain.StatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := r.CreateOutcome(ctx, o); err != nil {
			return err
		}
		return s.record(ctx, r, orgID, domain.EntityOutcome, o.ID, domain.ActionCreate, nil, o)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(orgID)
	s.log.Info("outcome created", "org_id", orgID, "slug", o.Slug, "little_job", in.LittleJobSlug)
	return o, nil
}

// UpdateOutcome edits an outcome. A non-empty LittleJobSlug moves it under
// another little job.
func (s *Service) UpdateOutcome(ctx context.Context, orgID, slug string, in OutcomeInput) (*domain.Outcome, error) {
	in.Slug, in.Name = strings.TrimSpace(in.Slug), strings.TrimSpace(in.Name)
	var updated *domain.Outcome
	err := s.repo.InTx(ctx, func(r Repository) error {
		cur, err := r.GetOutcome(ctx, orgID, slug)
		if err != nil {
			return err
		}
		if in.Slug == "" {
			in.Slug = cur.Slug
		}
		if err := validateInput(in); err != nil {
			return err
		}

		before := *cur
		if p := strings.TrimSpace(in.LittleJobSlug); p != "" {
			parent, err := r.GetLittleJob(ctx, orgID, p)
			if err != nil {
				return err
			}
			cur.LittleJobID = parent.ID
		}
		cur.Slug = in.Slug
		cur.Name = in.Name
		cur.Description = strings.TrimSpace(in.Description)
		cur.Tags = cleanTags(in.Tags)
		cur.OrderIndex = in.OrderIndex
		cur.UpdatedAt = s.now().UTC()
		if err := r.UpdateOutcome(ctx, cur); err != nil {
			return err
		}
		updated = cur
		return s.record(ctx, r, orgID, domain.EntityOutcome, cur.ID, domain.ActionUpdate, before, cur)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(orgID)
	return updated, nil
}

func (s *Service) ArchiveOutcome(ctx context.Context, orgID, slug string) error {
	err := s.repo.InTx(ctx, func(r Repository) error {
		cur, err := r.GetOutcome(ctx, orgID, slug)
		if err != nil {
			return err
		}
		before := *cur
		cur.Status = domain.StatusArchived
		cur.UpdatedAt = s.now().UTC()
		if err := r.UpdateOutcome(ctx, cur); err != nil {
			return err
		}
		return s.record(ctx, r, orgID, domain.EntityOutcome, cur.ID, domain.ActionArchive, before, cur)
	})
	if err != nil {
		return err
	}
	s.invalidate(orgID)
	return nil
}

func (s *Service) DeleteOutcome(ctx context.Context, orgID, slug string) error {
	err := s.repo.InTx(ctx, func(r Repository) error {
		cur, err := r.GetOutcome(ctx, orgID, slug)
		if err != nil {
			return err
		}
		if err := r.DeleteOutcome(ctx, orgID, cur.ID); err != nil {
			return err
		}
		return s.record(ctx, r, orgID, domain.EntityOutcome, cur.ID, domain.ActionDelete, cur, nil)
	})
	if err != nil {
		return err
	}
	s.invalidate(orgID)
	return nil
}
