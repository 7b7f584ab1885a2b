package jtbd

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignite/jtbd-explorer/internal/domain"
)

// MergeMode decides what Restore does with entities that already exist.
type MergeMode string

const (
	MergeSkip      MergeMode = "skip"
	MergeOverwrite MergeMode = "overwrite"
)

// RestoreOptions controls Restore.
type RestoreOptions struct {
	Merge  MergeMode `json:"merge"`
	DryRun bool      `json:"dry_run"`
}

// RestoreCounts tallies what Restore did (or would do) to one entity kind.
type RestoreCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// RestoreResult is the per-entity outcome of a Restore.
type RestoreResult struct {
	DryRun         bool          `json:"dry_run"`
	BigJobs        RestoreCounts `json:"big_jobs"`
	LittleJobs     RestoreCounts `json:"little_jobs"`
	Outcomes       RestoreCounts `json:"outcomes"`
	Surveys        RestoreCounts `json:"surveys"`
	OutcomeResults RestoreCounts `json:"outcome_results"`
}

// Export returns the whole dataset of an org, archived nodes included.
func (s *Service) Export(ctx context.Context, orgID string) (*domain.Snapshot, error) {
	tree, err := s.repo.Hierarchy(ctx, orgID, true)
	if err != nil {
		return nil, err
	}
	surveys, err := s.repo.ListSurveys(ctx, orgID)
	if err != nil {
		return nil, err
	}
	results, err := s.repo.ListOutcomeResults(ctx, orgID, "")
	if err != nil {
		return nil, err
	}
	return &domain.Snapshot{
		Hierarchy:      tree,
		Surveys:        surveys,
		OutcomeResults: results,
		ExportedAt:     s.now().UTC(),
	}, nil
}

// Restore loads a snapshot into an org, matching existing entities by slug
// (surveys by code, results by survey and outcome). Missing entities are
// created; existing ones are skipped or overwritten per opts.Merge. Results
// whose survey or outcome is not in the snapshot are skipped. A dry run
// computes the counts without writing anything.
func (s *Service) Restore(ctx context.Context, orgID string, snap *domain.Snapshot, opts RestoreOptions) (*RestoreResult, error) {
	if opts.Merge == "" {
		opts.Merge = MergeSkip
	}
	if opts.Merge != MergeSkip && opts.Merge != MergeOverwrite {
		return nil, invalid("merge must be %q or %q", MergeSkip, MergeOverwrite)
	}
	if snap == nil {
		return nil, invalid("snapshot is required")
	}

	rs := &restorer{svc: s, orgID: orgID, opts: opts, res: &RestoreResult{DryRun: opts.DryRun}}
	err := s.repo.InTx(ctx, func(r Repository) error {
		rs.repo = r
		return rs.run(ctx, snap)
	})
	if err != nil {
		return nil, err
	}
	if !opts.DryRun {
		s.invalidate(orgID)
	}
	s.log.Info("dataset restored", "org_id", orgID, "dry_run", opts.DryRun, "merge", string(opts.Merge),
		"outcomes_created", rs.res.Outcomes.Created, "results_created", rs.res.OutcomeResults.Created)
	return rs.res, nil
}

type restorer struct {
	svc   *Service
	repo  Repository
	orgID string
	opts  RestoreOptions
	res   *RestoreResult
}

func (rs *restorer) overwrite() bool { return rs.opts.Merge == MergeOverwrite }

func (rs *restorer) write(ctx context.Context, entity, id string, action domain.ChangeAction, before, after any, op func() error) error {
	if rs.opts.DryRun {
		return nil
	}
	if err := op(); err != nil {
		return err
	}
	return rs.svc.record(ctx, rs.repo, rs.orgID, entity, id, action, before, after)
}

func restoredStatus(st domain.Status) domain.Status {
	if st.Valid() {
		return st
	}
	return domain.StatusActive
}

func (rs *restorer) run(ctx context.Context, snap *domain.Snapshot) error {
	outcomeIDs := make(map[string]string)
	for _, bj := range snap.Hierarchy.BigJobs {
		bjID, err := rs.bigJob(ctx, bj)
		if err != nil {
			return err
		}
		for _, lj := range bj.LittleJobs {
			ljID, err := rs.littleJob(ctx, lj, bjID)
			if err != nil {
				return err
			}
			for _, o := range lj.Outcomes {
				oID, err := rs.outcome(ctx, o, ljID)
				if err != nil {
					return err
				}
				outcomeIDs[o.ID] = oID
			}
		}
	}

	surveyIDs := make(map[string]string)
	existing := make(map[string]map[string]bool)
	for _, sv := range snap.Surveys {
		id, known, err := rs.survey(ctx, sv)
		if err != nil {
			return err
		}
		surveyIDs[sv.ID] = id
		existing[id] = known
	}

	for _, r := range snap.OutcomeResults {
		surveyID, ok1 := surveyIDs[r.SurveyID]
		outcomeID, ok2 := outcomeIDs[r.OutcomeID]
		if !ok1 || !ok2 {
			rs.res.OutcomeResults.Skipped++
			continue
		}
		if existing[surveyID][outcomeID] && !rs.overwrite() {
			rs.res.OutcomeResults.Skipped++
			continue
		}

		res := r
		res.ID, res.OrgID, res.SurveyID, res.OutcomeID = "", rs.orgID, surveyID, outcomeID
		if rs.opts.DryRun {
			if existing[surveyID][outcomeID] {
				rs.res.OutcomeResults.Updated++
			} else {
				rs.res.OutcomeResults.Created++
			}
			continue
		}
		inserted, err := rs.repo.UpsertOutcomeResult(ctx, &res)
		if err != nil {
			return err
		}
		if err := rs.svc.record(ctx, rs.repo, rs.orgID, domain.EntityOutcomeResult, res.ID, domain.ActionUpsert, nil, &res); err != nil {
			return err
		}
		if inserted {
			rs.res.OutcomeResults.Created++
		} else {
			rs.res.OutcomeResults.Updated++
		}
	}
	return nil
}

func lookup[T any](v *T, err error) (*T, error) {
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (rs *restorer) bigJob(ctx context.Context, in domain.BigJob) (string, error) {
	if !domain.ValidSlug(in.Slug) {
		return "", invalid("big job slug %q is not kebab-case", in.Slug)
	}
	cur, err := lookup(rs.repo.GetBigJob(ctx, rs.orgID, in.Slug))
	if err != nil {
		return "", err
	}
	now := rs.svc.now().UTC()

	if cur != nil {
		if !rs.overwrite() {
			rs.res.BigJobs.Skipped++
			return cur.ID, nil
		}
		before := *cur
		cur.Name, cur.Description, cur.Tags = in.Name, in.Description, in.Tags
		cur.OrderIndex, cur.Status, cur.UpdatedAt = in.OrderIndex, restoredStatus(in.Status), now
		rs.res.BigJobs.Updated++
		return cur.ID, rs.write(ctx, domain.EntityBigJob, cur.ID, domain.ActionUpdate, before, cur, func() error {
			return rs.repo.UpdateBigJob(ctx, cur)
		})
	}

	b := &domain.BigJob{
		ID: uuid.New().String(), OrgID: rs.orgID, Slug: in.Slug, Name: in.Name,
		Description: in.Description, Tags: in.Tags, OrderIndex: in.OrderIndex,
		Status: restoredStatus(in.Status), CreatedAt: now, UpdatedAt: now,
	}
	rs.res.BigJobs.Created++
	return b.ID, rs.write(ctx, domain.EntityBigJob, b.ID, domain.ActionCreate, nil, b, func() error {
		return rs.repo.CreateBigJob(ctx, b)
	})
}

func (rs *restorer) littleJob(ctx context.Context, in domain.LittleJob, bigJobID string) (string, error) {
	if !domain.ValidSlug(in.Slug) {
		return "", invalid("little job slug %q is not kebab-case", in.Slug)
	}
	cur, err := lookup(rs.repo.GetLittleJob(ctx, rs.orgID, in.Slug))
	if err != nil {
		return "", err
	}
	now := rs.svc.now().UTC()

	if cur != nil {
		if !rs.overwrite() {
			rs.res.LittleJobs.Skipped++
			return cur.ID, nil
		}
		before := *cur
		cur.BigJobID, cur.Name, cur.Description = bigJobID, in.Name, in.Description
		cur.OrderIndex, cur.Status, cur.UpdatedAt = in.OrderIndex, restoredStatus(in.Status), now
		rs.res.LittleJobs.Updated++
		return cur.ID, rs.write(ctx, domain.EntityLittleJob, cur.ID, domain.ActionUpdate, before, cur, func() error {
			return rs.repo.UpdateLittleJob(ctx, cur)
		})
	}

	l := &domain.LittleJob{
		ID: uuid.New().String(), OrgID: rs.orgID, BigJobID: bigJobID, Slug: in.Slug, Name: in.Name,
		Description: in.Description, OrderIndex: in.OrderIndex,
		Status: restoredStatus(in.Status), CreatedAt: now, UpdatedAt: now,
	}
	rs.res.LittleJobs.Created++
	return l.ID, rs.write(ctx, domain.EntityLittleJob, l.ID, domain.ActionCreate, nil, l, func() error {
		return rs.repo.CreateLittleJob(ctx, l)
	})
}

func (rs *restorer) outcome(ctx context.Context, in domain.Outcome, littleJobID string) (string, error) {
	if !domain.ValidSlug(in.Slug) {
		return "", invalid("outcome slug %q is not kebab-case", in.Slug)
	}
	cur, err := lookup(rs.repo.GetOutcome(ctx, rs.orgID, in.Slug))
	if err != nil {
		return "", err
	}
	now := rs.svc.now().UTC()

	if cur != nil {
		if !rs.overwrite() {
			rs.res.Outcomes.Skipped++
			return cur.ID, nil
		}
		before := *cur
		cur.LittleJobID, cur.Name, cur.Description, cur.Tags = littleJobID, in.Name, in.Description, in.Tags
		cur.OrderIndex, cur.Status, cur.UpdatedAt = in.OrderIndex, restoredStatus(in.Status), now
		rs.res.Outcomes.Updated++
		return cur.ID, rs.write(ctx, domain.EntityOutcome, cur.ID, domain.ActionUpdate, before, cur, func() error {
			return rs.repo.UpdateOutcome(ctx, cur)
		})
	}

	o := &domain.Outcome{
		ID: uuid.New().String(), OrgID: rs.orgID, LittleJobID: littleJobID, Slug: in.Slug, Name: in.Name,
		Description: in.Description, Tags: in.Tags, OrderIndex: in.OrderIndex,
		Status: restoredStatus(in.Status), CreatedAt: now, UpdatedAt: now,
	}
	rs.res.Outcomes.Created++
	return o.ID, rs.write(ctx, domain.EntityOutcome, o.ID, domain.ActionCreate, nil, o, func() error {
		return rs.repo.CreateOutcome(ctx, o)
	})
}

// survey resolves a snapshot survey to a target survey id and returns the
// outcomes that target already has results for.
func (rs *restorer) survey(ctx context.Context, in domain.Survey) (string, map[string]bool, error) {
	cur, err := lookup(rs.repo.GetSurvey(ctx, rs.orgID, in.Code))
	if err != nil {
		return "", nil, err
	}

	known := make(map[string]bool)
	if cur != nil {
		results, err := rs.repo.ListOutcomeResults(ctx, rs.orgID, cur.ID)
		if err != nil {
			return "", nil, err
		}
		for _, r := range results {
			known[r.OutcomeID] = true
		}
		if !rs.overwrite() {
			rs.res.Surveys.Skipped++
			return cur.ID, known, nil
		}
		rs.res.Surveys.Updated++
	} else {
		rs.res.Surveys.Created++
	}

	sv := &domain.Survey{OrgID: rs.orgID, Code: in.Code, Name: in.Name, Date: in.Date, Description: in.Description}
	if rs.opts.DryRun {
		if cur != nil {
			return cur.ID, known, nil
		}
		return uuid.New().String(), known, nil
	}
	if err := rs.repo.UpsertSurvey(ctx, sv); err != nil {
		return "", nil, err
	}
	var before any
	if cur != nil {
		before = cur
	}
	if err := rs.svc.record(ctx, rs.repo, rs.orgID, domain.EntitySurvey, sv.ID, domain.ActionUpsert, before, sv); err != nil {
		return "", nil, err
	}
	return sv.ID, known, nil
}
