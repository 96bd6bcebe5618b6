package ptal

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ptalsvc/internal/domain"
)

// RecordLocker serializes reconciliations of the same record. Lock blocks
// until the key is free and returns the matching unlock.
type RecordLocker interface {
	Lock(key int64) (unlock func())
}

// Options carry the display policies that earlier revisions of this logic
// kept flip-flopping on; they are config now, not code.
type Options struct {
	// AllowedOwner restricts announcements to PRs of one owner/org when set.
	AllowedOwner string
	// ShowBotReviews includes bot-authored reviews in the displayed list.
	// Status derivation always ignores bots regardless.
	ShowBotReviews bool
	// RolePing is an optional chat role id mentioned in every announcement.
	RolePing string
}

type CreateInput struct {
	Owner       string
	Repository  string
	PRNumber    int
	Description string
	ChannelID   string
	Requester   string
}

type Service interface {
	CreateAnnouncement(ctx context.Context, in CreateInput) (Record, DisplayPayload, error)
	Reconcile(ctx context.Context, rec Record) (Outcome, error)
	HandleEvent(ctx context.Context, e domain.Event)
	Sweep(ctx context.Context)
}

type service struct {
	uow     domain.UnitOfWork
	records Repository
	github  GitHubClient
	chat    ChatClient
	render  Renderer
	locks   RecordLocker
	opts    Options
	log     *zap.Logger
	now     func() time.Time
}

func NewService(
	uow domain.UnitOfWork,
	records Repository,
	github GitHubClient,
	chat ChatClient,
	render Renderer,
	locks RecordLocker,
	opts Options,
	log *zap.Logger,
) Service {
	return &service{
		uow:     uow,
		records: records,
		github:  github,
		chat:    chat,
		render:  render,
		locks:   locks,
		opts:    opts,
		log:     log,
		now:     time.Now,
	}
}

func (s *service) CreateAnnouncement(ctx context.Context, in CreateInput) (Record, DisplayPayload, error) {
	if in.Owner == "" || in.Repository == "" || in.PRNumber <= 0 {
		return Record{}, DisplayPayload{}, domain.ValidationError("owner, repository and a positive PR number are required")
	}
	if in.ChannelID == "" {
		return Record{}, DisplayPayload{}, domain.ValidationError("channel_id is required")
	}
	if s.opts.AllowedOwner != "" && in.Owner != s.opts.AllowedOwner {
		return Record{}, DisplayPayload{}, domain.ValidationError(
			fmt.Sprintf("PR must belong to %q", s.opts.AllowedOwner))
	}

	pr, raw, err := s.fetchPRState(ctx, in.Owner, in.Repository, in.PRNumber)
	if err != nil {
		return Record{}, DisplayPayload{}, err
	}

	rec := Record{
		ChannelID:   in.ChannelID,
		Owner:       in.Owner,
		Repository:  in.Repository,
		PRNumber:    in.PRNumber,
		Description: in.Description,
		Requester:   in.Requester,
	}

	payload := s.renderState(rec, pr, raw)

	messageID, err := s.chat.SendMessage(ctx, in.ChannelID, payload)
	if err != nil {
		return Record{}, DisplayPayload{}, err
	}
	rec.MessageID = messageID

	var created Record
	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.records.Create(ctx, rec)
		return err
	})
	if err != nil {
		// The message exists but nothing tracks it; best effort removal so a
		// conflict does not leave a never-updated announcement behind.
		if delErr := s.chat.DeleteMessage(ctx, in.ChannelID, messageID); delErr != nil {
			s.log.Warn("failed to remove untracked announcement",
				zap.String("channel_id", in.ChannelID),
				zap.String("message_id", messageID),
				zap.Error(delErr),
			)
		}
		return Record{}, DisplayPayload{}, err
	}

	return created, payload, nil
}

// Reconcile refetches source truth for one record and converges the rendered
// message on it. Safe to retry any number of times: every run recomputes from
// scratch and never reads its own prior output.
func (s *service) Reconcile(ctx context.Context, rec Record) (Outcome, error) {
	unlock := s.locks.Lock(rec.ID)
	defer unlock()

	pr, raw, err := s.fetchPRState(ctx, rec.Owner, rec.Repository, rec.PRNumber)
	if err != nil {
		if domain.IsNotFound(err) {
			return s.retire(ctx, rec, OutcomeOrphaned)
		}
		return "", err
	}

	if err := s.chat.FetchMessage(ctx, rec.ChannelID, rec.MessageID); err != nil {
		if domain.IsNotFound(err) {
			return s.retire(ctx, rec, OutcomeOrphaned)
		}
		return "", err
	}

	statusReviews := DedupeReviews(raw, DedupePolicy{})
	status := DeriveStatus(pr, statusReviews)
	payload := s.renderState(rec, pr, raw)

	if err := s.chat.EditMessage(ctx, rec.ChannelID, rec.MessageID, payload); err != nil {
		if status == StatusMerged && !domain.IsNotFound(err) {
			// The record must survive until a merged render is confirmed.
			return "", domain.ConsistencyError("merged state rendered stale", err)
		}
		if domain.IsNotFound(err) {
			return s.retire(ctx, rec, OutcomeOrphaned)
		}
		return "", err
	}

	if status == StatusMerged {
		return s.retire(ctx, rec, OutcomeRetired)
	}

	return OutcomeUpdated, nil
}

func (s *service) retire(ctx context.Context, rec Record, out Outcome) (Outcome, error) {
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		return s.records.Delete(ctx, rec.ID)
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// HandleEvent fans an inbound PR event out to every matching record. Failures
// are isolated per record; a broken one never blocks its siblings.
func (s *service) HandleEvent(ctx context.Context, e domain.Event) {
	recs, err := s.records.GetByPRIdentity(ctx, e.Owner, e.Repo, e.PRNumber)
	if err != nil {
		s.log.Error("record lookup failed",
			zap.String("owner", e.Owner),
			zap.String("repo", e.Repo),
			zap.Int("pr_number", e.PRNumber),
			zap.Error(err),
		)
		return
	}
	if len(recs) == 0 {
		return
	}

	s.reconcileAll(ctx, recs, string(e.Kind))
}

// Sweep reconciles every record, healing announcements whose triggering event
// was lost or arrived before the remote state had settled.
func (s *service) Sweep(ctx context.Context) {
	recs, err := s.records.GetAll(ctx)
	if err != nil {
		s.log.Error("sweep enumeration failed", zap.Error(err))
		return
	}

	s.reconcileAll(ctx, recs, "sweep")
}

func (s *service) reconcileAll(ctx context.Context, recs []Record, trigger string) {
	for _, rec := range recs {
		out, err := s.Reconcile(ctx, rec)
		if err != nil {
			s.log.Warn("reconcile failed",
				zap.String("trigger", trigger),
				zap.Int64("record_id", rec.ID),
				zap.String("message_id", rec.MessageID),
				zap.Error(err),
			)
			continue
		}

		s.log.Info("reconciled",
			zap.String("trigger", trigger),
			zap.Int64("record_id", rec.ID),
			zap.String("outcome", string(out)),
		)
	}
}

// fetchPRState issues the PR and review reads concurrently; both must land
// before anything downstream runs.
func (s *service) fetchPRState(ctx context.Context, owner, repo string, number int) (PRDetail, []RawReview, error) {
	type prResult struct {
		pr  PRDetail
		err error
	}

	prCh := make(chan prResult, 1)
	go func() {
		pr, err := s.github.FetchPR(ctx, owner, repo, number)
		prCh <- prResult{pr: pr, err: err}
	}()

	raw, reviewsErr := s.github.FetchReviews(ctx, owner, repo, number)
	res := <-prCh

	if res.err != nil {
		return PRDetail{}, nil, res.err
	}
	if reviewsErr != nil {
		return PRDetail{}, nil, reviewsErr
	}

	return res.pr, raw, nil
}

func (s *service) renderState(rec Record, pr PRDetail, raw []RawReview) DisplayPayload {
	statusReviews := DedupeReviews(raw, DedupePolicy{})

	displayReviews := statusReviews
	if s.opts.ShowBotReviews {
		displayReviews = DedupeReviews(raw, DedupePolicy{IncludeBots: true})
	}

	return s.render(RenderInput{
		Status:      DeriveStatus(pr, statusReviews),
		Title:       pr.Title,
		Reviews:     displayReviews,
		Description: rec.Description,
		PRURL:       rec.PRURL(),
		RepoSlug:    fmt.Sprintf("%s/%s#%d", rec.Owner, rec.Repository, rec.PRNumber),
		Requester:   rec.Requester,
		RolePing:    s.opts.RolePing,
		Timestamp:   s.now(),
	})
}
