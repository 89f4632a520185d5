package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"skill-swap/internal/domain/matching"
	"skill-swap/internal/domain/swap"
	"skill-swap/internal/pkg/tracing"
	"skill-swap/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Notifier interface {
	Emit(ctx context.Context, ev swap.Event)
}

type ProposeSwapInput struct {
	CounterpartID  uuid.UUID
	SkillOffered   string
	SkillRequested string
	Message        string
}

type CompleteSwapResult struct {
	Swap      swap.View
	BothRated bool
}

type SwapUsecase interface {
	Propose(ctx context.Context, actor uuid.UUID, in ProposeSwapInput) (swap.View, error)
	Respond(ctx context.Context, actor, swapID uuid.UUID, decision string) (swap.View, error)
	Cancel(ctx context.Context, actor, swapID uuid.UUID) (swap.View, error)
	Complete(ctx context.Context, actor, swapID uuid.UUID, rating int, feedback string) (CompleteSwapResult, error)
	UpdateProgress(ctx context.Context, actor, swapID uuid.UUID, progress int) (swap.View, error)
	Get(ctx context.Context, actor, swapID uuid.UUID) (swap.View, error)
	ListActive(ctx context.Context, actor uuid.UUID) ([]swap.View, error)
	ListCompleted(ctx context.Context, actor uuid.UUID) ([]swap.View, error)
}

type SwapDeps struct {
	Swaps    repository.SwapRepository
	Users    repository.UserRepository
	Skills   repository.UserSkillRepository
	Cache    SwapCache
	Notifier Notifier
	Logger   *log.Logger
	CacheTTL time.Duration
}

// Swap drives the lifecycle of skill swaps. It holds no per-swap state;
// serialization of writes to one swap is the store's job.
type Swap struct {
	swaps    repository.SwapRepository
	users    repository.UserRepository
	skills   repository.UserSkillRepository
	cache    SwapCache
	notifier Notifier
	logger   *log.Logger
	cacheTTL time.Duration

	now   func() time.Time
	newID func() uuid.UUID
}

func NewSwapUsecase(d SwapDeps) *Swap {
	return &Swap{
		swaps:    d.Swaps,
		users:    d.Users,
		skills:   d.Skills,
		cache:    d.Cache,
		notifier: d.Notifier,
		logger:   d.Logger,
		cacheTTL: d.CacheTTL,
		now:      time.Now,
		newID:    uuid.New,
	}
}

func (u *Swap) Propose(ctx context.Context, actor uuid.UUID, in ProposeSwapInput) (out swap.View, err error) {
	ctx, span := u.start(ctx, "swap.Propose", actor, uuid.Nil)
	defer func() { endSpan(span, err) }()

	now := u.now()
	pending, err := swap.NewPending(swap.ProposeInput{
		Proposer:       actor,
		Counterpart:    in.CounterpartID,
		SkillOffered:   in.SkillOffered,
		SkillRequested: in.SkillRequested,
		Message:        in.Message,
	}, u.newID(), now)
	if err != nil {
		return swap.View{}, err
	}

	exists, err := u.users.Exists(ctx, in.CounterpartID)
	if err != nil {
		return swap.View{}, u.internal("check counterpart", err)
	}
	if !exists {
		return swap.View{}, fmt.Errorf("%w: counterpart user does not exist", swap.ErrNotFound)
	}

	offered, err := u.skills.FindOffered(ctx, actor, pending.SkillOffered)
	if err != nil {
		if errors.Is(err, repository.ErrUserSkillNotFound) {
			return swap.View{}, fmt.Errorf("%w: you do not list %q", swap.ErrSkillNotOwned, pending.SkillOffered)
		}
		return swap.View{}, u.internal("lookup offered skill", err)
	}
	requested, err := u.skills.FindOffered(ctx, in.CounterpartID, pending.SkillRequested)
	if err != nil {
		if errors.Is(err, repository.ErrUserSkillNotFound) {
			return swap.View{}, fmt.Errorf("%w: counterpart does not list %q", swap.ErrSkillNotOwned, pending.SkillRequested)
		}
		return swap.View{}, u.internal("lookup requested skill", err)
	}

	if _, found, err := u.swaps.FindConflicting(ctx, actor, in.CounterpartID, pending.SkillOffered, pending.SkillRequested); err != nil {
		return swap.View{}, u.internal("find conflicting swap", err)
	} else if found {
		return swap.View{}, fmt.Errorf("%w: an active swap for this exchange already exists", swap.ErrConflict)
	}

	pending.MatchScore = u.score(ctx, actor, in.CounterpartID, offered, requested)

	created, err := u.swaps.Create(ctx, pending)
	if err != nil {
		return swap.View{}, u.storeError("create swap", err)
	}

	u.logf("[Swap] proposed swap_id=%s proposer=%s counterpart=%s match_score=%d", created.ID, actor, created.Counterpart, created.MatchScore)
	u.invalidate(ctx, created)
	u.emit(ctx, swap.NewEvent(swap.EventProposed, created.Counterpart, actor, created, now))

	return u.project(ctx, actor, created)
}

func (u *Swap) Respond(ctx context.Context, actor, swapID uuid.UUID, decision string) (out swap.View, err error) {
	ctx, span := u.start(ctx, "swap.Respond", actor, swapID)
	defer func() { endSpan(span, err) }()

	d, err := swap.ParseDecision(decision)
	if err != nil {
		return swap.View{}, err
	}

	now := u.now()
	updated, err := u.swaps.Update(ctx, swapID, func(s *swap.Swap) error {
		return s.Respond(actor, d, now)
	})
	if err != nil {
		return swap.View{}, u.storeError("respond to swap", err)
	}

	evType := swap.EventAccepted
	if updated.Status == swap.StatusRejected {
		evType = swap.EventRejected
	}
	u.logf("[Swap] responded swap_id=%s decision=%s actor=%s", updated.ID, d, actor)
	u.invalidate(ctx, updated)
	u.emit(ctx, swap.NewEvent(evType, updated.Proposer, actor, updated, now))

	return u.project(ctx, actor, updated)
}

func (u *Swap) Cancel(ctx context.Context, actor, swapID uuid.UUID) (out swap.View, err error) {
	ctx, span := u.start(ctx, "swap.Cancel", actor, swapID)
	defer func() { endSpan(span, err) }()

	now := u.now()
	updated, err := u.swaps.Update(ctx, swapID, func(s *swap.Swap) error {
		return s.Cancel(actor, now)
	})
	if err != nil {
		return swap.View{}, u.storeError("cancel swap", err)
	}

	u.logf("[Swap] cancelled swap_id=%s actor=%s", updated.ID, actor)
	u.invalidate(ctx, updated)
	u.emit(ctx, swap.NewEvent(swap.EventCancelled, updated.OtherParty(actor), actor, updated, now))

	return u.project(ctx, actor, updated)
}

// Complete records the actor's rating of the other party. The swap completes
// when the second rating lands; concurrent calls are serialized by the store so
// exactly one of them observes the transition.
func (u *Swap) Complete(ctx context.Context, actor, swapID uuid.UUID, rating int, feedback string) (out CompleteSwapResult, err error) {
	ctx, span := u.start(ctx, "swap.Complete", actor, swapID)
	defer func() { endSpan(span, err) }()

	if err := swap.ValidateRating(rating, feedback); err != nil {
		return CompleteSwapResult{}, err
	}

	now := u.now()
	var completedNow bool
	updated, err := u.swaps.Update(ctx, swapID, func(s *swap.Swap) error {
		done, err := s.Rate(actor, rating, feedback, now)
		completedNow = done
		return err
	})
	if err != nil {
		return CompleteSwapResult{}, u.storeError("complete swap", err)
	}

	other := updated.OtherParty(actor)
	u.logf("[Swap] rated swap_id=%s actor=%s rating=%d completed=%t", updated.ID, actor, rating, completedNow)
	u.invalidate(ctx, updated)
	u.emit(ctx, swap.NewEvent(swap.EventRated, other, actor, updated, now))
	if completedNow {
		u.emit(ctx, swap.NewEvent(swap.EventCompleted, updated.Proposer, actor, updated, now))
		u.emit(ctx, swap.NewEvent(swap.EventCompleted, updated.Counterpart, actor, updated, now))
	}

	view, err := u.project(ctx, actor, updated)
	if err != nil {
		return CompleteSwapResult{}, err
	}
	return CompleteSwapResult{Swap: view, BothRated: updated.BothRated()}, nil
}

func (u *Swap) UpdateProgress(ctx context.Context, actor, swapID uuid.UUID, progress int) (out swap.View, err error) {
	ctx, span := u.start(ctx, "swap.UpdateProgress", actor, swapID)
	defer func() { endSpan(span, err) }()

	now := u.now()
	updated, err := u.swaps.Update(ctx, swapID, func(s *swap.Swap) error {
		return s.SetProgress(actor, progress, now)
	})
	if err != nil {
		return swap.View{}, u.storeError("update progress", err)
	}

	u.invalidate(ctx, updated)
	u.emit(ctx, swap.NewEvent(swap.EventProgress, updated.OtherParty(actor), actor, updated, now))

	return u.project(ctx, actor, updated)
}

func (u *Swap) Get(ctx context.Context, actor, swapID uuid.UUID) (out swap.View, err error) {
	ctx, span := u.start(ctx, "swap.Get", actor, swapID)
	defer func() { endSpan(span, err) }()

	s, err := u.swaps.Get(ctx, swapID)
	if err != nil {
		return swap.View{}, u.storeError("get swap", err)
	}
	if !s.IsParticipant(actor) {
		return swap.View{}, fmt.Errorf("%w: not a participant in this swap", swap.ErrAuthorization)
	}
	return u.project(ctx, actor, s)
}

func (u *Swap) ListActive(ctx context.Context, actor uuid.UUID) (out []swap.View, err error) {
	ctx, span := u.start(ctx, "swap.ListActive", actor, uuid.Nil)
	defer func() { endSpan(span, err) }()

	return u.list(ctx, actor, swapListActive, u.swaps.FindActiveForUser)
}

func (u *Swap) ListCompleted(ctx context.Context, actor uuid.UUID) (out []swap.View, err error) {
	ctx, span := u.start(ctx, "swap.ListCompleted", actor, uuid.Nil)
	defer func() { endSpan(span, err) }()

	return u.list(ctx, actor, swapListCompleted, u.swaps.FindCompletedForUser)
}

func (u *Swap) list(ctx context.Context, actor uuid.UUID, kind swapListKind, load func(context.Context, uuid.UUID) ([]swap.Swap, error)) ([]swap.View, error) {
	if actor == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", swap.ErrValidation)
	}

	// The generation is read before the store so a concurrent mutation moves
	// readers to a new key before this load could be cached under it.
	key := ""
	if u.cache != nil {
		gen, err := u.cache.Generation(ctx, SwapListGenerationKey(actor))
		if err != nil {
			u.logf("[Swap] cache generation read failed user_id=%s err=%v", actor, err)
		} else {
			key = swapListCacheKey(kind, actor, gen)
		}
	}

	var items []swap.Swap
	hit := false
	if key != "" {
		ok, err := u.cache.GetJSON(ctx, key, &items)
		if err != nil {
			u.logf("[Swap] cache read failed key=%s err=%v", key, err)
		}
		hit = ok && err == nil
	}

	if !hit {
		loaded, err := load(ctx, actor)
		if err != nil {
			return nil, u.storeError("list swaps", err)
		}
		items = loaded
		if key != "" {
			if err := u.cache.SetJSON(ctx, key, items, u.cacheTTL); err != nil {
				u.logf("[Swap] cache write failed key=%s err=%v", key, err)
			}
		}
	}

	profiles, err := u.profiles(ctx, swap.Participants(items))
	if err != nil {
		return nil, err
	}
	return swap.ProjectAll(actor, items, profiles), nil
}

func (u *Swap) project(ctx context.Context, viewer uuid.UUID, s swap.Swap) (swap.View, error) {
	profiles, err := u.profiles(ctx, []uuid.UUID{s.Proposer, s.Counterpart})
	if err != nil {
		return swap.View{}, err
	}
	return swap.Project(viewer, s, profiles)
}

func (u *Swap) profiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]swap.PublicProfile, error) {
	out := make(map[uuid.UUID]swap.PublicProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := u.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, u.internal("load profiles", err)
	}
	for id, usr := range users {
		out[id] = usr.PublicProfile()
	}
	return out, nil
}

func (u *Swap) score(ctx context.Context, proposer, counterpart uuid.UUID, offered, requested repository.UserSkill) int {
	proposerWants, err := u.skills.Wants(ctx, proposer, requested.SkillName)
	if err != nil {
		u.logf("[Swap] wants lookup failed user_id=%s err=%v", proposer, err)
	}
	counterpartWants, err := u.skills.Wants(ctx, counterpart, offered.SkillName)
	if err != nil {
		u.logf("[Swap] wants lookup failed user_id=%s err=%v", counterpart, err)
	}

	res := matching.Calculate(matching.SwapCandidate{
		Offered: matching.SkillHolding{
			SkillName:        offered.SkillName,
			ProficiencyLevel: offered.ProficiencyLevel,
			YearsExperience:  offered.YearsExperience,
		},
		Requested: matching.SkillHolding{
			SkillName:        requested.SkillName,
			ProficiencyLevel: requested.ProficiencyLevel,
			YearsExperience:  requested.YearsExperience,
		},
		ProposerWantsRequested:  proposerWants,
		CounterpartWantsOffered: counterpartWants,
	})
	return res.MatchScore
}

func (u *Swap) invalidate(ctx context.Context, s swap.Swap) {
	if u.cache == nil {
		return
	}
	keys := []string{SwapListGenerationKey(s.Proposer), SwapListGenerationKey(s.Counterpart)}
	if err := u.cache.BumpGeneration(ctx, keys...); err != nil {
		u.logf("[Swap] cache invalidation failed swap_id=%s err=%v", s.ID, err)
	}
}

func (u *Swap) emit(ctx context.Context, ev swap.Event) {
	if u.notifier == nil {
		return
	}
	u.notifier.Emit(ctx, ev)
}

func (u *Swap) storeError(op string, err error) error {
	out := translateStoreError(err)
	if errors.Is(out, ErrInternal) {
		u.logf("[Swap] %s failed err=%v", op, err)
	}
	return out
}

func (u *Swap) internal(op string, err error) error {
	u.logf("[Swap] %s failed err=%v", op, err)
	return fmt.Errorf("%w: %s", ErrInternal, op)
}

func (u *Swap) logf(format string, args ...any) {
	if u.logger != nil {
		u.logger.Printf(format, args...)
	}
}

func (u *Swap) start(ctx context.Context, name string, actor, swapID uuid.UUID) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("user.id", actor.String())}
	if swapID != uuid.Nil {
		attrs = append(attrs, attribute.String("swap.id", swapID.String()))
	}
	return tracing.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
