package moodLightService

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/KotFed0t/portfolio_mood_light/config"
	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/KotFed0t/portfolio_mood_light/internal/service/moodClassifier"
	"github.com/KotFed0t/portfolio_mood_light/internal/service/valuator"
	"github.com/KotFed0t/portfolio_mood_light/utils"
	"github.com/shopspring/decimal"
)

type QuoteService interface {
	Fetch(ctx context.Context, symbols []string) map[string]model.QuoteResult
}

type Actuator interface {
	SetMood(ctx context.Context, mood model.Mood) error
	TurnOff(ctx context.Context) error
}

type Reporter interface {
	Report(ctx context.Context, result model.CycleResult) error
}

// State is everything one cycle hands to the next.
type State struct {
	PrevMood        *model.Mood
	LastActuationOK bool
	Cycles          int
}

type MoodLightService struct {
	holdings  []model.Holding
	quotes    QuoteService
	actuator  Actuator
	reporters []Reporter

	signal        model.MoodSignal
	policy        model.MissingQuotePolicy
	flatBandPct   decimal.Decimal
	skipUnchanged bool
	offOnExit     bool
	now           func() time.Time

	// mu serialises Tick calls and guards state between them.
	mu    sync.Mutex
	state State
}

// New takes holdings loaded once at startup.
func New(cfg *config.Config, holdings []model.Holding, quotes QuoteService, actuator Actuator, reporters ...Reporter) *MoodLightService {
	return &MoodLightService{
		holdings:      holdings,
		quotes:        quotes,
		actuator:      actuator,
		reporters:     reporters,
		signal:        model.MoodSignal(cfg.Mood.Signal),
		policy:        model.MissingQuotePolicy(cfg.Mood.MissingQuotePolicy),
		flatBandPct:   cfg.Mood.FlatBandPct,
		skipUnchanged: cfg.Light.SkipUnchanged,
		offOnExit:     cfg.Light.OffOnExit,
		now:           time.Now,
	}
}

// RunCycle runs fetch, compute, classify, actuate and report once. Failures inside the cycle end up
// in the result and the returned state. It only returns an error when ctx is done before the cycle
// starts or while quotes are fetched; the state is then returned unchanged.
func (s *MoodLightService) RunCycle(ctx context.Context, state State) (State, model.CycleResult, error) {
	if err := ctx.Err(); err != nil {
		return state, model.CycleResult{}, err
	}

	ctx = utils.CreateCtxWithCycleID(ctx)
	cycleID := utils.GetCycleIDFromCtx(ctx)
	op := "MoodLightService.RunCycle"

	slog.Info("cycle start", slog.String("cycleID", cycleID), slog.String("op", op), slog.Int("cycle", state.Cycles+1))

	symbols := make([]string, 0, len(s.holdings))
	for _, h := range s.holdings {
		symbols = append(symbols, h.Symbol)
	}

	var quotes map[string]model.QuoteResult
	if len(symbols) > 0 {
		quotes = s.quotes.Fetch(ctx, symbols)
	}

	// interrupted during the fetch: leave the light as it is
	if err := ctx.Err(); err != nil {
		slog.Info("cycle interrupted", slog.String("cycleID", cycleID), slog.String("op", op))
		return state, model.CycleResult{}, err
	}

	snap := valuator.Compute(s.holdings, quotes, s.policy, s.now())
	if snap.Partial() {
		slog.Warn("missing quotes", slog.String("cycleID", cycleID), slog.String("op", op), slog.Any("symbols", snap.MissingQuotes))
	}
	if snap.Degraded {
		slog.Warn("no usable data this cycle, mood stays flat", slog.String("cycleID", cycleID), slog.String("op", op))
	}

	mood := moodClassifier.Classify(snap, s.signal, s.flatBandPct)

	result := model.CycleResult{
		CycleID:  cycleID,
		Snapshot: snap,
		Mood:     mood,
		PrevMood: state.PrevMood,
	}

	next := State{
		PrevMood:        &mood,
		LastActuationOK: state.LastActuationOK,
		Cycles:          state.Cycles + 1,
	}

	if s.skipUnchanged && !result.MoodChanged() && state.LastActuationOK {
		slog.Debug("mood unchanged, light left as is", slog.String("cycleID", cycleID), slog.String("op", op))
	} else {
		err := s.actuator.SetMood(ctx, mood)
		next.LastActuationOK = err == nil
		result.Actuated = err == nil
		if err != nil {
			result.ActuatorErr = err.Error()
		}
	}

	result.FinishedAt = s.now()

	s.report(ctx, result)

	slog.Info("cycle finished", slog.String("cycleID", cycleID), slog.String("op", op),
		slog.String("mood", mood.String()), slog.Bool("degraded", snap.Degraded), slog.Bool("actuated", result.Actuated))

	return next, result, nil
}

func (s *MoodLightService) report(ctx context.Context, result model.CycleResult) {
	for _, r := range s.reporters {
		if err := r.Report(ctx, result); err != nil {
			slog.Error("reporter failed", slog.String("cycleID", result.CycleID), slog.String("op", "MoodLightService.report"), slog.String("err", err.Error()))
		}
	}
}

// Tick is the scheduler job: one cycle with the state kept from the previous tick.
func (s *MoodLightService) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, _, err := s.RunCycle(ctx, s.state)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return err
	}
	s.state = next

	return nil
}

// RunOnce runs a single cycle from an empty state.
func (s *MoodLightService) RunOnce(ctx context.Context) (model.CycleResult, error) {
	_, result, err := s.RunCycle(ctx, State{})
	return result, err
}

func (s *MoodLightService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Shutdown turns the light off when configured to. ctx should outlive the cancelled run context.
func (s *MoodLightService) Shutdown(ctx context.Context) error {
	if !s.offOnExit {
		return nil
	}
	return s.actuator.TurnOff(ctx)
}
