package lightActuator

import (
	"context"
	"errors"
	"testing"

	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLight struct {
	calls    []string
	colours  []model.RGB
	failures int
}

func (m *mockLight) fail() error {
	if m.failures > 0 {
		m.failures--
		return errors.New("device offline")
	}
	return nil
}

func (m *mockLight) SetColour(_ context.Context, rgb model.RGB) error {
	m.calls = append(m.calls, "colour")
	m.colours = append(m.colours, rgb)
	return m.fail()
}

func (m *mockLight) SetWhite(_ context.Context) error {
	m.calls = append(m.calls, "white")
	return m.fail()
}

func (m *mockLight) TurnOff(_ context.Context) error {
	m.calls = append(m.calls, "off")
	return m.fail()
}

func newTestActuator(light Light, retries uint64) *Actuator {
	return &Actuator{
		light:      light,
		maxRetries: retries,
		newBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	}
}

func TestSetMoodColours(t *testing.T) {
	light := &mockLight{}
	a := newTestActuator(light, 0)

	require.NoError(t, a.SetMood(context.Background(), model.MoodGain))
	require.NoError(t, a.SetMood(context.Background(), model.MoodLoss))
	require.NoError(t, a.SetMood(context.Background(), model.MoodFlat))

	assert.Equal(t, []string{"colour", "colour", "white"}, light.calls)
	assert.Equal(t, []model.RGB{{G: 255}, {R: 255}}, light.colours)
}

func TestSetMoodIsIdempotent(t *testing.T) {
	light := &mockLight{}
	a := newTestActuator(light, 0)

	require.NoError(t, a.SetMood(context.Background(), model.MoodGain))
	require.NoError(t, a.SetMood(context.Background(), model.MoodGain))

	assert.Equal(t, []string{"colour", "colour"}, light.calls)
	assert.Equal(t, light.colours[0], light.colours[1])
}

func TestSetMoodRetries(t *testing.T) {
	light := &mockLight{failures: 2}
	a := newTestActuator(light, 2)

	require.NoError(t, a.SetMood(context.Background(), model.MoodLoss))
	assert.Len(t, light.calls, 3)
}

func TestSetMoodReportsFailure(t *testing.T) {
	light := &mockLight{failures: 10}
	a := newTestActuator(light, 1)

	err := a.SetMood(context.Background(), model.MoodGain)
	require.ErrorIs(t, err, ErrActuator)
	assert.Len(t, light.calls, 2)
}

func TestTurnOff(t *testing.T) {
	light := &mockLight{}
	a := newTestActuator(light, 0)

	require.NoError(t, a.TurnOff(context.Background()))
	assert.Equal(t, []string{"off"}, light.calls)

	light.failures = 1
	require.ErrorIs(t, a.TurnOff(context.Background()), ErrActuator)
}

func TestLogLight(t *testing.T) {
	a := newTestActuator(NewLogLight(), 0)
	require.NoError(t, a.SetMood(context.Background(), model.MoodGain))
	require.NoError(t, a.SetMood(context.Background(), model.MoodFlat))
	require.NoError(t, a.TurnOff(context.Background()))
}
