package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTurnSpinnerShowsElapsedSecondsOnSlowCalls(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	model := newTurnSpinnerModel("Waiting for the model...", func() time.Time { return now })

	assert.Contains(t, model.View(), "Waiting for the model...")
	assert.NotContains(t, model.View(), "0s")

	now = now.Add(5 * time.Second)
	assert.Contains(t, model.View(), "Waiting for the model... 5s")
}

func TestTurnSpinnerClearsAndQuitsWhenDone(t *testing.T) {
	model := newTurnSpinnerModel("Scanning...", time.Now)

	updated, cmd := model.Update(turnDoneMsg{})

	assert.NotNil(t, cmd)
	assert.Empty(t, updated.View())
}
