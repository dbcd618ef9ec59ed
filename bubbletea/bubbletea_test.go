package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/playground"
	bt "github.com/fwojciec/playground/bubbletea"
	"github.com/stretchr/testify/require"
)

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, run bt.RunFunc) bt.Model {
	t.Helper()
	return initModelWith(t, run, bt.Config{}, 80, 24)
}

// initModelWith creates a model with a custom config and terminal size.
func initModelWith(t *testing.T, run bt.RunFunc, config bt.Config, width, height int) bt.Model {
	t.Helper()
	m := bt.New(run, playground.DefaultTheme(), config)
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// send delivers events as the stream would.
func send(t *testing.T, m bt.Model, events ...playground.Event) bt.Model {
	t.Helper()
	for _, e := range events {
		m = updateModel(t, m, bt.StreamEventMsg{Event: e})
	}
	return m
}

// nopRun is a run function that does nothing.
func nopRun(context.Context, string, func(playground.Event)) error {
	return nil
}
