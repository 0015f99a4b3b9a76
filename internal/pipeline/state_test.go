package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
)

func TestCanTransition(t *testing.T) {
	forward := []State{StateIdle, StateProbing, StateComputingTimestamps, StateExtracting, StateEncoding, StateDone}
	for i := 0; i+1 < len(forward); i++ {
		assert.True(t, CanTransition(forward[i], forward[i+1]), "%s -> %s", forward[i], forward[i+1])
		assert.True(t, CanTransition(forward[i], StateFailed), "%s -> failed", forward[i])
	}

	illegal := [][2]State{
		{StateIdle, StateExtracting},
		{StateProbing, StateEncoding},
		{StateEncoding, StateProbing},
		{StateExtracting, StateExtracting},
		{StateDone, StateFailed},
		{StateFailed, StateIdle},
		{StateFailed, StateFailed},
	}
	for _, e := range illegal {
		assert.False(t, CanTransition(e[0], e[1]), "%s -> %s", e[0], e[1])
	}
}

func TestStateMachineRunsHookOnEveryEdge(t *testing.T) {
	var seen []string
	m := newStateMachine(func(from, to State) {
		seen = append(seen, from.String()+">"+to.String())
	})

	require.NoError(t, m.transition(StateProbing))
	require.NoError(t, m.transition(StateFailed))

	err := m.transition(StateComputingTimestamps)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternal, apperrors.GetCode(err))
	assert.Equal(t, StateFailed, m.current())
	assert.Equal(t, []string{"idle>probing", "probing>failed"}, seen)
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "computing_timestamps", StateComputingTimestamps.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.True(t, StateDone.Terminal())
	assert.False(t, StateEncoding.Terminal())
}

func TestFrameArenaIsContiguous(t *testing.T) {
	a := NewFrameArena()
	counts := []int{90, 88, 93}

	for _, n := range counts {
		_, err := a.Reserve(n)
		require.NoError(t, err)
	}

	next := 0
	for i, r := range a.Ranges() {
		assert.Equal(t, next, r.Start)
		assert.Equal(t, counts[i], r.Count)
		assert.Equal(t, r.Start+r.Count-1, r.Last())
		next = r.End()
	}
	assert.Equal(t, 271, a.Total())
	assert.Equal(t, next, a.Total())

	_, err := a.Reserve(0)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 271, a.Total())
}

func TestOutputGuard(t *testing.T) {
	g := newOutputGuard()

	release, err := g.acquire("out/final.mp4", "job-a")
	require.NoError(t, err)

	_, err = g.acquire("./out/../out/final.mp4", "job-b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job-a")

	other, err := g.acquire("out/other.mp4", "job-b")
	require.NoError(t, err)
	other()

	release()
	release()
	again, err := g.acquire("out/final.mp4", "job-c")
	require.NoError(t, err)
	again()
}

func TestWorkspaceRelease(t *testing.T) {
	root := t.TempDir()

	ws, err := newWorkspace(root, "0123456789abcdef")
	require.NoError(t, err)
	assert.DirExists(t, ws.frames)
	assert.Contains(t, ws.dir, "speedramp-01234567-")

	require.NoError(t, ws.release(false))
	assert.NoDirExists(t, ws.dir)
	require.NoError(t, ws.release(false))

	kept, err := newWorkspace(root, "job")
	require.NoError(t, err)
	require.NoError(t, kept.release(true))
	assert.DirExists(t, kept.dir)
}
