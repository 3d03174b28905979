package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errServer = errors.New("server down")
	errClient = errors.New("bad request")
)

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := New[int](Settings{Name: "test", MaxFailures: 3, OpenTimeout: time.Minute}, nil)

	for i := 0; i < 3; i++ {
		_, err := b.Execute(func() (int, error) { return 0, errServer })
		require.ErrorIs(t, err, errServer)
	}

	calls := 0
	_, err := b.Execute(func() (int, error) {
		calls++
		return 1, nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 0, calls, "open breaker must not call through")
	assert.Equal(t, "open", b.State())
}

func TestBreaker_IgnoresNonFailures(t *testing.T) {
	b := New[int](Settings{
		Name:        "test",
		MaxFailures: 2,
		OpenTimeout: time.Minute,
		IsFailure:   func(err error) bool { return errors.Is(err, errServer) },
	}, nil)

	for i := 0; i < 5; i++ {
		_, err := b.Execute(func() (int, error) { return 0, errClient })
		require.ErrorIs(t, err, errClient)
	}
	assert.Equal(t, "closed", b.State())

	v, err := b.Execute(func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	b := New[string](Settings{Name: "test", MaxFailures: 1, OpenTimeout: 20 * time.Millisecond}, nil)

	_, err := b.Execute(func() (string, error) { return "", errServer })
	require.Error(t, err)
	assert.Equal(t, "open", b.State())

	time.Sleep(40 * time.Millisecond)

	v, err := b.Execute(func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, "closed", b.State())
}
