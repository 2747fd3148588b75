package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPurger struct {
	mock.Mock
}

func (m *mockPurger) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func TestPurgeNotifications(t *testing.T) {
	p := &mockPurger{}
	p.On("PurgeRead", mock.Anything, 30*24*time.Hour).Return(int64(4), nil).Once()

	s := NewScheduler(p, 30*24*time.Hour)
	s.PurgeNotifications()

	p.AssertExpectations(t)
}

func TestPurgeNotificationsLogsErrors(t *testing.T) {
	p := &mockPurger{}
	p.On("PurgeRead", mock.Anything, time.Hour).Return(int64(0), errors.New("mongo down"))

	s := NewScheduler(p, time.Hour)
	assert.NotPanics(t, s.PurgeNotifications)
	p.AssertNumberOfCalls(t, "PurgeRead", 1)
}

func TestStartRegistersRetentionJob(t *testing.T) {
	s := NewScheduler(&mockPurger{}, time.Hour)
	require.NoError(t, s.Start())
	defer s.Stop()

	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	next := entries[0].Next.UTC()
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 0, next.Minute())
}

func TestStartWithoutRetention(t *testing.T) {
	s := NewScheduler(&mockPurger{}, 0)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Empty(t, s.cron.Entries())
}
