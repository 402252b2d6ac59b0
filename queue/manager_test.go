package queue_test

import (
	"testing"

	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/jrsteele09/viteviteapp/queue"
	fakequeuerepo "github.com/jrsteele09/viteviteapp/queue/repofake"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, m *queue.Manager, open bool) *queue.ServiceSummary {
	t.Helper()
	s, err := m.CreateService(queue.Service{Name: "Civil Registry", AvgMinutes: 5, Open: open})
	require.NoError(t, err)
	return s
}

func TestTakeTicketPositions(t *testing.T) {
	m := queue.NewManager(fakequeuerepo.NewFakeQueueRepo())
	s := newService(t, m, true)

	first, err := m.TakeTicket("u1", s.ID)
	require.NoError(t, err)
	require.Equal(t, 1, first.Number)
	require.Equal(t, 1, first.Position)
	require.Equal(t, 5, first.EstimatedWaitMinutes)
	require.Equal(t, "Civil Registry", first.ServiceName)

	second, err := m.TakeTicket("u2", s.ID)
	require.NoError(t, err)
	require.Equal(t, 2, second.Number)
	require.Equal(t, 1, second.Ahead)
	require.Equal(t, 10, second.EstimatedWaitMinutes)

	summary, err := m.GetService(s.ID)
	require.NoError(t, err)
	require.Equal(t, 2, summary.QueueLength)
}

func TestTakeTicketRules(t *testing.T) {
	m := queue.NewManager(fakequeuerepo.NewFakeQueueRepo())
	closed := newService(t, m, false)
	open := newService(t, m, true)

	_, err := m.TakeTicket("u1", closed.ID)
	require.ErrorIs(t, err, apperrors.ErrServiceClosed)

	_, err = m.TakeTicket("u1", "missing")
	require.ErrorIs(t, err, apperrors.ErrServiceNotFound)

	_, err = m.TakeTicket("u1", open.ID)
	require.NoError(t, err)
	_, err = m.TakeTicket("u1", open.ID)
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCancelTicket(t *testing.T) {
	m := queue.NewManager(fakequeuerepo.NewFakeQueueRepo())
	s := newService(t, m, true)

	first, err := m.TakeTicket("u1", s.ID)
	require.NoError(t, err)
	second, err := m.TakeTicket("u2", s.ID)
	require.NoError(t, err)

	_, err = m.CancelTicket("u2", first.ID, false)
	require.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	cancelled, err := m.CancelTicket("u1", first.ID, false)
	require.NoError(t, err)
	require.Equal(t, queue.StatusCancelled, cancelled.Status)
	require.Zero(t, cancelled.Position)

	_, err = m.CancelTicket("u1", first.ID, false)
	require.ErrorIs(t, err, apperrors.ErrTicketClosed)

	moved, err := m.GetTicket("u2", second.ID, false)
	require.NoError(t, err)
	require.Equal(t, 1, moved.Position)

	// a cancelled ticket frees the user to queue again
	_, err = m.TakeTicket("u1", s.ID)
	require.NoError(t, err)
}

func TestCallNext(t *testing.T) {
	m := queue.NewManager(fakequeuerepo.NewFakeQueueRepo())
	s := newService(t, m, true)

	first, err := m.TakeTicket("u1", s.ID)
	require.NoError(t, err)
	second, err := m.TakeTicket("u2", s.ID)
	require.NoError(t, err)

	called, err := m.CallNext(s.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, called.ID)
	require.Equal(t, queue.StatusCalled, called.Status)

	called, err = m.CallNext(s.ID)
	require.NoError(t, err)
	require.Equal(t, second.ID, called.ID)

	served, err := m.GetTicket("u1", first.ID, false)
	require.NoError(t, err)
	require.Equal(t, queue.StatusServed, served.Status)

	_, err = m.CallNext(s.ID)
	require.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	mine, err := m.MyTickets("u2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, queue.StatusServed, mine[0].Status)
}

func TestServiceAdmin(t *testing.T) {
	m := queue.NewManager(fakequeuerepo.NewFakeQueueRepo())

	_, err := m.CreateService(queue.Service{Name: "  "})
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	s := newService(t, m, true)
	ticket, err := m.TakeTicket("u1", s.ID)
	require.NoError(t, err)

	require.NoError(t, m.SetOpen(s.ID, false))
	summary, err := m.GetService(s.ID)
	require.NoError(t, err)
	require.False(t, summary.Open)

	require.NoError(t, m.DeleteService(s.ID))
	_, err = m.GetTicket("u1", ticket.ID, false)
	require.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	services, err := m.ListServices()
	require.NoError(t, err)
	require.Empty(t, services)
}
