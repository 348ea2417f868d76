package service

import (
	"context"
	"testing"
	"time"

	"github.com/bookdesk/librarian/internal/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOverdueRepo struct {
	fakeLoanRepo
	overdue []model.OverdueLoan
	err     error
}

func (f *fakeOverdueRepo) FindOverdue(context.Context, time.Time) ([]model.OverdueLoan, error) {
	return f.overdue, f.err
}

type fakeNotifier struct {
	sent    []string
	failFor map[string]bool
}

func (n *fakeNotifier) Send(_ context.Context, to, _, _ string) error {
	if n.failFor[to] {
		return errors.New("smtp rejected")
	}
	n.sent = append(n.sent, to)
	return nil
}

func TestOverdueService_SendNotices(t *testing.T) {
	t.Parallel()
	dueDate := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	repo := &fakeOverdueRepo{
		overdue: []model.OverdueLoan{
			{LoanUid: "uid-1", BookTitle: "Dune", Student: "alice", Email: "alice@example.com", DueDate: dueDate},
			{LoanUid: "uid-2", BookTitle: "Solaris", Student: "bob", Email: "", DueDate: dueDate},
			{LoanUid: "uid-3", BookTitle: "Neuromancer", Student: "carol", Email: "carol@example.com", DueDate: dueDate},
		},
	}
	notifier := &fakeNotifier{}
	svc := NewOverdueService(repo, notifier, zap.NewNop())

	sent, err := svc.SendNotices(context.Background(), dueDate.AddDate(0, 0, 6))
	require.NoError(t, err)
	// bob has no email on file and is skipped
	require.Equal(t, 2, sent)
	require.Equal(t, []string{"alice@example.com", "carol@example.com"}, notifier.sent)
}

func TestOverdueService_SendNoticesBestEffort(t *testing.T) {
	t.Parallel()
	dueDate := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	repo := &fakeOverdueRepo{
		overdue: []model.OverdueLoan{
			{LoanUid: "uid-1", BookTitle: "Dune", Student: "alice", Email: "alice@example.com", DueDate: dueDate},
			{LoanUid: "uid-2", BookTitle: "Solaris", Student: "bob", Email: "bob@example.com", DueDate: dueDate},
		},
	}
	notifier := &fakeNotifier{failFor: map[string]bool{"alice@example.com": true}}
	svc := NewOverdueService(repo, notifier, zap.NewNop())

	sent, err := svc.SendNotices(context.Background(), dueDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Equal(t, []string{"bob@example.com"}, notifier.sent)
}

func TestOverdueService_ScanFailure(t *testing.T) {
	t.Parallel()
	repo := &fakeOverdueRepo{err: errors.New("db down")}
	svc := NewOverdueService(repo, &fakeNotifier{}, zap.NewNop())

	_, err := svc.SendNotices(context.Background(), time.Now())
	require.Error(t, err)
}
