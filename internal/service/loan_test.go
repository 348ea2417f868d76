package service

import (
	"context"
	"testing"
	"time"

	"github.com/bookdesk/librarian/internal/errs"
	"github.com/bookdesk/librarian/internal/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLoanRepo struct {
	borrowGot struct {
		bookID     int64
		student    string
		borrowDate time.Time
		dueDate    time.Time
	}
	borrowLoan model.Loan
	borrowErr  error
	returnLoan model.Loan
	returnErr  error
}

func (f *fakeLoanRepo) Borrow(_ context.Context, bookID int64, student string, borrowDate, dueDate time.Time) (model.Loan, error) {
	f.borrowGot.bookID = bookID
	f.borrowGot.student = student
	f.borrowGot.borrowDate = borrowDate
	f.borrowGot.dueDate = dueDate
	return f.borrowLoan, f.borrowErr
}

func (f *fakeLoanRepo) Return(_ context.Context, _ int64, _ string, _ time.Time) (model.Loan, error) {
	return f.returnLoan, f.returnErr
}

func (f *fakeLoanRepo) ListByStudent(context.Context, string) ([]model.LoanView, error) {
	return nil, nil
}
func (f *fakeLoanRepo) ListAll(context.Context) ([]model.LoanView, error)  { return nil, nil }
func (f *fakeLoanRepo) HasOpenLoan(context.Context, int64, string) (bool, error) {
	return false, nil
}
func (f *fakeLoanRepo) FindOverdue(context.Context, time.Time) ([]model.OverdueLoan, error) {
	return nil, nil
}

type capturingPublisher struct {
	topic  string
	events []model.LoanEvent
	err    error
}

func (p *capturingPublisher) Publish(topic string, v any) error {
	p.topic = topic
	p.events = append(p.events, v.(model.LoanEvent))
	return p.err
}

func TestLoanService_BorrowDueDate(t *testing.T) {
	t.Parallel()
	repo := &fakeLoanRepo{
		borrowLoan: model.Loan{LoanUid: "uid-1", BookID: 7, Student: "alice"},
	}
	svc := NewLoanService(repo, nil, 0, zap.NewNop())
	now := time.Date(2025, 9, 1, 15, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.Borrow(context.Background(), 7, "alice")
	require.NoError(t, err)

	require.Equal(t, int64(7), repo.borrowGot.bookID)
	require.Equal(t, "alice", repo.borrowGot.student)
	require.Equal(t, now, repo.borrowGot.borrowDate)
	require.Equal(t, now.AddDate(0, 0, DefaultLoanPeriodDays), repo.borrowGot.dueDate)
}

func TestLoanService_ConfiguredPeriod(t *testing.T) {
	t.Parallel()
	repo := &fakeLoanRepo{}
	svc := NewLoanService(repo, nil, 7, zap.NewNop())
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.Borrow(context.Background(), 1, "bob")
	require.NoError(t, err)
	require.Equal(t, now.AddDate(0, 0, 7), repo.borrowGot.dueDate)
}

func TestLoanService_PublishesEvents(t *testing.T) {
	t.Parallel()
	repo := &fakeLoanRepo{
		borrowLoan: model.Loan{LoanUid: "uid-1", BookID: 7, Student: "alice"},
		returnLoan: model.Loan{LoanUid: "uid-1", BookID: 7, Student: "alice", Returned: true},
	}
	pub := &capturingPublisher{}
	svc := NewLoanService(repo, pub, 0, zap.NewNop())

	_, err := svc.Borrow(context.Background(), 7, "alice")
	require.NoError(t, err)
	_, err = svc.Return(context.Background(), 7, "alice")
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	require.Equal(t, model.EventBorrowed, pub.events[0].Kind)
	require.Equal(t, model.EventReturned, pub.events[1].Kind)
	require.Equal(t, "uid-1", pub.events[0].LoanUid)
}

func TestLoanService_NoEventOnFailedBorrow(t *testing.T) {
	t.Parallel()
	repo := &fakeLoanRepo{borrowErr: errs.ErrNotAvailable}
	pub := &capturingPublisher{}
	svc := NewLoanService(repo, pub, 0, zap.NewNop())

	_, err := svc.Borrow(context.Background(), 7, "alice")
	require.ErrorIs(t, err, errs.ErrNotAvailable)
	require.Empty(t, pub.events)
}

func TestLoanService_PublishFailureDoesNotFailBorrow(t *testing.T) {
	t.Parallel()
	repo := &fakeLoanRepo{
		borrowLoan: model.Loan{LoanUid: "uid-1", BookID: 7, Student: "alice"},
	}
	pub := &capturingPublisher{err: errors.New("broker down")}
	svc := NewLoanService(repo, pub, 0, zap.NewNop())

	_, err := svc.Borrow(context.Background(), 7, "alice")
	require.NoError(t, err)
}
