package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/healthvault/internal/domain/job"
	"github.com/geocoder89/healthvault/internal/jobs"
	"github.com/geocoder89/healthvault/internal/notifications"
)

type fakeJobsRepo struct {
	claimFn      func(ctx context.Context, workerID string) (job.Job, error)
	doneIDs      []string
	failedIDs    []string
	failedErrs   []string
	rescheduled  []string
	rescheduleAt []time.Time
}

func (f *fakeJobsRepo) ClaimNext(ctx context.Context, workerID string) (job.Job, error) {
	if f.claimFn != nil {
		return f.claimFn(ctx, workerID)
	}
	return job.Job{}, job.ErrJobNotFound
}

func (f *fakeJobsRepo) MarkDone(ctx context.Context, id string) error {
	f.doneIDs = append(f.doneIDs, id)
	return nil
}

func (f *fakeJobsRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	f.failedIDs = append(f.failedIDs, id)
	f.failedErrs = append(f.failedErrs, errMsg)
	return nil
}

func (f *fakeJobsRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	f.rescheduled = append(f.rescheduled, id)
	f.rescheduleAt = append(f.rescheduleAt, runAt)
	return nil
}

type fakeNotifier struct {
	sent []notifications.SendShareNotificationInput
	err  error
}

func (f *fakeNotifier) SendShareNotification(ctx context.Context, in notifications.SendShareNotificationInput) error {
	f.sent = append(f.sent, in)
	return f.err
}

func shareJob(t *testing.T, attempts, maxAttempts int) job.Job {
	t.Helper()

	raw, err := json.Marshal(jobs.ShareNotificationPayload{
		GrantID:     "g1",
		ReportID:    "r1",
		ReportTitle: "Panel",
		OwnerName:   "Alice",
		ViewerID:    "bob",
		ViewerEmail: "bob@example.com",
		GrantedAt:   time.Now().UTC(),
	})

	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	return job.Job{
		ID:          "j1",
		Type:        string(jobs.JobShareNotification),
		Payload:     raw,
		Status:      job.StatusProcessing,
		Attempts:    attempts,
		MaxAttempts: maxAttempts,
	}
}

func newTestWorker(repo JobsRepository, n notifications.Notifier) *Worker {
	return New(Config{WorkerID: "test-worker"}, repo, n, nil)
}

func TestProcessOneDeliversNotification(t *testing.T) {
	j := shareJob(t, 0, 5)

	repo := &fakeJobsRepo{
		claimFn: func(ctx context.Context, workerID string) (job.Job, error) {
			return j, nil
		},
	}
	notifier := &fakeNotifier{}

	w := newTestWorker(repo, notifier)

	processed, err := w.ProcessOne(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !processed {
		t.Fatal("job was not processed")
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifier.sent))
	}

	sent := notifier.sent[0]

	if sent.Email != "bob@example.com" || sent.GrantID != "g1" || sent.ReportTitle != "Panel" {
		t.Fatalf("notification fields wrong: %+v", sent)
	}

	if len(repo.doneIDs) != 1 || repo.doneIDs[0] != "j1" {
		t.Fatalf("job not marked done: %v", repo.doneIDs)
	}
}

func TestProcessOneNoJob(t *testing.T) {
	w := newTestWorker(&fakeJobsRepo{}, &fakeNotifier{})

	processed, err := w.ProcessOne(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if processed {
		t.Fatal("claimed a job from an empty queue")
	}
}

func TestProcessOneReschedulesTransientFailure(t *testing.T) {
	j := shareJob(t, 1, 5)

	repo := &fakeJobsRepo{
		claimFn: func(ctx context.Context, workerID string) (job.Job, error) {
			return j, nil
		},
	}
	notifier := &fakeNotifier{err: errors.New("provider down")}

	w := newTestWorker(repo, notifier)

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.rescheduled) != 1 {
		t.Fatalf("job not rescheduled: %+v", repo)
	}

	if len(repo.failedIDs) != 0 {
		t.Fatal("transient failure marked failed")
	}

	if !repo.rescheduleAt[0].After(time.Now()) {
		t.Fatalf("reschedule time not in the future: %v", repo.rescheduleAt[0])
	}
}

func TestProcessOneFailsAfterMaxAttempts(t *testing.T) {
	// this attempt is the last allowed one
	j := shareJob(t, 4, 5)

	repo := &fakeJobsRepo{
		claimFn: func(ctx context.Context, workerID string) (job.Job, error) {
			return j, nil
		},
	}
	notifier := &fakeNotifier{err: errors.New("provider down")}

	w := newTestWorker(repo, notifier)

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.failedIDs) != 1 {
		t.Fatalf("exhausted job not marked failed: %+v", repo)
	}

	if len(repo.rescheduled) != 0 {
		t.Fatal("exhausted job was rescheduled")
	}
}

func TestProcessOneMalformedPayloadNeverRetries(t *testing.T) {
	j := job.Job{
		ID:          "j-bad",
		Type:        string(jobs.JobShareNotification),
		Payload:     []byte(`{"grantId": ""}`),
		Attempts:    0,
		MaxAttempts: 5,
	}

	repo := &fakeJobsRepo{
		claimFn: func(ctx context.Context, workerID string) (job.Job, error) {
			return j, nil
		},
	}
	notifier := &fakeNotifier{}

	w := newTestWorker(repo, notifier)

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifier.sent) != 0 {
		t.Fatal("malformed payload still sent a notification")
	}

	if len(repo.failedIDs) != 1 || len(repo.rescheduled) != 0 {
		t.Fatalf("malformed payload should fail permanently: %+v", repo)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	w := newTestWorker(&fakeJobsRepo{}, &fakeNotifier{})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() { done <- w.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
