package aws_msk_iam

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRoleAssumer struct {
	calls   int32
	cred    Credential
	err     error
	onCall  func(n int32)
}

func (f *fakeRoleAssumer) AssumeRole(ctx context.Context, base Credential, p assumeRoleParams, now time.Time) (Credential, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if f.onCall != nil {
		f.onCall(n)
	}
	if f.err != nil {
		return Credential{}, f.err
	}
	return f.cred, nil
}

func staticBase(ctx context.Context) (Credential, error) {
	return Credential{AccessKeyID: "base", SecretAccessKey: "base-secret", Region: "us-east-1"}, nil
}

func TestRefreshSchedulerFiresImmediatelyAndInstalls(t *testing.T) {
	store := NewCredentialStore()
	fake := &fakeRoleAssumer{cred: Credential{
		AccessKeyID:     "AKID",
		SecretAccessKey: "SECRET",
		Region:          "us-east-1",
		ExpiresAtUnixMs: nowUnixMs(time.Now()) + int64(time.Hour/time.Millisecond),
	}}

	sched := newRefreshScheduler(fake, store, assumeRoleParams{Region: "us-east-1", RoleArn: "arn", RoleSessionName: "s"}, staticBase, nil)
	sched.Start()
	defer sched.Close()

	require.True(t, store.WaitTimeout(time.Second))
	cred, err, ok := store.Snapshot()
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, "AKID", cred.AccessKeyID)
	require.GreaterOrEqual(t, atomic.LoadInt32(&fake.calls), int32(1))
}

func TestRefreshSchedulerRecordsFailureAndBacksOff(t *testing.T) {
	store := NewCredentialStore()
	fake := &fakeRoleAssumer{err: &StsTransportError{Err: context.DeadlineExceeded}}

	sched := newRefreshScheduler(fake, store, assumeRoleParams{Region: "us-east-1", RoleArn: "arn", RoleSessionName: "s"}, staticBase, nil)
	sched.Start()
	defer sched.Close()

	select {
	case err := <-store.Errors():
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected a refresh failure to be published")
	}

	_, _, ok := store.Snapshot()
	require.False(t, ok)
}

// TestRefreshSchedulerNextDelayIsFractionOfRemainingLifetime covers §8
// scenario 6: a credential with 1000ms of remaining lifetime reschedules at
// 800ms, with no floor clamping it upward.
func TestRefreshSchedulerNextDelayIsFractionOfRemainingLifetime(t *testing.T) {
	store := NewCredentialStore()
	now := time.Now()
	fake := &fakeRoleAssumer{cred: Credential{
		AccessKeyID:     "AKID",
		SecretAccessKey: "SECRET",
		Region:          "us-east-1",
		ExpiresAtUnixMs: nowUnixMs(now) + 1000,
	}}

	sched := newRefreshScheduler(fake, store, assumeRoleParams{Region: "us-east-1", RoleArn: "arn", RoleSessionName: "s"}, staticBase, nil)
	sched.clock = func() time.Time { return now }

	delay := sched.attempt()
	require.Equal(t, 800*time.Millisecond, delay)
}

func TestRefreshSchedulerCloseStopsGoroutine(t *testing.T) {
	store := NewCredentialStore()
	fake := &fakeRoleAssumer{cred: Credential{
		AccessKeyID:     "AKID",
		SecretAccessKey: "SECRET",
		Region:          "us-east-1",
		ExpiresAtUnixMs: nowUnixMs(time.Now()) + int64(time.Hour/time.Millisecond),
	}}

	sched := newRefreshScheduler(fake, store, assumeRoleParams{Region: "us-east-1", RoleArn: "arn", RoleSessionName: "s"}, staticBase, nil)
	sched.Start()
	require.True(t, store.WaitTimeout(time.Second))

	sched.Close()
	callsAtClose := atomic.LoadInt32(&fake.calls)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, callsAtClose, atomic.LoadInt32(&fake.calls))
}
