package publisher

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbot/internal/browser"
	"marketbot/internal/config"
	"marketbot/internal/gologin"
	"marketbot/internal/listing"
	"marketbot/internal/schedule"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeProvisioner struct {
	wsURL    string
	startErr error

	starts     int
	stops      int
	stopCtxErr error
}

func (f *fakeProvisioner) ProfileByID(_ context.Context, profileID string) (*gologin.Profile, error) {
	return &gologin.Profile{ID: profileID, Name: "profile-" + profileID}, nil
}

func (f *fakeProvisioner) StartProfile(context.Context, string) (string, error) {
	f.starts++
	return f.wsURL, f.startErr
}

func (f *fakeProvisioner) StopProfile(ctx context.Context, _ string) error {
	f.stops++
	f.stopCtxErr = ctx.Err()
	return nil
}

type fakeSession struct {
	loginErr   error
	publishErr map[int]error // by listing index
	onPublish  func()

	logins    int
	published []int
	attempts  []int
	closes    int
}

func (f *fakeSession) Login(context.Context) error {
	f.logins++
	return f.loginErr
}

func (f *fakeSession) PublishListing(_ context.Context, profile *gologin.Profile) error {
	index := profile.ListingIndex()
	f.attempts = append(f.attempts, index)
	if f.onPublish != nil {
		f.onPublish()
	}
	if err := f.publishErr[index]; err != nil {
		return err
	}
	f.published = append(f.published, index)
	return nil
}

func (f *fakeSession) Close() error {
	f.closes++
	return nil
}

func newTestPublisher(t *testing.T, titles []string, prov *fakeProvisioner,
	sess *fakeSession, factoryErr error) (*Publisher, *listing.FileLedger) {
	t.Helper()

	corpus := listing.NewCorpus(titles)
	ledger := listing.NewFileLedger(t.TempDir(), corpus, testLogger())
	selector := listing.NewSelector(corpus, ledger, rand.New(rand.NewSource(3)), testLogger())

	factory := func(string, *gologin.Profile) (PublishSession, error) {
		if factoryErr != nil {
			return nil, factoryErr
		}
		return sess, nil
	}

	pub := New(nil, nil, selector, corpus, prov, factory, nil, testLogger())
	return pub, ledger
}

func day(postsCount int, profileIDs ...string) schedule.Day {
	return schedule.Day{
		Weekday:    time.Wednesday,
		Active:     true,
		PostsCount: postsCount,
		ProfileIDs: profileIDs,
	}
}

func TestRunProfilePublishesQuota(t *testing.T) {
	prov := &fakeProvisioner{wsURL: "ws://browser"}
	sess := &fakeSession{}
	pub, _ := newTestPublisher(t, []string{"Sofa", "Lamp", "Desk"}, prov, sess, nil)

	require.NoError(t, pub.runProfile(context.Background(), day(2, "p1"), "p1"))

	assert.Equal(t, 1, prov.starts, "provision exactly once")
	assert.Equal(t, 1, prov.stops, "teardown exactly once")
	assert.Equal(t, 2, sess.logins, "login state re-checked before every post")
	assert.Equal(t, 1, sess.closes)
	assert.Len(t, sess.published, 2)
}

func TestRunProfileContinuesAfterPublishError(t *testing.T) {
	prov := &fakeProvisioner{wsURL: "ws://browser"}
	sess := &fakeSession{publishErr: map[int]error{0: errors.New("form broke"), 1: errors.New("form broke"), 2: errors.New("form broke")}}
	pub, ledger := newTestPublisher(t, []string{"Sofa", "Lamp", "Desk"}, prov, sess, nil)

	require.NoError(t, pub.runProfile(context.Background(), day(3, "p1"), "p1"))

	assert.Len(t, sess.attempts, 3, "every attempt consumed despite failures")
	assert.Empty(t, sess.published)
	assert.Equal(t, 1, prov.stops, "teardown still happens after failures")

	posted, err := ledger.Posted("p1")
	require.NoError(t, err)
	assert.Equal(t, 0, posted.Cardinality(), "failed publishes never reach the ledger")
}

func TestRunProfileSkipsOnMissingEndpoint(t *testing.T) {
	prov := &fakeProvisioner{wsURL: ""}
	sess := &fakeSession{}
	pub, _ := newTestPublisher(t, []string{"Sofa"}, prov, sess, nil)

	require.NoError(t, pub.runProfile(context.Background(), day(1, "p1"), "p1"))

	assert.Equal(t, 1, prov.starts)
	assert.Equal(t, 0, prov.stops, "never started, nothing to stop")
	assert.Equal(t, 0, sess.logins)
}

func TestRunProfileSkipsOnProxyCredentials(t *testing.T) {
	prov := &fakeProvisioner{wsURL: "ws://browser"}
	pub, _ := newTestPublisher(t, []string{"Sofa"}, prov, nil, browser.ErrProxyCredentials)

	require.NoError(t, pub.runProfile(context.Background(), day(1, "p1"), "p1"))

	assert.Equal(t, 1, prov.stops, "started profile must still be stopped")
}

func TestRunProfileLoginFailureTearsDown(t *testing.T) {
	prov := &fakeProvisioner{wsURL: "ws://browser"}
	sess := &fakeSession{loginErr: errors.New("captcha wall")}
	pub, _ := newTestPublisher(t, []string{"Sofa"}, prov, sess, nil)

	err := pub.runProfile(context.Background(), day(1, "p1"), "p1")
	assert.ErrorContains(t, err, "login")
	assert.Equal(t, 1, prov.stops)
	assert.Equal(t, 1, sess.closes)
	assert.Empty(t, sess.attempts)
}

func TestRunProfileNothingToPost(t *testing.T) {
	prov := &fakeProvisioner{wsURL: "ws://browser"}
	sess := &fakeSession{}
	pub, _ := newTestPublisher(t, nil, prov, sess, nil)

	require.NoError(t, pub.runProfile(context.Background(), day(2, "p1"), "p1"))
	assert.Equal(t, 0, prov.starts, "empty corpus never provisions a browser")
}

func TestRunProfileExhaustionMidCycleResetsAndContinues(t *testing.T) {
	prov := &fakeProvisioner{wsURL: "ws://browser"}
	sess := &fakeSession{}
	// Quota exceeds the corpus: after both listings are posted the
	// ledger resets mid-cycle and posting keeps going.
	pub, ledger := newTestPublisher(t, []string{"Sofa", "Lamp"}, prov, sess, nil)

	require.NoError(t, pub.runProfile(context.Background(), day(4, "p1"), "p1"))

	assert.Len(t, sess.attempts, 4, "exhaustion must not truncate the quota")
	assert.Subset(t, []int{0, 1}, sess.published)

	posted, err := ledger.Posted("p1")
	require.NoError(t, err)
	assert.Greater(t, posted.Cardinality(), 0, "posts after the reset are recorded")
}

func TestRunProfileTeardownSurvivesShutdown(t *testing.T) {
	prov := &fakeProvisioner{wsURL: "ws://browser"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Operator interrupt lands mid-publish.
	sess := &fakeSession{onPublish: cancel}
	pub, _ := newTestPublisher(t, []string{"Sofa", "Lamp"}, prov, sess, nil)

	err := pub.runProfile(ctx, day(2, "p1"), "p1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, prov.stops, "started profile is still stopped")
	assert.NoError(t, prov.stopCtxErr, "teardown must not run on the cancelled run context")
}

func TestRunDayContainsProfileFailures(t *testing.T) {
	prov := &fakeProvisioner{wsURL: "ws://browser"}
	sess := &fakeSession{loginErr: errors.New("captcha wall")}
	pub, _ := newTestPublisher(t, []string{"Sofa"}, prov, sess, nil)

	// Both profiles fail at login; runDay must still try each one.
	pub.runDay(context.Background(), day(1, "p1", "p2"))

	assert.Equal(t, 2, prov.starts)
	assert.Equal(t, 2, prov.stops)
}

func TestRunFatalOnNoActiveDays(t *testing.T) {
	weekly, err := schedule.FromConfig(map[string]config.Day{
		"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
		"friday": {}, "saturday": {}, "sunday": {},
	})
	require.NoError(t, err)

	prov := &fakeProvisioner{}
	pub, _ := newTestPublisher(t, []string{"Sofa"}, prov, &fakeSession{}, nil)
	pub.clock = schedule.NewClock(weekly, testLogger())
	pub.weekly = weekly

	err = pub.Run(context.Background())
	assert.ErrorIs(t, err, schedule.ErrNoActiveDays)
	assert.Equal(t, 0, prov.starts)
}
