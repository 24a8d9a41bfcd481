package watch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/akum32o/ncsl-ai-energy-watch/internal/bill"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/config"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/filter"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/notifier"
)

const testPageURL = "https://www.ncsl.org/technology-and-communication/artificial-intelligence-2025-legislation"

type stubSource struct {
	bills []*bill.Bill
	err   error
}

func (s *stubSource) FetchBills(ctx context.Context) ([]*bill.Bill, error) {
	return s.bills, s.err
}

func (s *stubSource) URL() string { return testPageURL }

type memStore struct {
	state   *bill.WatcherState
	saved   *bill.WatcherState
	saveErr error
}

func (m *memStore) Load() *bill.WatcherState {
	if m.state == nil {
		return bill.NewWatcherState()
	}
	return m.state
}

func (m *memStore) Save(state *bill.WatcherState) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = state
	return nil
}

type stubNotifier struct {
	configured bool
	err        error
	subjects   []string
	bodies     []string
}

func (n *stubNotifier) Configured() bool { return n.configured }

func (n *stubNotifier) Notify(ctx context.Context, subject, body string) error {
	if n.err != nil {
		return n.err
	}
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
	return nil
}

type stubAnnouncer struct {
	announced []string
	err       error
}

func (a *stubAnnouncer) Announce(ctx context.Context, bills []*bill.Bill) error {
	if a.err != nil {
		return a.err
	}
	for _, b := range bills {
		a.announced = append(a.announced, b.ID)
	}
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
}

func fetchedBills() []*bill.Bill {
	return []*bill.Bill{
		bill.New("Connecticut", "SB 2", "Grid reliability standards", "In committee",
			"Energy", "", "https://www.ncsl.org/research/ct-sb-2"),
		bill.New("Montana", "HB 178", "Artificial Intelligence Task Force", "Enacted",
			"Government Use", "", testPageURL),
		bill.New("Texas", "HB 140", "AI in utility rate review", "Introduced",
			"Utilities", "", "https://www.ncsl.org/research/tx-hb-140"),
	}
}

func testConfig() config.Config {
	return config.Config{
		DiffPolicy:     bill.PolicySnapshot,
		PriorityStates: []string{"Connecticut"},
	}
}

func TestRun_FirstRunDispatchesDigest(t *testing.T) {
	store := &memStore{}
	mailer := &stubNotifier{configured: true}
	announcer := &stubAnnouncer{}

	deps := Deps{
		Source:    &stubSource{bills: fetchedBills()},
		Store:     store,
		Filter:    filter.New(),
		Notifier:  mailer,
		Announcer: announcer,
		Now:       fixedNow,
	}

	report, err := Run(context.Background(), testConfig(), deps)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Fetched != 3 {
		t.Errorf("Fetched = %d, want 3", report.Fetched)
	}
	// The task-force bill has no energy/consumer angle.
	if report.Relevant != 2 {
		t.Errorf("Relevant = %d, want 2", report.Relevant)
	}
	if report.Changed != 2 {
		t.Errorf("Changed = %d, want 2", report.Changed)
	}
	if !report.Dispatched || !report.StatePersisted {
		t.Errorf("Dispatched = %v, StatePersisted = %v, want both true",
			report.Dispatched, report.StatePersisted)
	}

	if len(mailer.subjects) != 1 || mailer.subjects[0] != "[NCSL AI Energy Watch] 2 new/updated" {
		t.Errorf("subjects = %v", mailer.subjects)
	}
	if !strings.Contains(report.Body, "SB 2") {
		t.Errorf("Body missing bill record:\n%s", report.Body)
	}

	if store.saved == nil {
		t.Fatal("state not saved")
	}
	if !store.saved.LastDigest.Equal(fixedNow()) {
		t.Errorf("LastDigest = %v, want %v", store.saved.LastDigest, fixedNow())
	}
	if len(store.saved.Bills) != 2 {
		t.Errorf("saved %d bills, want the 2 relevant ones", len(store.saved.Bills))
	}

	wantAnnounced := []string{"Connecticut::SB 2", "Texas::HB 140"}
	if len(announcer.announced) != 2 ||
		announcer.announced[0] != wantAnnounced[0] ||
		announcer.announced[1] != wantAnnounced[1] {
		t.Errorf("announced = %v, want %v", announcer.announced, wantAnnounced)
	}
}

func TestRun_NoChangesPersistsWithoutDispatch(t *testing.T) {
	bills := fetchedBills()
	f := filter.New()

	// Previous state that already reflects exactly what this run will see.
	prior := bill.Diff(nil, f.Apply(bills), bill.PolicySnapshot).Next
	prior.LastDigest = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

	store := &memStore{state: prior}
	mailer := &stubNotifier{configured: true}

	deps := Deps{
		Source:   &stubSource{bills: bills},
		Store:    store,
		Filter:   f,
		Notifier: mailer,
		Now:      fixedNow,
	}

	report, err := Run(context.Background(), testConfig(), deps)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Changed != 0 {
		t.Errorf("Changed = %d, want 0", report.Changed)
	}
	if report.Dispatched {
		t.Error("Dispatched = true, want false for a quiet run")
	}
	if len(mailer.subjects) != 0 {
		t.Errorf("notifier called on a quiet run: %v", mailer.subjects)
	}
	if !report.StatePersisted || store.saved == nil {
		t.Fatal("quiet run should still persist the refreshed baseline")
	}
	if !store.saved.LastDigest.Equal(prior.LastDigest) {
		t.Errorf("LastDigest = %v, want carried %v", store.saved.LastDigest, prior.LastDigest)
	}
	if report.Subject != "" || report.Body != "" {
		t.Error("quiet run should not render a digest")
	}
}

func TestRun_ForcedDigestWithNoChanges(t *testing.T) {
	bills := fetchedBills()
	f := filter.New()
	prior := bill.Diff(nil, f.Apply(bills), bill.PolicySnapshot).Next

	store := &memStore{state: prior}
	mailer := &stubNotifier{configured: true}

	cfg := testConfig()
	cfg.ForceEmail = true

	deps := Deps{
		Source:   &stubSource{bills: bills},
		Store:    store,
		Filter:   f,
		Notifier: mailer,
		Now:      fixedNow,
	}

	report, err := Run(context.Background(), cfg, deps)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !report.Dispatched {
		t.Fatal("forced run should dispatch")
	}
	if report.Subject != "[NCSL AI Energy Watch] No changes (forced digest)" {
		t.Errorf("Subject = %q", report.Subject)
	}
	if !strings.Contains(report.Body, "No new or updated relevant bills since the last digest.") {
		t.Errorf("Body missing no-changes line:\n%s", report.Body)
	}
	if !store.saved.LastDigest.Equal(fixedNow()) {
		t.Errorf("LastDigest = %v, want advanced to now", store.saved.LastDigest)
	}
}

func TestRun_FetchFailureLeavesStateUntouched(t *testing.T) {
	store := &memStore{}
	deps := Deps{
		Source:   &stubSource{err: errors.New("http 503")},
		Store:    store,
		Filter:   filter.New(),
		Notifier: &stubNotifier{configured: true},
		Now:      fixedNow,
	}

	report, err := Run(context.Background(), testConfig(), deps)
	if err == nil {
		t.Fatal("Run() error = nil, want fetch error")
	}
	if store.saved != nil {
		t.Error("state saved despite fetch failure")
	}
	if report.StatePersisted || report.Dispatched {
		t.Errorf("report = %+v, want nothing persisted or dispatched", report)
	}
}

func TestRun_SendFailureSkipsPersist(t *testing.T) {
	store := &memStore{}
	mailer := &stubNotifier{
		configured: true,
		err:        &notifier.SendError{Channel: "email", Err: errors.New("535 authentication failed")},
	}

	deps := Deps{
		Source:   &stubSource{bills: fetchedBills()},
		Store:    store,
		Filter:   filter.New(),
		Notifier: mailer,
		Now:      fixedNow,
	}

	report, err := Run(context.Background(), testConfig(), deps)

	var sendErr *notifier.SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("Run() error = %v, want *SendError", err)
	}
	if store.saved != nil {
		t.Error("state saved despite send failure; the diff would be lost")
	}
	if report.Dispatched || report.StatePersisted {
		t.Errorf("report = %+v, want neither dispatched nor persisted", report)
	}
	// The digest was rendered before the send attempt.
	if report.Subject == "" || report.Body == "" {
		t.Error("report should carry the rendered digest")
	}
}

func TestRun_UnconfiguredNotifierIsNoOp(t *testing.T) {
	store := &memStore{}
	mailer := &stubNotifier{configured: false}
	announcer := &stubAnnouncer{}

	deps := Deps{
		Source:    &stubSource{bills: fetchedBills()},
		Store:     store,
		Filter:    filter.New(),
		Notifier:  mailer,
		Announcer: announcer,
		Now:       fixedNow,
	}

	report, err := Run(context.Background(), testConfig(), deps)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Dispatched {
		t.Error("Dispatched = true with no configured notifier")
	}
	if !report.StatePersisted || store.saved == nil {
		t.Fatal("no-op dispatch should still persist the diff")
	}
	if !store.saved.LastDigest.IsZero() {
		t.Errorf("LastDigest = %v, want unchanged zero: nothing was delivered", store.saved.LastDigest)
	}
	if report.Subject == "" || report.Body == "" {
		t.Error("digest should still be rendered for the caller to print")
	}
	if len(announcer.announced) != 0 {
		t.Errorf("announcements posted without a dispatched digest: %v", announcer.announced)
	}
}

func TestRun_TimeGate(t *testing.T) {
	cfg := testConfig()
	cfg.MinInterval = 7 * 24 * time.Hour

	newDeps := func(lastDigest time.Time) (Deps, *memStore, *stubNotifier) {
		prior := bill.NewWatcherState()
		prior.LastDigest = lastDigest
		store := &memStore{state: prior}
		mailer := &stubNotifier{configured: true}
		deps := Deps{
			Source:   &stubSource{bills: fetchedBills()},
			Store:    store,
			Filter:   filter.New(),
			Notifier: mailer,
			Now:      fixedNow,
		}
		return deps, store, mailer
	}

	t.Run("inside interval suppresses and skips persist", func(t *testing.T) {
		deps, store, mailer := newDeps(fixedNow().Add(-2 * 24 * time.Hour))

		report, err := Run(context.Background(), cfg, deps)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if !report.TimeGated {
			t.Error("TimeGated = false, want true")
		}
		if report.Dispatched || len(mailer.subjects) != 0 {
			t.Error("digest dispatched despite the gate")
		}
		if report.StatePersisted || store.saved != nil {
			t.Error("state persisted; the pending diff would be lost")
		}
	})

	t.Run("after interval dispatches", func(t *testing.T) {
		deps, store, _ := newDeps(fixedNow().Add(-8 * 24 * time.Hour))

		report, err := Run(context.Background(), cfg, deps)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !report.Dispatched || !report.StatePersisted {
			t.Errorf("report = %+v, want dispatched and persisted", report)
		}
		if !store.saved.LastDigest.Equal(fixedNow()) {
			t.Errorf("LastDigest = %v, want now", store.saved.LastDigest)
		}
	})

	t.Run("force bypasses the gate", func(t *testing.T) {
		forced := cfg
		forced.ForceEmail = true
		deps, _, mailer := newDeps(fixedNow().Add(-2 * 24 * time.Hour))

		report, err := Run(context.Background(), forced, deps)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if report.TimeGated || !report.Dispatched {
			t.Errorf("report = %+v, want forced dispatch", report)
		}
		if len(mailer.subjects) != 1 {
			t.Errorf("subjects = %v, want one forced digest", mailer.subjects)
		}
	})

	t.Run("first digest never gates", func(t *testing.T) {
		deps, _, mailer := newDeps(time.Time{})

		report, err := Run(context.Background(), cfg, deps)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if report.TimeGated || !report.Dispatched {
			t.Errorf("report = %+v, want first digest dispatched", report)
		}
		if len(mailer.subjects) != 1 {
			t.Errorf("subjects = %v", mailer.subjects)
		}
	})
}

func TestRun_AnnouncerFailureDoesNotAbort(t *testing.T) {
	store := &memStore{}
	deps := Deps{
		Source:    &stubSource{bills: fetchedBills()},
		Store:     store,
		Filter:    filter.New(),
		Notifier:  &stubNotifier{configured: true},
		Announcer: &stubAnnouncer{err: errors.New("rate limited")},
		Now:       fixedNow,
	}

	report, err := Run(context.Background(), testConfig(), deps)
	if err != nil {
		t.Fatalf("Run() error = %v, announcements are best-effort", err)
	}
	if !report.Dispatched || !report.StatePersisted {
		t.Errorf("report = %+v, want dispatch and persist despite announcer failure", report)
	}
}

func TestRun_SeenIDPolicyIgnoresEdits(t *testing.T) {
	f := filter.New()
	first := fetchedBills()

	prior := bill.Diff(nil, f.Apply(first), bill.PolicySeenID).Next
	store := &memStore{state: prior}
	mailer := &stubNotifier{configured: true}

	// Second run: an edited status plus one genuinely new bill.
	second := fetchedBills()
	second[0] = bill.New("Connecticut", "SB 2", "Grid reliability standards", "Passed Senate",
		"Energy", "", "https://www.ncsl.org/research/ct-sb-2")
	second = append(second, bill.New("Vermont", "H 114", "AI consumer disclosure", "Introduced",
		"Consumer Protection", "", "https://www.ncsl.org/research/vt-h-114"))

	cfg := testConfig()
	cfg.DiffPolicy = bill.PolicySeenID

	deps := Deps{
		Source:   &stubSource{bills: second},
		Store:    store,
		Filter:   f,
		Notifier: mailer,
		Now:      fixedNow,
	}

	report, err := Run(context.Background(), cfg, deps)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Changed != 1 {
		t.Fatalf("Changed = %d, want only the new Vermont bill", report.Changed)
	}
	if !strings.Contains(report.Body, "H 114") {
		t.Errorf("Body missing the new bill:\n%s", report.Body)
	}
	if strings.Contains(report.Body, "Passed Senate") {
		t.Errorf("edited bill should not re-trigger under seen-id:\n%s", report.Body)
	}
}
