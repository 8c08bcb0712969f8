package eventboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu       sync.Mutex
	endpoint string
	snapshot Snapshot
	err      error
	calls    int
}

func (s *stubSource) Endpoint() string { return s.endpoint }

func (s *stubSource) FetchSnapshot(context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot.Clone(), nil
}

func (s *stubSource) set(snapshot Snapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	s.err = err
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fetchResult struct {
	snapshot Snapshot
	err      error
}

// gatedSource blocks the n-th fetch until gates[n] receives a result.
type gatedSource struct {
	mu    sync.Mutex
	gates []chan fetchResult
	calls int
}

func newGatedSource(n int) *gatedSource {
	gates := make([]chan fetchResult, n)
	for i := range gates {
		gates[i] = make(chan fetchResult, 1)
	}
	return &gatedSource{gates: gates}
}

func (s *gatedSource) Endpoint() string { return "https://example.test/registrations" }

func (s *gatedSource) FetchSnapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	gate := s.gates[s.calls]
	s.calls++
	s.mu.Unlock()
	select {
	case r := <-gate:
		return r.snapshot, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *gatedSource) started() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingHook struct {
	mu     sync.Mutex
	events []BoardEvent
}

func (h *recordingHook) BoardUpdated(_ context.Context, event BoardEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHook) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, event := range h.events {
		out[i] = event.Type
	}
	return out
}

type stubRenderer struct {
	lastTemplate string
	lastPayload  map[string]any
	err          error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.lastTemplate = name
	if payload, ok := data.(map[string]any); ok {
		r.lastPayload = payload
	}
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("<html></html>"))
	}
	return "<html></html>", r.err
}

const testEndpoint = "https://example.test/registrations"

var testStart = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func TestControllerInitialState(t *testing.T) {
	controller := NewController(Options{})
	state := controller.State()
	assert.True(t, state.LoadingVisible)
	assert.False(t, state.ErrorVisible)
	assert.Nil(t, state.LastUpdated)
	assert.Equal(t, OriginNone, state.Origin)
	assert.Empty(t, controller.Render())
	assert.Equal(t, DefaultPollInterval, controller.PollInterval())
	assert.Equal(t, DefaultBasePath, controller.BasePath())
}

func TestControllerFetchSuccessRendersCardsInOrder(t *testing.T) {
	clock := NewManualClock(testStart)
	source := &stubSource{
		endpoint: testEndpoint,
		snapshot: MustSnapshot(Entry{"TechJar", 12}, Entry{"Mystery Event", 3}),
	}
	hook := &recordingHook{}
	controller := NewController(Options{Source: source, Clock: clock, RefreshHook: hook})

	require.NoError(t, controller.FetchSnapshot(context.Background()))

	cards := controller.Render()
	require.Len(t, cards, 2)
	assert.Equal(t, Card{
		EventName:      "TechJar",
		Count:          12,
		LogoPath:       "/assets/logos/techjar.svg",
		DisplayIndex:   0,
		AnimationDelay: 0,
	}, cards[0])
	assert.Equal(t, "Mystery Event", cards[1].EventName)
	assert.Equal(t, DefaultLogoPath, cards[1].LogoPath)
	assert.Equal(t, 100*time.Millisecond, cards[1].AnimationDelay)

	state := controller.State()
	assert.False(t, state.ErrorVisible)
	assert.False(t, state.LoadingVisible)
	assert.Equal(t, OriginRemote, state.Origin)
	require.NotNil(t, state.LastUpdated)
	assert.Equal(t, testStart, *state.LastUpdated)
	assert.Equal(t, "Last updated: 09:30:00", LastUpdatedText(state))

	assert.Equal(t, []string{EventSnapshotUpdated}, hook.types())
	assert.Len(t, hook.events[0].Cards, 2)
	assert.NotEmpty(t, hook.events[0].AttemptID)
}

func TestControllerHTTPFailureLoadsDemoData(t *testing.T) {
	source := &stubSource{
		endpoint: testEndpoint,
		err:      &TransportError{Endpoint: testEndpoint, StatusCode: 500},
	}
	hook := &recordingHook{}
	controller := NewController(Options{Source: source, RefreshHook: hook})

	err := controller.FetchSnapshot(context.Background())
	require.Error(t, err)
	assert.Equal(t, "transport", ErrorKind(err))
	assert.Contains(t, err.Error(), "http error! status: 500")

	state := controller.State()
	assert.True(t, state.ErrorVisible)
	assert.False(t, state.LoadingVisible)
	assert.Equal(t, OriginDemo, state.Origin)
	assert.NotNil(t, state.LastUpdated)

	cards := controller.Render()
	require.Len(t, cards, 8)
	assert.Equal(t, DemoSnapshot().Names(), controller.Snapshot().Names())
	want := []Entry{
		{"IT Manager", 8}, {"CodeSustain", 12}, {"Web Weavers", 5}, {"Anime Quiz", 20},
		{"TechJar", 7}, {"Illustra", 10}, {"Sensorize", 6}, {"Chronoscape", 4},
	}
	for i, entry := range want {
		assert.Equal(t, entry.Name, cards[i].EventName)
		assert.Equal(t, entry.Count, cards[i].Count)
	}

	assert.Equal(t, []string{EventSnapshotError, EventDemoLoaded}, hook.types())
}

func TestControllerFailureKeepsPreviousData(t *testing.T) {
	clock := NewManualClock(testStart)
	source := &stubSource{endpoint: testEndpoint, snapshot: MustSnapshot(Entry{"TechJar", 7})}
	controller := NewController(Options{Source: source, Clock: clock})

	require.NoError(t, controller.FetchSnapshot(context.Background()))
	clock.Advance(30 * time.Second)
	source.set(nil, &TransportError{Endpoint: testEndpoint, Err: errors.New("connection refused")})
	require.Error(t, controller.FetchSnapshot(context.Background()))

	state := controller.State()
	assert.True(t, state.ErrorVisible)
	assert.Equal(t, OriginRemote, state.Origin)
	assert.Equal(t, testStart, *state.LastUpdated)
	cards := controller.Render()
	require.Len(t, cards, 1)
	assert.Equal(t, 7, cards[0].Count)

	source.set(MustSnapshot(Entry{"TechJar", 9}), nil)
	require.NoError(t, controller.FetchSnapshot(context.Background()))
	assert.False(t, controller.State().ErrorVisible)
	assert.Equal(t, 9, controller.Render()[0].Count)
}

func TestControllerEmptySuccessThenFailureShowsDemo(t *testing.T) {
	source := &stubSource{endpoint: testEndpoint, snapshot: Snapshot{}}
	controller := NewController(Options{Source: source})

	require.NoError(t, controller.FetchSnapshot(context.Background()))
	assert.Empty(t, controller.Render())
	assert.Equal(t, OriginRemote, controller.State().Origin)

	source.set(nil, &DecodeError{Reason: "bad"})
	require.Error(t, controller.FetchSnapshot(context.Background()))
	assert.Len(t, controller.Render(), 8)
	assert.Equal(t, OriginDemo, controller.State().Origin)
}

func TestControllerPlaceholderEndpointIsConfigurationError(t *testing.T) {
	for _, endpoint := range []string{"", PlaceholderEndpoint} {
		source := &stubSource{endpoint: endpoint, snapshot: MustSnapshot(Entry{"TechJar", 1})}
		controller := NewController(Options{Source: source})

		err := controller.FetchSnapshot(context.Background())
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err), "endpoint %q", endpoint)
		assert.Equal(t, 0, source.callCount(), "source must not be called for %q", endpoint)
		assert.True(t, controller.State().ErrorVisible)
		assert.Len(t, controller.Render(), 8)
	}
}

func TestControllerMissingSource(t *testing.T) {
	controller := NewController(Options{})
	err := controller.FetchSnapshot(context.Background())
	assert.True(t, IsConfigurationError(err))
	assert.Equal(t, OriginDemo, controller.State().Origin)
}

func TestControllerLoadingIndicatorNeverReturns(t *testing.T) {
	source := &stubSource{endpoint: testEndpoint, err: &TransportError{StatusCode: 503}}
	controller := NewController(Options{Source: source})
	require.True(t, controller.State().LoadingVisible)

	for i := 0; i < 3; i++ {
		_ = controller.FetchSnapshot(context.Background())
		assert.False(t, controller.State().LoadingVisible)
		source.set(MustSnapshot(Entry{"TechJar", i}), nil)
	}
}

func TestControllerCancelledPollLeavesStateUntouched(t *testing.T) {
	source := newGatedSource(1)
	hook := &recordingHook{}
	controller := NewController(Options{Source: source, RefreshHook: hook})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := controller.FetchSnapshot(ctx)
	require.ErrorIs(t, err, context.Canceled)

	state := controller.State()
	assert.True(t, state.LoadingVisible)
	assert.False(t, state.ErrorVisible)
	assert.Empty(t, controller.Render())
	assert.Empty(t, hook.types())
}

func startGatedPolls(t *testing.T, controller *Controller, source *gatedSource, n int) *sync.WaitGroup {
	t.Helper()
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = controller.FetchSnapshot(context.Background())
		}()
		want := i + 1
		require.Eventually(t, func() bool { return source.started() == want }, time.Second, time.Millisecond)
	}
	return &wg
}

func TestControllerOverlappingPollsLastResolvedWins(t *testing.T) {
	source := newGatedSource(2)
	controller := NewController(Options{Source: source})
	wg := startGatedPolls(t, controller, source, 2)

	// The later poll resolves first, the earlier one last.
	source.gates[1] <- fetchResult{snapshot: MustSnapshot(Entry{"TechJar", 2})}
	require.Eventually(t, func() bool { return controller.State().Origin == OriginRemote }, time.Second, time.Millisecond)
	source.gates[0] <- fetchResult{snapshot: MustSnapshot(Entry{"TechJar", 1})}
	wg.Wait()

	count, ok := controller.Snapshot().Count("TechJar")
	require.True(t, ok)
	assert.Equal(t, 1, count)
}

func TestControllerDiscardStaleKeepsNewestPoll(t *testing.T) {
	source := newGatedSource(2)
	controller := NewController(Options{Source: source, DiscardStale: true})
	wg := startGatedPolls(t, controller, source, 2)

	source.gates[1] <- fetchResult{snapshot: MustSnapshot(Entry{"TechJar", 2})}
	require.Eventually(t, func() bool { return controller.State().Origin == OriginRemote }, time.Second, time.Millisecond)
	source.gates[0] <- fetchResult{err: &TransportError{StatusCode: 500}}
	wg.Wait()

	count, _ := controller.Snapshot().Count("TechJar")
	assert.Equal(t, 2, count)
	assert.False(t, controller.State().ErrorVisible)
}

func TestControllerActivateCardPulses(t *testing.T) {
	clock := NewManualClock(testStart)
	source := &stubSource{endpoint: testEndpoint, snapshot: MustSnapshot(Entry{"TechJar", 5}, Entry{"Illustra", 2})}
	hook := &recordingHook{}
	controller := NewController(Options{Source: source, Clock: clock, RefreshHook: hook})
	t.Cleanup(func() { _ = controller.Close() })
	require.NoError(t, controller.FetchSnapshot(context.Background()))

	require.NoError(t, controller.ActivateCard(context.Background(), "TechJar"))
	cards := controller.Render()
	assert.True(t, cards[0].Pulsing)
	assert.False(t, cards[1].Pulsing)
	assert.Equal(t, 5, cards[0].Count, "activation must not change the count")

	clock.Advance(DefaultPulseDuration - time.Millisecond)
	assert.True(t, controller.Render()[0].Pulsing)
	clock.Advance(time.Millisecond)
	assert.False(t, controller.Render()[0].Pulsing)

	assert.Contains(t, hook.types(), EventCardPulse)
}

func TestControllerActivateCardPublishesPulseEnd(t *testing.T) {
	source := &stubSource{endpoint: testEndpoint, snapshot: MustSnapshot(Entry{"TechJar", 5})}
	hook := &recordingHook{}
	controller := NewController(Options{Source: source, RefreshHook: hook, PulseDuration: 10 * time.Millisecond})
	t.Cleanup(func() { _ = controller.Close() })
	require.NoError(t, controller.FetchSnapshot(context.Background()))

	require.NoError(t, controller.ActivateCard(context.Background(), "TechJar"))
	require.Eventually(t, func() bool {
		types := hook.types()
		return len(types) > 0 && types[len(types)-1] == EventCardPulseEnd
	}, time.Second, 5*time.Millisecond)
	assert.False(t, controller.Render()[0].Pulsing)
}

func TestControllerPulseEndFollowsClock(t *testing.T) {
	clock := NewManualClock(testStart)
	source := &stubSource{endpoint: testEndpoint, snapshot: MustSnapshot(Entry{"TechJar", 5})}
	hook := &recordingHook{}
	controller := NewController(Options{Source: source, Clock: clock, RefreshHook: hook})
	t.Cleanup(func() { _ = controller.Close() })
	require.NoError(t, controller.FetchSnapshot(context.Background()))

	require.NoError(t, controller.ActivateCard(context.Background(), "TechJar"))
	clock.Advance(300 * time.Millisecond)
	require.NoError(t, controller.ActivateCard(context.Background(), "TechJar"))
	clock.Advance(300 * time.Millisecond)
	assert.True(t, controller.Render()[0].Pulsing, "a second click restarts the pulse")
	assert.NotContains(t, hook.types(), EventCardPulseEnd)

	clock.Advance(200 * time.Millisecond)
	assert.False(t, controller.Render()[0].Pulsing)
	ends := 0
	for _, typ := range hook.types() {
		if typ == EventCardPulseEnd {
			ends++
		}
	}
	assert.Equal(t, 1, ends)
	assert.Equal(t, 0, clock.Pending())
}

func TestControllerActivateUnknownCard(t *testing.T) {
	controller := NewController(Options{})
	err := controller.ActivateCard(context.Background(), "Nope")
	require.ErrorIs(t, err, ErrUnknownCard)
}

func TestControllerRenderHTML(t *testing.T) {
	source := &stubSource{endpoint: testEndpoint, snapshot: MustSnapshot(Entry{"TechJar", 4})}
	renderer := &stubRenderer{}
	controller := NewController(Options{
		Source:   source,
		Renderer: renderer,
		Clock:    NewManualClock(testStart),
		BasePath: "/live/",
	})
	require.NoError(t, controller.FetchSnapshot(context.Background()))

	var buf bytes.Buffer
	if err := controller.RenderHTML(context.Background(), &buf); err != nil {
		t.Fatalf("RenderHTML returned error: %v", err)
	}
	if renderer.lastTemplate != DefaultTemplate {
		t.Fatalf("expected %s to render, got %s", DefaultTemplate, renderer.lastTemplate)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected rendered output")
	}
	assert.Equal(t, false, renderer.lastPayload["error_visible"])
	assert.Equal(t, false, renderer.lastPayload["loading_visible"])
	assert.Equal(t, "Last updated: 09:30:00", renderer.lastPayload["last_updated_text"])
	assert.Equal(t, "/live", renderer.lastPayload["base_path"])
	cards, ok := renderer.lastPayload["cards"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, cards, 1)
	assert.Equal(t, "TechJar", cards[0]["event_name"])
	assert.Equal(t, "4", cards[0]["count"])
}

func TestControllerRenderHTMLRequiresRenderer(t *testing.T) {
	controller := NewController(Options{})
	err := controller.RenderHTML(context.Background(), io.Discard)
	assert.ErrorIs(t, err, errMissingRenderer)
}

func TestControllerPayloadNeverNilSnapshot(t *testing.T) {
	controller := NewController(Options{})
	payload := controller.Payload()
	assert.NotNil(t, payload.Snapshot)
	assert.Empty(t, payload.LastUpdatedText)
}
