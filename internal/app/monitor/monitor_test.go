package monitor

import (
  "context"
  "errors"
  "sync"
  "testing"
  "time"

  "github.com/ushakovn/pricewatch/internal/app/notifier"
  "github.com/ushakovn/pricewatch/internal/deps/extractor"
  "github.com/ushakovn/pricewatch/internal/models"
)

type fakeStore struct {
  mu        sync.Mutex
  items     map[string]models.Tracking
  failPrice map[string]bool
  lists     int
  writes    []string
}

func newFakeStore(trackings ...models.Tracking) *fakeStore {
  store := &fakeStore{
    items:     map[string]models.Tracking{},
    failPrice: map[string]bool{},
  }
  for _, tracking := range trackings {
    store.items[tracking.ID] = tracking
  }
  return store
}

func (s *fakeStore) ListAll(_ context.Context) ([]models.Tracking, error) {
  s.mu.Lock()
  defer s.mu.Unlock()

  s.lists++

  out := make([]models.Tracking, 0, len(s.items))
  for _, tracking := range s.items {
    out = append(out, tracking)
  }
  return out, nil
}

func (s *fakeStore) UpdatePrice(_ context.Context, id string, current, original float64) error {
  s.mu.Lock()
  defer s.mu.Unlock()

  if s.failPrice[id] {
    return errors.New("connection reset")
  }
  tracking := s.items[id]
  tracking.CurrentPrice = current
  tracking.OriginalPrice = original
  s.items[id] = tracking
  s.writes = append(s.writes, "price:"+id)

  return nil
}

func (s *fakeStore) UpdateNotified(_ context.Context, id string, notified bool) error {
  s.mu.Lock()
  defer s.mu.Unlock()

  tracking := s.items[id]
  tracking.Notified = notified
  s.items[id] = tracking
  s.writes = append(s.writes, "notified:"+id)

  return nil
}

func (s *fakeStore) get(id string) models.Tracking {
  s.mu.Lock()
  defer s.mu.Unlock()

  return s.items[id]
}

func (s *fakeStore) listCalls() int {
  s.mu.Lock()
  defer s.mu.Unlock()

  return s.lists
}

func (s *fakeStore) writeCount() int {
  s.mu.Lock()
  defer s.mu.Unlock()

  return len(s.writes)
}

type fakeExtractor struct {
  mu     sync.Mutex
  prices map[string]float64
}

func (e *fakeExtractor) set(url string, price float64) {
  e.mu.Lock()
  defer e.mu.Unlock()

  e.prices[url] = price
}

func (e *fakeExtractor) Extract(_ context.Context, url string) models.Product {
  e.mu.Lock()
  defer e.mu.Unlock()

  price, ok := e.prices[url]
  if !ok {
    return extractor.Fallback(url)
  }
  return models.Product{URL: url, Name: "Echo Dot", Price: price, Site: models.SiteAmazon}
}

type countingSender struct {
  mu       sync.Mutex
  err      error
  emails   int
  messages int
}

func (c *countingSender) SendEmail(context.Context, string, string, string) error {
  c.mu.Lock()
  defer c.mu.Unlock()

  c.emails++
  return c.err
}

func (c *countingSender) SendMessage(context.Context, string, string) error {
  c.mu.Lock()
  defer c.mu.Unlock()

  c.messages++
  return c.err
}

func (c *countingSender) counts() (int, int) {
  c.mu.Lock()
  defer c.mu.Unlock()

  return c.emails, c.messages
}

func (c *countingSender) setErr(err error) {
  c.mu.Lock()
  defer c.mu.Unlock()

  c.err = err
}

const productURL = "https://www.amazon.com/dp/B09B8V1LZ3"

func newTracking(id string) models.Tracking {
  return models.Tracking{
    ID:            id,
    URL:           productURL,
    CurrentPrice:  50,
    OriginalPrice: 50,
    TargetPrice:   40,
    Contacts: models.TrackingContacts{
      Email: "buyer@example.com",
      Phone: "+1 555 123 4567",
    },
  }
}

func newTestMonitor(t *testing.T, store models.TrackingStore, ext Extractor, sender *countingSender) *Monitor {
  t.Helper()

  monitor, err := NewMonitor(DefaultConfig(), Dependencies{
    Store:     store,
    Extractor: ext,
    Notifier: notifier.NewNotifier(notifier.Dependencies{
      Email:   sender,
      Message: sender,
    }),
  })
  if err != nil {
    t.Fatalf("NewMonitor: %v", err)
  }
  return monitor
}

func runPass(t *testing.T, monitor *Monitor) PassResult {
  t.Helper()

  result, err := monitor.RunPass(context.Background())
  if err != nil {
    t.Fatalf("RunPass: %v", err)
  }
  return result
}

func TestPriceDropNotifiesOnce(t *testing.T) {
  store := newFakeStore(newTracking("t1"))
  ext := &fakeExtractor{prices: map[string]float64{productURL: 35}}
  sender := &countingSender{}

  monitor := newTestMonitor(t, store, ext, sender)

  result := runPass(t, monitor)

  got := store.get("t1")
  if got.CurrentPrice != 35 || got.OriginalPrice != 50 {
    t.Errorf("prices = current %v original %v, want 35 and 50", got.CurrentPrice, got.OriginalPrice)
  }
  if !got.Notified {
    t.Error("notified = false, want true")
  }
  if emails, messages := sender.counts(); emails != 1 || messages != 1 {
    t.Errorf("sends = %d emails %d messages, want one each", emails, messages)
  }
  if result.Total != 1 || result.Notified != 1 || result.Failed != 0 {
    t.Errorf("result = %+v", result)
  }

  runPass(t, monitor)

  if emails, messages := sender.counts(); emails != 1 || messages != 1 {
    t.Errorf("second pass sent again: %d emails %d messages", emails, messages)
  }
}

func TestPriceRecoveryResetsEpisode(t *testing.T) {
  tracking := newTracking("t1")
  tracking.CurrentPrice = 35
  tracking.Notified = true

  store := newFakeStore(tracking)
  ext := &fakeExtractor{prices: map[string]float64{productURL: 45}}
  sender := &countingSender{}

  monitor := newTestMonitor(t, store, ext, sender)
  runPass(t, monitor)

  got := store.get("t1")
  if got.Notified {
    t.Error("notified = true, want false")
  }
  if got.CurrentPrice != 45 {
    t.Errorf("current price = %v, want 45", got.CurrentPrice)
  }
  if emails, messages := sender.counts(); emails != 0 || messages != 0 {
    t.Errorf("unexpected sends: %d emails %d messages", emails, messages)
  }

  ext.set(productURL, 30)
  runPass(t, monitor)

  if emails, messages := sender.counts(); emails != 1 || messages != 1 {
    t.Errorf("new episode sends = %d emails %d messages, want one each", emails, messages)
  }
  if !store.get("t1").Notified {
    t.Error("notified = false after new drop")
  }
}

func TestFallbackRecordIsNotAnObservation(t *testing.T) {
  store := newFakeStore(newTracking("t1"))
  ext := &fakeExtractor{prices: map[string]float64{}}
  sender := &countingSender{}

  monitor := newTestMonitor(t, store, ext, sender)
  runPass(t, monitor)

  got := store.get("t1")
  if got.CurrentPrice != 50 || got.Notified {
    t.Errorf("tracking changed by fallback: %+v", got)
  }
  if store.writeCount() != 0 {
    t.Errorf("store writes = %d, want 0", store.writeCount())
  }
  if emails, messages := sender.counts(); emails != 0 || messages != 0 {
    t.Errorf("unexpected sends: %d emails %d messages", emails, messages)
  }
}

func TestUnchangedPriceAboveTargetWritesNothing(t *testing.T) {
  store := newFakeStore(newTracking("t1"))
  ext := &fakeExtractor{prices: map[string]float64{productURL: 50}}

  monitor := newTestMonitor(t, store, ext, &countingSender{})
  runPass(t, monitor)

  if store.writeCount() != 0 {
    t.Errorf("store writes = %d, want 0", store.writeCount())
  }
}

func TestOriginalPriceSeededOnce(t *testing.T) {
  tracking := newTracking("t1")
  tracking.CurrentPrice = 0
  tracking.OriginalPrice = 0

  store := newFakeStore(tracking)
  ext := &fakeExtractor{prices: map[string]float64{productURL: 60}}

  monitor := newTestMonitor(t, store, ext, &countingSender{})
  runPass(t, monitor)

  if got := store.get("t1"); got.OriginalPrice != 60 || got.CurrentPrice != 60 {
    t.Fatalf("after first observation: %+v", got)
  }

  ext.set(productURL, 55)
  runPass(t, monitor)

  if got := store.get("t1"); got.OriginalPrice != 60 || got.CurrentPrice != 55 {
    t.Errorf("original price overwritten: %+v", got)
  }
}

func TestItemFailureDoesNotAbortPass(t *testing.T) {
  broken := newTracking("broken")
  healthy := newTracking("healthy")

  store := newFakeStore(broken, healthy)
  store.failPrice["broken"] = true

  ext := &fakeExtractor{prices: map[string]float64{productURL: 35}}
  sender := &countingSender{}

  monitor := newTestMonitor(t, store, ext, sender)
  result := runPass(t, monitor)

  if result.Failed != 1 || result.Total != 2 {
    t.Errorf("result = %+v", result)
  }
  if !store.get("healthy").Notified {
    t.Error("healthy tracking was not processed")
  }
  if store.get("broken").Notified {
    t.Error("broken tracking must not be flagged")
  }
}

func TestUndeliveredAlertIsRetried(t *testing.T) {
  store := newFakeStore(newTracking("t1"))
  ext := &fakeExtractor{prices: map[string]float64{productURL: 35}}
  sender := &countingSender{err: errors.New("provider unavailable")}

  monitor := newTestMonitor(t, store, ext, sender)
  runPass(t, monitor)

  if store.get("t1").Notified {
    t.Fatal("notified set although nothing was delivered")
  }

  sender.setErr(nil)
  runPass(t, monitor)

  if !store.get("t1").Notified {
    t.Error("notified not set after successful retry")
  }
  if emails, messages := sender.counts(); emails != 2 || messages != 2 {
    t.Errorf("sends = %d emails %d messages, want two each", emails, messages)
  }
}

func TestInvalidRecipientIsTerminal(t *testing.T) {
  store := newFakeStore(newTracking("t1"))
  ext := &fakeExtractor{prices: map[string]float64{productURL: 35}}
  sender := &countingSender{err: models.ErrInvalidRecipient}

  monitor := newTestMonitor(t, store, ext, sender)
  runPass(t, monitor)

  if !store.get("t1").Notified {
    t.Error("notified must be set when the recipient is invalid")
  }
}

func TestRunPassDoesNotOverlap(t *testing.T) {
  monitor := newTestMonitor(t, newFakeStore(), &fakeExtractor{prices: map[string]float64{}}, &countingSender{})

  monitor.pass.Lock()
  _, err := monitor.RunPass(context.Background())
  monitor.pass.Unlock()

  if !errors.Is(err, ErrPassInProgress) {
    t.Errorf("RunPass during another pass: got %v, want ErrPassInProgress", err)
  }
}

func TestRunMakesEagerPass(t *testing.T) {
  store := newFakeStore(newTracking("t1"))
  ext := &fakeExtractor{prices: map[string]float64{productURL: 35}}

  monitor, err := NewMonitor(Config{Interval: time.Hour, Workers: 2}, Dependencies{
    Store:     store,
    Extractor: ext,
    Notifier:  notifier.NewNotifier(notifier.Dependencies{}),
  })
  if err != nil {
    t.Fatalf("NewMonitor: %v", err)
  }

  ctx, cancel := context.WithCancel(context.Background())
  done := make(chan error, 1)

  go func() {
    done <- monitor.Run(ctx)
  }()

  deadline := time.After(5 * time.Second)
  for store.listCalls() == 0 {
    select {
    case <-deadline:
      t.Fatal("eager pass did not run")
    case <-time.After(10 * time.Millisecond):
    }
  }

  cancel()

  select {
  case err = <-done:
    if err != nil {
      t.Errorf("Run: %v", err)
    }
  case <-time.After(5 * time.Second):
    t.Fatal("Run did not stop after cancel")
  }

  if store.listCalls() != 1 {
    t.Errorf("passes = %d, want 1", store.listCalls())
  }
}

func TestNewMonitorValidation(t *testing.T) {
  if _, err := NewMonitor(Config{}, Dependencies{}); err == nil {
    t.Error("expected validation error")
  }

  deps := Dependencies{
    Store:     newFakeStore(),
    Extractor: &fakeExtractor{prices: map[string]float64{}},
    Notifier:  notifier.NewNotifier(notifier.Dependencies{}),
  }

  for _, workers := range []int{0, 256, 300} {
    config := DefaultConfig()
    config.Workers = workers

    if _, err := NewMonitor(config, deps); err == nil {
      t.Errorf("NewMonitor(Workers=%d): expected validation error", workers)
    }
  }

  config := DefaultConfig()
  config.Workers = 255

  if _, err := NewMonitor(config, deps); err != nil {
    t.Errorf("NewMonitor(Workers=255): %v", err)
  }
}
