package worker

import (
  "context"
  "sync"
  "time"

  log "github.com/sirupsen/logrus"
)

const DefaultCount = 5

type Call func(ctx context.Context) error

type Config struct {
  Count       uint8
  CallTimeout time.Duration
}

type Pool struct {
  config  Config
  mu      sync.RWMutex
  ch      chan Call
  done    chan struct{}
  stopped bool
}

func NewPool(ctx context.Context, config Config) *Pool {
  if config.Count == 0 {
    config.Count = DefaultCount
  }
  pool := &Pool{
    config: config,
    ch:     make(chan Call),
    done:   make(chan struct{}),
  }
  pool.start(ctx)

  return pool
}

func (p *Pool) start(ctx context.Context) {
  var wg sync.WaitGroup

  wg.Add(int(p.config.Count))

  for index := 0; index < int(p.config.Count); index++ {
    go func() {
      defer wg.Done()

      for {
        select {
        case <-ctx.Done():
          log.Warn("worker.pool: context cancelled: worker stopped")
          return

        case call, ok := <-p.ch:
          if !ok {
            return
          }
          if err := p.invoke(ctx, call); err != nil {
            log.Errorf("worker.pool: worker call failed: %v", err)
          }
        }
      }
    }()
  }

  go func() {
    wg.Wait()

    close(p.done)
  }()
}

func (p *Pool) invoke(ctx context.Context, call Call) error {
  if p.config.CallTimeout <= 0 {
    return call(ctx)
  }
  callCtx, cancel := context.WithTimeout(ctx, p.config.CallTimeout)
  defer cancel()

  return call(callCtx)
}

// Push blocks until a worker takes the call or the context is done.
func (p *Pool) Push(ctx context.Context, call Call) bool {
  p.mu.RLock()
  defer p.mu.RUnlock()

  if p.stopped {
    return false
  }

  select {
  case <-ctx.Done():
    return false
  case <-p.done:
    return false
  case p.ch <- call:
    return true
  }
}

func (p *Pool) StopWait() {
  p.mu.Lock()
  if !p.stopped {
    p.stopped = true
    close(p.ch)
  }
  p.mu.Unlock()

  <-p.done
}
