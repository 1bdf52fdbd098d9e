package similar

import (
  "context"
  "fmt"
  "time"

  "github.com/PuerkitoBio/goquery"
  "github.com/go-playground/validator/v10"
  "github.com/gocolly/colly/v2"
  log "github.com/sirupsen/logrus"
  "github.com/ushakovn/pricewatch/internal/deps/extractor"
  "github.com/ushakovn/pricewatch/internal/deps/fetcher"
  "github.com/ushakovn/pricewatch/internal/models"
  "github.com/ushakovn/pricewatch/pkg/stringer"
)

const (
  DefaultLimit   = 3
  DefaultTimeout = 10 * time.Second
)

type Config struct {
  Limit     int           `validate:"gt=0"`
  Timeout   time.Duration `validate:"gt=0"`
  UserAgent string        `validate:"required"`
  Referer   string        `validate:"required"`
}

func (c *Config) Validate() error {
  return validator.New().Struct(c)
}

func DefaultConfig() Config {
  return Config{
    Limit:     DefaultLimit,
    Timeout:   DefaultTimeout,
    UserAgent: fetcher.DefaultUserAgent,
    Referer:   fetcher.DefaultReferer,
  }
}

type Dependencies struct {
  Registry *extractor.Registry `validate:"required"`
}

func (d *Dependencies) Validate() error {
  return validator.New().Struct(d)
}

type Finder struct {
  config Config
  deps   Dependencies
}

func NewFinder(config Config, deps Dependencies) (*Finder, error) {
  if err := config.Validate(); err != nil {
    return nil, fmt.Errorf("invalid config: %w", err)
  }
  if err := deps.Validate(); err != nil {
    return nil, fmt.Errorf("invalid dependencies: %w", err)
  }

  return &Finder{
    config: config,
    deps:   deps,
  }, nil
}

// FindSimilar collects up to Limit complete listing items in document order.
// Sites without a listing rule and failed visits yield an empty slice.
func (f *Finder) FindSimilar(ctx context.Context, url string) []models.Product {
  rule := f.deps.Registry.Match(url)
  if rule.Listing == nil {
    log.
      WithField("similar.url", url).
      Debug("similar products skipped: site has no listing rule")

    return []models.Product{}
  }
  listing := *rule.Listing

  products := make([]models.Product, 0, f.config.Limit)

  collector := f.newCollector(ctx)

  collector.OnHTML(listing.Item, func(e *colly.HTMLElement) {
    if len(products) >= f.config.Limit {
      return
    }
    product, ok := f.parseItem(e, rule)
    if !ok {
      return
    }
    products = append(products, product)
  })

  if err := collector.Visit(url); err != nil {
    log.
      WithField("similar.url", url).
      Warnf("similar products lookup failed: %v", err)

    return []models.Product{}
  }

  log.
    WithFields(log.Fields{
      "similar.url":   url,
      "similar.count": len(products),
    }).
    Debug("similar products collected")

  return products
}

func (f *Finder) newCollector(ctx context.Context) *colly.Collector {
  collector := colly.NewCollector(
    colly.UserAgent(f.config.UserAgent),
  )
  collector.SetRequestTimeout(f.config.Timeout)

  collector.OnRequest(func(r *colly.Request) {
    if ctx.Err() != nil {
      r.Abort()
      return
    }
    r.Headers.Set("Referer", f.config.Referer)
    r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
  })

  return collector
}

func (f *Finder) parseItem(e *colly.HTMLElement, rule extractor.Rule) (models.Product, bool) {
  listing := rule.Listing

  name := stringer.SanitizeText(firstMatch(e, listing.Name).Text())
  priceText := firstMatch(e, listing.Price).Text()

  imageAttr := listing.ImageAttr
  if imageAttr == "" {
    imageAttr = "src"
  }
  src, _ := firstMatch(e, listing.Image).Attr(imageAttr)
  image := extractor.AbsoluteImageURL(e.Request.URL.String(), src)

  price := stringer.ParsePrice(priceText)

  if name == "" || image == "" || price <= 0 {
    return models.Product{}, false
  }

  var itemURL string
  if link, ok := firstMatch(e, "a[href]").Attr("href"); ok {
    itemURL = e.Request.AbsoluteURL(link)
  }

  product := models.Product{
    URL:      itemURL,
    Name:     name,
    ImageURL: image,
    Price:    price,
    Site:     rule.Site,
  }
  product.SetParsedAt()

  return product, true
}

func firstMatch(e *colly.HTMLElement, selector string) *goquery.Selection {
  return e.DOM.Find(selector).First()
}
