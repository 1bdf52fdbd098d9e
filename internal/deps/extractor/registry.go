package extractor

import (
  neturl "net/url"
  "strings"

  set "github.com/deckarep/golang-set/v2"
  "github.com/samber/lo"
  "github.com/ushakovn/pricewatch/internal/models"
)

type Matcher func(url string) bool

// Selector picks a field value: the element text when Attr is empty, the attribute otherwise.
type Selector struct {
  XPath string
  Attr  string
}

// ListingRule holds CSS selectors for search/listing pages.
type ListingRule struct {
  Item      string
  Name      string
  Image     string
  ImageAttr string
  Price     string
}

type Rule struct {
  Site    models.Site
  Match   Matcher
  Name    []Selector
  Image   []Selector
  Price   []Selector
  Listing *ListingRule
}

func (r Rule) IsGeneric() bool {
  return r.Site == ""
}

type Registry struct {
  rules   []Rule
  generic Rule
}

// NewRegistry keeps rules in the given order: the first matching rule wins.
func NewRegistry(rules []Rule, generic Rule) *Registry {
  return &Registry{
    rules:   append([]Rule(nil), rules...),
    generic: generic,
  }
}

func DefaultRegistry() *Registry {
  return NewRegistry(SiteRules(), GenericRule())
}

func (r *Registry) Match(url string) Rule {
  rule, ok := lo.Find(r.rules, func(rule Rule) bool {
    return rule.Match != nil && rule.Match(url)
  })
  if !ok {
    return r.generic
  }
  return rule
}

func (r *Registry) KnownSites() set.Set[string] {
  return set.NewSet(lo.Map(r.rules, func(rule Rule, _ int) string {
    return rule.Site
  })...)
}

// MatchDomains accepts URLs whose host is one of the domains or a subdomain of one.
// Unparsable URLs fall back to a plain substring test.
func MatchDomains(domains ...string) Matcher {
  return func(url string) bool {
    host := Hostname(url)

    for _, domain := range domains {
      if host == "" {
        if strings.Contains(url, domain) {
          return true
        }
        continue
      }
      if host == domain || strings.HasSuffix(host, "."+domain) {
        return true
      }
    }
    return false
  }
}

func Hostname(url string) string {
  parsed, err := neturl.Parse(strings.TrimSpace(url))
  if err != nil {
    return ""
  }
  return strings.ToLower(parsed.Hostname())
}
