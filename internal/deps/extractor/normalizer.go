package extractor

import (
  neturl "net/url"
  "strings"

  "github.com/ushakovn/pricewatch/internal/models"
  "github.com/ushakovn/pricewatch/pkg/parser/xpath"
  "github.com/ushakovn/pricewatch/pkg/stringer"
)

const secureScheme = "https"

// Normalize always returns a complete record: missing fields fall back to defaults.
func Normalize(doc *xpath.HtmlDocument, rule Rule) models.Product {
  var pageURL string
  if doc != nil {
    pageURL = doc.Url
  }

  name, _ := findFirst(doc, rule.Name)
  if name == "" {
    name = models.DefaultProductName
  }

  image, _ := findFirst(doc, rule.Image)
  priceText, _ := findFirst(doc, rule.Price)

  product := models.Product{
    URL:      pageURL,
    Name:     name,
    ImageURL: AbsoluteImageURL(pageURL, image),
    Price:    stringer.ParsePrice(priceText),
    Site:     siteLabel(rule, pageURL),
  }
  product.SetParsedAt()

  return product
}

// Fallback is the record used when the page could not be fetched at all.
func Fallback(url string) models.Product {
  product := models.Product{
    URL:        url,
    Name:       models.DefaultProductName,
    ImageURL:   "",
    Price:      0,
    Site:       Hostname(url),
    IsFallback: true,
  }
  product.SetParsedAt()

  return product
}

func findFirst(doc *xpath.HtmlDocument, selectors []Selector) (string, bool) {
  for _, selector := range selectors {
    var (
      value string
      ok    bool
    )
    if selector.Attr == "" {
      value, ok = xpath.FirstText(doc, selector.XPath)
    } else {
      value, ok = xpath.FirstAttribute(doc, selector.XPath, selector.Attr)
    }
    if ok {
      return value, true
    }
  }
  return "", false
}

func siteLabel(rule Rule, pageURL string) models.Site {
  if rule.IsGeneric() {
    return Hostname(pageURL)
  }
  return rule.Site
}

// AbsoluteImageURL turns protocol-relative and scheme-less sources into https URLs.
// Root-relative and relative paths are resolved against the page URL.
func AbsoluteImageURL(pageURL, src string) string {
  src = stringer.Strip(src)

  switch {
  case src == "":
    return ""

  case strings.HasPrefix(src, "data:"):
    return ""

  case strings.HasPrefix(src, "//"):
    return secureScheme + ":" + src
  }

  parsed, err := neturl.Parse(src)
  if err != nil {
    return ""
  }

  if parsed.Scheme == "http" || parsed.Scheme == secureScheme {
    return parsed.String()
  }
  if parsed.Scheme != "" {
    return ""
  }

  if !strings.HasPrefix(src, "/") && looksLikeHost(src) {
    return secureScheme + "://" + src
  }

  base, err := neturl.Parse(pageURL)
  if err != nil || base.Host == "" {
    return ""
  }

  resolved := base.ResolveReference(parsed)
  resolved.Scheme = secureScheme

  return resolved.String()
}

func looksLikeHost(src string) bool {
  first, rest, found := strings.Cut(src, "/")
  return found && rest != "" && strings.Contains(first, ".") && !strings.HasPrefix(first, ".")
}
