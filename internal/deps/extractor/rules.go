package extractor

import (
  "github.com/ushakovn/pricewatch/internal/models"
  "github.com/ushakovn/pricewatch/pkg/parser/xpath"
)

func withClass(tag, class string) string {
  return "//" + tag + "[" + xpath.HasClass(class) + "]"
}

func text(expr string) Selector {
  return Selector{XPath: expr}
}

func attr(expr, key string) Selector {
  return Selector{XPath: expr, Attr: key}
}

func SiteRules() []Rule {
  return []Rule{
    {
      Site:  models.SiteAmazon,
      Match: MatchDomains("amazon.com", "amazon.in"),
      Name: []Selector{
        text(`//*[@id='productTitle']`),
        text(`//h1`),
      },
      Image: []Selector{
        attr(`//*[@id='imgTagWrapperId']//img`, "src"),
        attr(`//*[@id='landingImage']`, "src"),
        attr(`//img[@id='main-image']`, "src"),
      },
      Price: []Selector{
        text(withClass("*", "priceToPay") + `//span`),
        text(withClass("*", "a-offscreen")),
      },
      Listing: &ListingRule{
        Item:      ".s-result-item",
        Name:      "h2 a span",
        Image:     "img.s-image",
        ImageAttr: "src",
        Price:     ".a-price .a-offscreen",
      },
    },
    {
      Site:  models.SiteFlipkart,
      Match: MatchDomains("flipkart.com"),
      Name: []Selector{
        text(withClass("*", "_2cLu-l")),
        text(withClass("span", "B_NuCI")),
      },
      Image: []Selector{
        attr(withClass("*", "_3gnMPk")+`//img`, "src"),
      },
      Price: []Selector{
        text(withClass("*", "_25b18c")),
      },
      Listing: &ListingRule{
        Item:      ".bhgxx2",
        Name:      "._2cLu-l",
        Image:     "img._3togXc",
        ImageAttr: "src",
        Price:     "._25b18c",
      },
    },
    {
      Site:  models.SiteMeesho,
      Match: MatchDomains("meesho.com"),
      Name: []Selector{
        text(`//h1`),
      },
      Image: []Selector{
        attr(withClass("*", "image-container")+`//img`, "src"),
      },
      Price: []Selector{
        text(withClass("*", "price")),
      },
    },
    {
      Site:  models.SiteWestside,
      Match: MatchDomains("westside.com"),
      Name: []Selector{
        text(withClass("h1", "product-name")),
      },
      Image: []Selector{
        attr(withClass("*", "product-image")+`//img`, "src"),
      },
      Price: []Selector{
        text(withClass("*", "product-price")),
      },
    },
    {
      Site:  models.SiteHM,
      Match: MatchDomains("hm.com"),
      Name: []Selector{
        text(withClass("h1", "product-name")),
      },
      Image: []Selector{
        attr(withClass("*", "product-image")+`//img`, "src"),
      },
      Price: []Selector{
        text(withClass("*", "price")),
      },
    },
  }
}

// GenericRule has no site label: the page hostname is used instead.
func GenericRule() Rule {
  return Rule{
    Name: []Selector{
      text(`//h1`),
      attr(`//meta[@property='og:title']`, "content"),
      text(`//title`),
    },
    Image: []Selector{
      attr(`//meta[@property='og:image']`, "content"),
      attr(`//img`, "src"),
    },
    Price: []Selector{
      attr(`//meta[@property='product:price:amount']`, "content"),
      attr(`//meta[@property='og:price:amount']`, "content"),
      attr(`//*[@itemprop='price']`, "content"),
      text(`//*[@itemprop='price']`),
    },
  }
}
