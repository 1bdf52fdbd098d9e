package xpath

import (
  "bytes"
  "fmt"
  "strings"

  "github.com/antchfx/htmlquery"
  "github.com/antchfx/xpath"
  "github.com/ushakovn/pricewatch/pkg/stringer"
  "golang.org/x/net/html"
)

type HtmlDocument struct {
  Node *html.Node
  Url  string
}

func ParseHtmlDoc(url string, body []byte) (*HtmlDocument, error) {
  node, err := html.Parse(bytes.NewReader(body))
  if err != nil {
    return nil, fmt.Errorf("html.Parse: %w", err)
  }

  return &HtmlDocument{
    Node: node,
    Url:  url,
  }, nil
}

// Find never panics: a malformed expression yields no nodes.
func Find(doc *HtmlDocument, expr string) []*html.Node {
  if doc == nil || doc.Node == nil {
    return nil
  }
  if _, err := xpath.Compile(expr); err != nil {
    return nil
  }
  return htmlquery.Find(doc.Node, expr)
}

func FindElement(doc *HtmlDocument, expr string, handler func(node *html.Node) bool) (*html.Node, bool) {
  for _, node := range Find(doc, expr) {
    if node == nil {
      continue
    }
    if handler(node) {
      return node, true
    }
  }

  return nil, false
}

func GetAttribute(node *html.Node, attrKey string) (string, bool) {
  if node == nil {
    return "", false
  }

  for _, attr := range node.Attr {
    if attr.Key != attrKey {
      continue
    }
    value := stringer.Strip(attr.Val)

    return value, value != ""
  }

  return "", false
}

// GetInnerText joins every text node below the element.
func GetInnerText(node *html.Node) (string, bool) {
  if node == nil {
    return "", false
  }

  content := stringer.SanitizeText(htmlquery.InnerText(node))

  return content, !stringer.IsEmptyStr(content)
}

// FirstText returns the inner text of the first matching element that has any.
func FirstText(doc *HtmlDocument, expr string) (string, bool) {
  var content string

  _, ok := FindElement(doc, expr, func(node *html.Node) bool {
    text, ok := GetInnerText(node)
    if ok {
      content = text
    }
    return ok
  })

  return content, ok
}

// FirstAttribute returns the attribute of the first matching element that has it set.
func FirstAttribute(doc *HtmlDocument, expr, attrKey string) (string, bool) {
  var value string

  _, ok := FindElement(doc, expr, func(node *html.Node) bool {
    attr, ok := GetAttribute(node, attrKey)
    if ok {
      value = attr
    }
    return ok
  })

  return value, ok
}

// HasClass builds an expression matching elements carrying the whole class token.
func HasClass(class string) string {
  return fmt.Sprintf("contains(concat(' ', normalize-space(@class), ' '), ' %s ')", strings.TrimSpace(class))
}
