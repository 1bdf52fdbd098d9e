package stringer

import (
  "html"
  "regexp"
  "strconv"
  "strings"

  "github.com/microcosm-cc/bluemonday"
)

const SeparatorSpace = " "

var (
  policy         = bluemonday.StrictPolicy()
  RegexNonDigit  = regexp.MustCompile(`[^0-9]`)
  RegexRepeatSep = regexp.MustCompile(`\s{2,}`)
)

func StripTags(s string) string {
  return strings.TrimSpace(policy.Sanitize(s))
}

func Strip(s string) string {
  return strings.TrimSpace(s)
}

func IsEmptyStr(s string) bool {
  return Strip(s) == ""
}

func TrimRepeatSeparators(s string, repl string) string {
  return RegexRepeatSep.ReplaceAllString(Strip(s), repl)
}

// SanitizeText strips markup, unescapes entities and collapses whitespace runs.
func SanitizeText(s string) string {
  s = StripTags(s)
  s = html.UnescapeString(s)
  s = TrimRepeatSeparators(s, SeparatorSpace)
  return s
}

func NormalizeDigits(s string) string {
  return RegexNonDigit.ReplaceAllLiteralString(s, "")
}

// NormalizePriceStr keeps digits and decimal points followed by a digit.
// A second decimal point ends the number: "19.9919.99" becomes "19.9919".
func NormalizePriceStr(s string) string {
  var (
    sb     strings.Builder
    dotted bool
  )
  runes := []rune(s)

  for index, r := range runes {
    if isDigit(r) {
      sb.WriteRune(r)
      continue
    }
    if r != '.' || index+1 >= len(runes) || !isDigit(runes[index+1]) {
      continue
    }
    if dotted {
      break
    }
    dotted = true
    sb.WriteRune(r)
  }

  return sb.String()
}

func isDigit(r rune) bool {
  return r >= '0' && r <= '9'
}

// ParsePrice returns zero when the text holds no parsable number.
func ParsePrice(s string) float64 {
  s = NormalizePriceStr(s)
  if s == "" {
    return 0
  }
  value, err := strconv.ParseFloat(s, 64)
  if err != nil || value < 0 {
    return 0
  }
  return value
}
