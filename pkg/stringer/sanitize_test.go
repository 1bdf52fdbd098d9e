package stringer

import "testing"

func TestParsePrice(t *testing.T) {
  cases := []struct {
    name string
    in   string
    want float64
  }{
    {name: "clean", in: "19.99", want: 19.99},
    {name: "currency symbol", in: "$19.99", want: 19.99},
    {name: "thousands separator", in: "₹1,299.00", want: 1299},
    {name: "integer", in: "499", want: 499},
    {name: "surrounding text", in: " Price: 35 USD ", want: 35},
    {name: "duplicated offscreen text", in: "$19.99$19.99", want: 19.9919},
    {name: "trailing dot", in: "42.", want: 42},
    {name: "abbreviation dot", in: "Rs. 1,299.00", want: 1299},
    {name: "leading decimal point", in: "$.99", want: 0.99},
    {name: "empty", in: "", want: 0},
    {name: "no digits", in: "Currently unavailable.", want: 0},
    {name: "lonely dot", in: ".", want: 0},
  }

  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      if got := ParsePrice(tc.in); got != tc.want {
        t.Errorf("ParsePrice(%q) = %v, want %v", tc.in, got, tc.want)
      }
    })
  }
}

func TestParsePriceIdempotentOnCleanInput(t *testing.T) {
  for _, in := range []string{"19.99", "0.5", "100"} {
    first := NormalizePriceStr(in)
    if first != in {
      t.Errorf("NormalizePriceStr(%q) = %q, want unchanged", in, first)
    }
    if NormalizePriceStr(first) != first {
      t.Errorf("NormalizePriceStr is not idempotent for %q", in)
    }
  }
}

func TestSanitizeText(t *testing.T) {
  got := SanitizeText("  <b>Wireless</b>   Mouse &amp; Pad \n\n ")
  if got != "Wireless Mouse & Pad" {
    t.Errorf("SanitizeText() = %q", got)
  }
}

func TestNormalizeDigits(t *testing.T) {
  if got := NormalizeDigits("+91 (810) 654-1447"); got != "918106541447" {
    t.Errorf("NormalizeDigits() = %q", got)
  }
}
