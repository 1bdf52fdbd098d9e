package validator

import (
  "fmt"
  "net/url"
)

func URL(value string) error {
  parsed, err := url.ParseRequestURI(value)
  if err != nil {
    return err
  }
  if parsed.Scheme != "http" && parsed.Scheme != "https" {
    return fmt.Errorf("unsupported scheme: %q", parsed.Scheme)
  }
  if parsed.Host == "" {
    return fmt.Errorf("host not specified")
  }
  return nil
}
