package hasher

import (
  "crypto/sha256"
  "fmt"
)

func SHA256(value string) string {
  hash := sha256.New()
  hash.Write([]byte(value))

  return fmt.Sprintf("%x", hash.Sum(nil))
}

// ShortCode returns the first n hex characters of the value's SHA256.
func ShortCode(value string, n int) string {
  sum := SHA256(value)
  if n <= 0 || n > len(sum) {
    return sum
  }
  return sum[:n]
}
