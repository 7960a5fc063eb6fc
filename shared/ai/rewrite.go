package ai

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var numberedBucket = regexp.MustCompile(`^意見\s*([0-9]+)\s*を支持$`)

// rewriteBucketName turns the model's numbered bucket names (意見1を支持,
// 意見2を支持, ...) into lettered ones (意見 A, 意見 B, ...). Names that do
// not match the numbered form pass through untouched, which also makes the
// rewrite idempotent. Numbers past 26 have no letter and pass through.
func rewriteBucketName(name string) string {
	m := numberedBucket.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return name
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 26 {
		return name
	}
	return fmt.Sprintf("意見 %c", rune('A'+n-1))
}
