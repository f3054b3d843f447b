package shared

import "fmt"

// GenerationLockKey builds the redis key guarding a month's billing run.
func GenerationLockKey(year, month int) string {
	return fmt.Sprintf("billing:generate:%04d-%02d:lock", year, month)
}
