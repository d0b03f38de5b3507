package usecase

import "time"

// テストで時刻を差し替えるための約束。
type Clock interface {
	Now() time.Time
}
