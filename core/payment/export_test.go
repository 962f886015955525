package payment

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// SetNow freezes the service clock; the returned func restores it.
func SetNow(now time.Time) (reset func()) {
	nowFunc = func() time.Time { return now }
	return func() { nowFunc = core.Now }
}
