package timezone

import (
	"time"
	_ "time/tzdata"
)

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Africa/Tunis")
	if err != nil {
		panic(err)
	}
}

// timestamps are written without an offset, so they are always taken in the
// job board's local time no matter where the scraper runs.
func Now() time.Time {
	return time.Now().In(Location)
}
