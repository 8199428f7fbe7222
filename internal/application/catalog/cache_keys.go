package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

func cacheKeyEventDetails(id string) string {
	return fmt.Sprintf("event:%s", id)
}

// Key: events:list:{hash_of_params}
func cacheKeyList(f ListFilter) string {
	day := ""
	if f.Day != nil {
		day = f.Day.Format("2006-01-02")
	}
	loc := ""
	if f.Loc != nil {
		loc = f.Loc.String()
	}
	raw := fmt.Sprintf("day=%s|time=%s|location=%s|name=%s|tz=%s",
		day, f.TimeOfDay, f.Location, f.Name, loc)

	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("events:list:%s", hex.EncodeToString(hash[:]))
}
