package snapshot

import (
	"fmt"

	"github.com/google/uuid"
)

// Namespace seeds every snapshot id.
var Namespace = uuid.MustParse("6f1c2a4e-8d0b-5e7a-9c3f-2b4d6e8f0a1c")

func v5(ns uuid.UUID, name string) uuid.UUID {
	return uuid.NewSHA1(ns, []byte(name))
}

// ViewID identifies the snapshot of one level and state within a named release.
func ViewID(release, level string, state *int64) uuid.UUID {
	s := "all"
	if state != nil {
		s = fmt.Sprint(*state)
	}
	return v5(Namespace, "view:"+release+":"+level+":"+s)
}

func UnitID(view uuid.UUID, ordinal int) uuid.UUID {
	return v5(view, fmt.Sprintf("unit:%d", ordinal))
}
