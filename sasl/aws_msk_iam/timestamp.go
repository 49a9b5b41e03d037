package aws_msk_iam

import "time"

// timestamp carries the three textual renderings of a single instant that a
// signing operation needs. All three must come from one time.Time capture so
// a signing operation never straddles a second boundary between them (see
// the Open Questions discussion in SPEC_FULL.md §9).
type timestamp struct {
	ymd string
	hms string
}

func newTimestamp(t time.Time) timestamp {
	t = t.UTC()
	return timestamp{
		ymd: t.Format("20060102"),
		hms: t.Format("150405"),
	}
}

func (ts timestamp) amzDate() string {
	return amzDate(ts.ymd, ts.hms)
}
