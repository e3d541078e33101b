package service

import (
	"sort"
	"time"

	"breaktime-service/src/models"
	"breaktime-service/src/schemas"
)

// Aggregation over log rows. Every function here is pure: it works on
// rows already fetched from the store, so the math is testable without
// a database.

// ComplianceCounts tallies completed breaks inside and outside their
// type's limit. Entries without a configured limit count as within.
func ComplianceCounts(entries []models.BreakLogDetail) (within, over int) {
	for i := range entries {
		e := &entries[i]
		if e.Action != models.ActionBack || e.DurationMinutes == nil {
			continue
		}
		if e.OverLimit() {
			over++
		} else {
			within++
		}
	}
	return within, over
}

// ComplianceRate converts within/over counts to a percentage. With no
// completed breaks at all the team is trivially compliant.
func ComplianceRate(within, over int) float64 {
	total := within + over
	if total == 0 {
		return 100.0
	}
	return models.Round1(100 * float64(within) / float64(total))
}

// TotalBreakTime sums completed durations of counted break types only.
// Restroom time is tracked but excluded from the total.
func TotalBreakTime(entries []models.BreakLogDetail) float64 {
	var total float64
	for i := range entries {
		e := &entries[i]
		if e.Action == models.ActionBack && e.DurationMinutes != nil && e.CountedInTotal {
			total += *e.DurationMinutes
		}
	}
	return models.Round1(total)
}

// TotalBreakTimeAll sums completed durations across every type.
func TotalBreakTimeAll(entries []models.BreakLogDetail) float64 {
	var total float64
	for i := range entries {
		e := &entries[i]
		if e.Action == models.ActionBack && e.DurationMinutes != nil {
			total += *e.DurationMinutes
		}
	}
	return models.Round1(total)
}

// MaxOverdue returns the worst over-limit overshoot among completed
// breaks, in minutes.
func MaxOverdue(entries []models.BreakLogDetail) float64 {
	var worst float64
	for i := range entries {
		e := &entries[i]
		if !e.OverLimit() {
			continue
		}
		overshoot := *e.DurationMinutes - float64(*e.TimeLimitMinutes)
		if overshoot > worst {
			worst = overshoot
		}
	}
	return models.Round1(worst)
}

// MissingClockBacks is the raw OUT minus BACK count. It is reported
// verbatim; a negative value means more backs than outs and is a data
// quality signal, not an error.
func MissingClockBacks(entries []models.BreakLogDetail) int {
	var outs, backs int
	for i := range entries {
		switch entries[i].Action {
		case models.ActionOut:
			outs++
		case models.ActionBack:
			backs++
		}
	}
	return outs - backs
}

// MissingClockBacksByUserType groups unmatched clock-outs per user and
// break type. Only positive counts are reported; they are the sessions
// someone walked away from.
func MissingClockBacksByUserType(entries []models.BreakLogDetail) []schemas.MissingClockBack {
	type key struct {
		user int64
		code string
	}
	type acc struct {
		externalID int64
		fullName   string
		typeName   string
		outs       int
		backs      int
		lastOut    time.Time
	}
	byKey := make(map[key]*acc)
	var keys []key

	for i := range entries {
		e := &entries[i]
		k := key{e.UserID, e.BreakTypeCode}
		a, ok := byKey[k]
		if !ok {
			a = &acc{
				externalID: e.ExternalID,
				fullName:   e.FullName,
				typeName:   e.BreakTypeName,
			}
			byKey[k] = a
			keys = append(keys, k)
		}
		switch e.Action {
		case models.ActionOut:
			a.outs++
			if e.Timestamp.After(a.lastOut) {
				a.lastOut = e.Timestamp
			}
		case models.ActionBack:
			a.backs++
		}
	}

	var missing []schemas.MissingClockBack
	for _, k := range keys {
		a := byKey[k]
		if a.outs <= a.backs {
			continue
		}
		m := schemas.MissingClockBack{
			UserID:        a.externalID,
			FullName:      a.fullName,
			BreakTypeCode: k.code,
			BreakType:     a.typeName,
			Missing:       a.outs - a.backs,
		}
		if !a.lastOut.IsZero() {
			m.LastOut = a.lastOut.Format(time.RFC3339)
		}
		missing = append(missing, m)
	}

	sort.Slice(missing, func(i, j int) bool {
		if missing[i].FullName != missing[j].FullName {
			return missing[i].FullName < missing[j].FullName
		}
		return missing[i].BreakTypeCode < missing[j].BreakTypeCode
	})
	return missing
}

// ComplianceTrend computes one compliance read per requested date from
// entries spanning the whole window. Dates with no entries are reported
// as trivially compliant, not omitted.
func ComplianceTrend(entries []models.BreakLogDetail, dates []string) []schemas.ComplianceResponse {
	byDate := make(map[string][]models.BreakLogDetail)
	for i := range entries {
		byDate[entries[i].LogDate] = append(byDate[entries[i].LogDate], entries[i])
	}

	trend := make([]schemas.ComplianceResponse, 0, len(dates))
	for _, date := range dates {
		trend = append(trend, *complianceFor(date, byDate[date]))
	}
	return trend
}

// PeakHours returns the busiest clock-out hours, most outs first, ties
// broken by earlier hour. Hours with no outs never appear.
func PeakHours(buckets []schemas.HourlyBucket, top int) []schemas.HourlyBucket {
	var busy []schemas.HourlyBucket
	for _, b := range buckets {
		if b.Outs > 0 {
			busy = append(busy, b)
		}
	}

	sort.Slice(busy, func(i, j int) bool {
		if busy[i].Outs != busy[j].Outs {
			return busy[i].Outs > busy[j].Outs
		}
		return busy[i].Hour < busy[j].Hour
	})

	if len(busy) > top {
		busy = busy[:top]
	}
	return busy
}

// Distribution groups completed breaks by type with each type's share
// of the day's break count.
func Distribution(entries []models.BreakLogDetail) []schemas.TypeDistribution {
	type acc struct {
		name    string
		count   int
		minutes float64
	}
	byCode := make(map[string]*acc)
	var codes []string
	var total int

	for i := range entries {
		e := &entries[i]
		if e.Action != models.ActionBack || e.DurationMinutes == nil {
			continue
		}
		a, ok := byCode[e.BreakTypeCode]
		if !ok {
			a = &acc{name: e.BreakTypeName}
			byCode[e.BreakTypeCode] = a
			codes = append(codes, e.BreakTypeCode)
		}
		a.count++
		a.minutes += *e.DurationMinutes
		total++
	}

	sort.Strings(codes)

	dist := make([]schemas.TypeDistribution, 0, len(codes))
	for _, code := range codes {
		a := byCode[code]
		pct := 0.0
		if total > 0 {
			pct = models.Round1(100 * float64(a.count) / float64(total))
		}
		dist = append(dist, schemas.TypeDistribution{
			BreakTypeCode: code,
			BreakType:     a.name,
			Count:         a.count,
			TotalMinutes:  models.Round1(a.minutes),
			Percentage:    pct,
		})
	}
	return dist
}

// HourlyHistogram buckets events into the 24 hours of the service
// timezone clock. Net is unclamped so an hour where more people came
// back than left shows as negative.
func HourlyHistogram(entries []models.BreakLogDetail, location *time.Location) []schemas.HourlyBucket {
	buckets := make([]schemas.HourlyBucket, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}

	for i := range entries {
		e := &entries[i]
		h := e.Timestamp.In(location).Hour()
		switch e.Action {
		case models.ActionOut:
			buckets[h].Outs++
		case models.ActionBack:
			buckets[h].Backs++
		}
	}

	for h := range buckets {
		buckets[h].Net = buckets[h].Outs - buckets[h].Backs
	}
	return buckets
}

// AgentSummaries rolls the day's entries up per user. onBreak holds the
// user ids with an open session right now.
func AgentSummaries(entries []models.BreakLogDetail, onBreak map[int64]bool) []schemas.AgentSummary {
	type acc struct {
		summary schemas.AgentSummary
		entries []models.BreakLogDetail
	}
	byUser := make(map[int64]*acc)
	var order []int64

	for i := range entries {
		e := &entries[i]
		a, ok := byUser[e.UserID]
		if !ok {
			a = &acc{summary: schemas.AgentSummary{
				UserID:   e.UserID,
				FullName: e.FullName,
				OnBreak:  onBreak[e.UserID],
			}}
			byUser[e.UserID] = a
			order = append(order, e.UserID)
		}
		a.entries = append(a.entries, *e)
	}

	summaries := make([]schemas.AgentSummary, 0, len(order))
	for _, id := range order {
		a := byUser[id]
		within, over := ComplianceCounts(a.entries)
		a.summary.TotalBreaks = within + over
		a.summary.TotalMinutes = TotalBreakTime(a.entries)
		a.summary.BreaksWithinLimit = within
		a.summary.BreaksOverLimit = over
		a.summary.ComplianceRate = ComplianceRate(within, over)
		a.summary.MissingClockBacks = MissingClockBacks(a.entries)
		summaries = append(summaries, a.summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].FullName < summaries[j].FullName
	})
	return summaries
}

// OverdueSessions filters open sessions past their type's limit at now.
func OverdueSessions(sessions []models.ActiveSessionDetail, now time.Time) []models.ActiveSessionDetail {
	var overdue []models.ActiveSessionDetail
	for i := range sessions {
		s := &sessions[i]
		if s.TimeLimitMinutes == nil {
			continue
		}
		if s.ElapsedMinutes(now) > float64(*s.TimeLimitMinutes) {
			overdue = append(overdue, *s)
		}
	}
	return overdue
}
