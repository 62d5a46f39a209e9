package dashboard

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"nexusq/internal/constants"
	"nexusq/internal/events"
	"nexusq/internal/leads"
)

type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	Day   string `json:"day"`
	Leads int    `json:"leads"`
}

type FunnelStage struct {
	Stage string `json:"stage"`
	Value int    `json:"value"`
}

type ActivitySlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type ResponsePoint struct {
	Period string  `json:"period"`
	Time   float64 `json:"time"`
}

type RecentActivity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Overview struct {
	Stats          []Stat           `json:"stats"`
	Trend          []TrendPoint     `json:"trend"`
	Funnel         []FunnelStage    `json:"funnel"`
	Activity       []ActivitySlice  `json:"activity"`
	Response       []ResponsePoint  `json:"response"`
	RecentActivity []RecentActivity `json:"recent_activity"`
}

func BuildOverview(snap Snapshot, now time.Time) Overview {
	return Overview{
		Stats: []Stat{
			{Label: "Leads Captured", Value: strconv.Itoa(len(snap.Leads))},
			{Label: "Avg. Response", Value: "-"},
			{Label: "Conversion", Value: "-"},
			{Label: "Open Intents", Value: "-"},
		},
		Trend:    Trend(snap.Leads, now),
		Funnel:   Funnel(snap.Leads),
		Activity: Activity(snap.Events),
		Response: []ResponsePoint{
			{Period: "Yesterday", Time: 3.2},
			{Period: "Today", Time: 1.8},
		},
		RecentActivity: Recent(snap.Events),
	}
}

// Trend counts leads per UTC day for the seven days ending at now.
func Trend(rows []leads.Lead, now time.Time) []TrendPoint {
	today := now.UTC().Truncate(24 * time.Hour)

	points := make([]TrendPoint, 0, constants.TrendDays)
	index := make(map[string]int, constants.TrendDays)
	for i := constants.TrendDays - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		key := d.Format("2006-01-02")
		index[key] = len(points)
		points = append(points, TrendPoint{Date: key, Day: d.Weekday().String()[:3]})
	}

	for _, l := range rows {
		if i, ok := index[l.CreatedAt.UTC().Format("2006-01-02")]; ok {
			points[i].Leads++
		}
	}
	return points
}

var (
	contactedStatuses = []string{"contacted", "qualifying", "quoted", "booked", "converted"}
	qualifiedStatuses = []string{"qualifying", "quoted", "booked", "converted"}
	convertedStatuses = []string{"booked", "converted"}
)

func statusOf(l leads.Lead) string {
	if l.Status == nil {
		return "new"
	}
	return strings.ToLower(*l.Status)
}

func countIn(rows []leads.Lead, statuses []string) int {
	n := 0
	for _, l := range rows {
		s := statusOf(l)
		for _, want := range statuses {
			if s == want {
				n++
				break
			}
		}
	}
	return n
}

func Funnel(rows []leads.Lead) []FunnelStage {
	return []FunnelStage{
		{Stage: "Leads", Value: len(rows)},
		{Stage: "Contacted", Value: countIn(rows, contactedStatuses)},
		{Stage: "Qualified", Value: countIn(rows, qualifiedStatuses)},
		{Stage: "Converted", Value: countIn(rows, convertedStatuses)},
	}
}

// Activity returns the most frequent event types. Ties keep first-seen order.
func Activity(rows []events.LeadEvent) []ActivitySlice {
	counts := make(map[string]int)
	var order []string
	for _, e := range rows {
		k := strings.ToLower(e.EventType)
		if k == "" {
			k = "unknown"
		}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > constants.TopActivityKinds {
		order = order[:constants.TopActivityKinds]
	}

	if len(order) == 0 {
		return []ActivitySlice{{Name: "no activity", Value: 1}}
	}

	out := make([]ActivitySlice, 0, len(order))
	for _, k := range order {
		out = append(out, ActivitySlice{Name: strings.ReplaceAll(k, "_", " "), Value: counts[k]})
	}
	return out
}

var actionLabels = map[string]string{
	"lead_created":   "Requested Service",
	"status_changed": "Status Updated",
	"call_logged":    "Call Logged",
	"note_added":     "Note Added",
}

func Recent(rows []events.LeadEvent) []RecentActivity {
	if len(rows) > constants.RecentActivityLimit {
		rows = rows[:constants.RecentActivityLimit]
	}

	out := make([]RecentActivity, 0, len(rows))
	for _, e := range rows {
		action, ok := actionLabels[e.EventType]
		if !ok {
			action = e.EventType
		}

		status := "New"
		if v, ok := e.PayloadJSON["status"]; ok && v != nil {
			status = fmt.Sprint(v)
		}

		out = append(out, RecentActivity{
			ID:        e.ID,
			Type:      "lead",
			User:      actorName(e.PayloadJSON),
			Action:    action,
			Status:    status,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

// actorName looks for a name on the payload, then on lead_snapshot, then on lead.
func actorName(p events.Payload) string {
	if n := nonEmpty(p["name"]); n != "" {
		return n
	}
	for _, key := range []string{"lead_snapshot", "lead"} {
		if nested, ok := p[key].(map[string]interface{}); ok {
			if n := nonEmpty(nested["name"]); n != "" {
				return n
			}
		}
	}
	return "Unknown"
}

func nonEmpty(v interface{}) string {
	s, _ := v.(string)
	return s
}
