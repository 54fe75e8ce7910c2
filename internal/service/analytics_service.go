package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Diyorbek0204/dern-support/internal/model"
)

// AnalyticsService computes the manager dashboard. Nothing is cached; each
// call reads the current tickets and users.
type AnalyticsService struct {
	tickets TicketStore
	users   UserStore
	now     func() time.Time
}

func NewAnalyticsService(tickets TicketStore, users UserStore) *AnalyticsService {
	return &AnalyticsService{tickets: tickets, users: users, now: func() time.Time { return time.Now().UTC() }}
}

type IssueTypeCounts struct {
	Hardware int `json:"hardware"`
	Software int `json:"software"`
	Network  int `json:"network"`
	Other    int `json:"other"`
}

type DailyCount struct {
	Date      string `json:"date"`
	Requests  int    `json:"requests"`
	Completed int    `json:"completed"`
}

type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// Analytics is the dashboard payload.
type Analytics struct {
	TotalRequests      int             `json:"totalRequests"`
	CompletedRequests  int             `json:"completedRequests"`
	PendingRequests    int             `json:"pendingRequests"`
	InProgressRequests int             `json:"inProgressRequests"`
	RejectedRequests   int             `json:"rejectedRequests"`
	IssueTypes         IssueTypeCounts `json:"issueTypes"`
	MonthlyData        []DailyCount    `json:"monthlyData"`
	LocationData       []CityCount     `json:"locationData"`
	TotalUsers         int             `json:"totalUsers"`
	TotalMasters       int             `json:"totalMasters"`
	TotalManagers      int             `json:"totalManagers"`
	TotalRevenue       int64           `json:"totalRevenue"`
}

// Compute builds the dashboard. Managers only.
func (s *AnalyticsService) Compute(ctx context.Context, caller Caller) (*Analytics, error) {
	if err := caller.require(model.RoleManager); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return buildAnalytics(tickets, users, s.now()), nil
}

// monthlyWindow is the number of days covered by MonthlyData.
const monthlyWindow = 30

func buildAnalytics(tickets []*model.SupportRequest, users []*model.User, now time.Time) *Analytics {
	a := &Analytics{TotalRequests: len(tickets)}

	now = now.UTC()
	days := make([]DailyCount, monthlyWindow)
	index := make(map[string]int, monthlyWindow)
	for i := 0; i < monthlyWindow; i++ {
		d := now.AddDate(0, 0, i-(monthlyWindow-1)).Format(time.DateOnly)
		days[i] = DailyCount{Date: d}
		index[d] = i
	}

	cities := map[string]int{}
	for _, t := range tickets {
		switch t.Status {
		case model.StatusCompleted:
			a.CompletedRequests++
		case model.StatusPending:
			a.PendingRequests++
		case model.StatusInProgress:
			a.InProgressRequests++
		case model.StatusRejected:
			a.RejectedRequests++
		}
		switch t.IssueType {
		case model.IssueHardware:
			a.IssueTypes.Hardware++
		case model.IssueSoftware:
			a.IssueTypes.Software++
		case model.IssueNetwork:
			a.IssueTypes.Network++
		case model.IssueOther:
			a.IssueTypes.Other++
		}
		if i, ok := index[t.CreatedAt.UTC().Format(time.DateOnly)]; ok {
			days[i].Requests++
			if t.Status == model.StatusCompleted {
				days[i].Completed++
			}
		}
		if t.Location != nil && strings.TrimSpace(*t.Location) != "" {
			cities[cityOf(*t.Location)]++
		}
		if t.Price != nil {
			a.TotalRevenue += *t.Price
		}
	}
	a.MonthlyData = days

	a.LocationData = make([]CityCount, 0, len(cities))
	for city, n := range cities {
		a.LocationData = append(a.LocationData, CityCount{City: city, Count: n})
	}
	sort.Slice(a.LocationData, func(i, j int) bool {
		if a.LocationData[i].Count != a.LocationData[j].Count {
			return a.LocationData[i].Count > a.LocationData[j].Count
		}
		return a.LocationData[i].City < a.LocationData[j].City
	})

	for _, u := range users {
		switch u.Role {
		case model.RoleUser:
			a.TotalUsers++
		case model.RoleMaster:
			a.TotalMasters++
		case model.RoleManager:
			a.TotalManagers++
		}
	}
	return a
}

// OtherCity is the bucket for locations that match no known city.
const OtherCity = "Boshqa"

var knownCities = []struct {
	name     string
	spelling []string
}{
	{"Toshkent", []string{"toshkent", "tashkent"}},
	{"Samarqand", []string{"samarqand", "samarkand"}},
	{"Buxoro", []string{"buxoro", "bukhara"}},
	{"Andijon", []string{"andijon", "andijan"}},
	{"Farg'ona", []string{"farg'ona", "fergana"}},
}

func cityOf(location string) string {
	l := strings.ToLower(location)
	for _, c := range knownCities {
		for _, s := range c.spelling {
			if strings.Contains(l, s) {
				return c.name
			}
		}
	}
	return OtherCity
}
