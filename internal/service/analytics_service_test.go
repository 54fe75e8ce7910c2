package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diyorbek0204/dern-support/internal/model"
)

func TestBuildAnalytics(t *testing.T) {
	now := time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)
	price := int64(250000)
	loc := func(s string) *string { return &s }

	tickets := []*model.SupportRequest{
		{Status: model.StatusCompleted, IssueType: model.IssueHardware, CreatedAt: now, Location: loc("Tashkent, Yunusobod"), Price: &price},
		{Status: model.StatusPending, IssueType: model.IssueSoftware, CreatedAt: now.AddDate(0, 0, -1), Location: loc("SAMARKAND")},
		{Status: model.StatusInProgress, IssueType: model.IssueNetwork, CreatedAt: now.AddDate(0, 0, -29), Location: loc("Nukus")},
		{Status: model.StatusRejected, IssueType: model.IssueOther, CreatedAt: now.AddDate(0, 0, -30), Location: loc("toshkent")},
		{Status: model.StatusAwaitingApproval, IssueType: model.IssueHardware, CreatedAt: now.AddDate(0, -3, 0)},
	}
	users := []*model.User{{Role: model.RoleUser}, {Role: model.RoleUser}, {Role: model.RoleMaster}, {Role: model.RoleManager}}

	a := buildAnalytics(tickets, users, now)

	assert.Equal(t, 5, a.TotalRequests)
	assert.Equal(t, 1, a.CompletedRequests)
	assert.Equal(t, 1, a.PendingRequests)
	assert.Equal(t, 1, a.InProgressRequests)
	assert.Equal(t, 1, a.RejectedRequests)
	assert.Equal(t, IssueTypeCounts{Hardware: 2, Software: 1, Network: 1, Other: 1}, a.IssueTypes)
	assert.Equal(t, int64(250000), a.TotalRevenue)
	assert.Equal(t, 2, a.TotalUsers)
	assert.Equal(t, 1, a.TotalMasters)
	assert.Equal(t, 1, a.TotalManagers)

	require.Len(t, a.MonthlyData, 30)
	assert.Equal(t, "2024-06-01", a.MonthlyData[0].Date)
	assert.Equal(t, DailyCount{Date: "2024-06-30", Requests: 1, Completed: 1}, a.MonthlyData[29])
	assert.Equal(t, 1, a.MonthlyData[28].Requests)
	assert.Equal(t, 1, a.MonthlyData[0].Requests)

	assert.Equal(t, []CityCount{
		{City: "Toshkent", Count: 2},
		{City: "Boshqa", Count: 1},
		{City: "Samarqand", Count: 1},
	}, a.LocationData)
}

func TestAnalyticsManagersOnly(t *testing.T) {
	svc := NewAnalyticsService(nil, nil)
	_, err := svc.Compute(context.Background(), Caller{ID: "u", Role: model.RoleMaster})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCityOf(t *testing.T) {
	assert.Equal(t, "Farg'ona", cityOf("Fergana vodiysi"))
	assert.Equal(t, "Buxoro", cityOf("buxoro sh."))
	assert.Equal(t, "Andijon", cityOf("Andijan"))
	assert.Equal(t, OtherCity, cityOf("Termiz"))
}
