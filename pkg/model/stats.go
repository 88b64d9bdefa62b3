package model

// DashboardStats is the read-only rollup served to the admin dashboard.
// Field names match what the dashboard consumes; everything is recomputed on
// demand, nothing is cached.
type DashboardStats struct {
	UserCount           int64         `json:"userCount"`
	NewUsersThisMonth   int64         `json:"newUsersThisMonth"`
	SpaceCount          int64         `json:"spaceCount"`
	ActiveSpaceCount    int64         `json:"activeSpaceCount"`
	BookingCount        int64         `json:"bookingCount"`
	PendingBookingCount int64         `json:"pendingBookingCount"`
	TotalRevenue        float64       `json:"totalRevenue"`
	RevenueChange       float64       `json:"revenueChange"`
	BookingTrends       []TrendPoint  `json:"bookingTrends"`
	BookingsByStatus    []StatusCount `json:"bookingsByStatus"`
	PopularSpaces       []SpaceRank   `json:"popularSpaces"`
	RecentBookings      []*Booking    `json:"recentBookings"`
}

// TrendPoint is one day's booking count, keyed by date in YYYY-MM-DD form.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// SpaceRank orders spaces by booking count descending; ties break by space id
// ascending so rankings are deterministic.
type SpaceRank struct {
	SpaceID   string `json:"space_id"`
	SpaceName string `json:"space_name"`
	Bookings  int    `json:"bookings"`
}
