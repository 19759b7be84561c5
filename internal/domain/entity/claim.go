package entity

import "time"

// Claim represents one expense reimbursement request.
type Claim struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`

	// Employee snapshot, denormalized at submit time.
	EmployeeName string `json:"employee_name"`
	EmployeeID   string `json:"employee_id"`
	Designation  string `json:"designation"`
	Department   string `json:"department"`

	SiteName    string `json:"site_name"`
	Unit        string `json:"unit"`
	ProjectID   string `json:"project_id,omitempty"`
	ProjectName string `json:"project_name,omitempty"`

	JourneyDate         time.Time  `json:"journey_date"`
	ReturnDate          *time.Time `json:"return_date,omitempty"`
	TransportMode       string     `json:"transport_mode,omitempty"`
	ReturnTransportMode string     `json:"return_transport_mode,omitempty"`

	AdvanceAmount float64 `json:"advance_amount"`
	TrainFare     float64 `json:"train_fare"`
	HotelFare     float64 `json:"hotel_fare"`
	FoodCost      float64 `json:"food_cost"`
	TotalExpense  float64 `json:"total_expense"`

	Status string `json:"status"`

	HotelReceipt     string `json:"hotel_receipt,omitempty"`
	FoodReceipt      string `json:"food_receipt,omitempty"`
	TransportReceipt string `json:"transport_receipt,omitempty"`

	Coordinator ReviewTriple `json:"coordinator"`
	HR          ReviewTriple `json:"hr"`
	Accounts    ReviewTriple `json:"accounts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy int64     `json:"updated_by,omitempty"`
}

// ReviewTriple holds one stage's review outcome on a claim.
// All three fields are set together and cleared together.
type ReviewTriple struct {
	ReviewerID *int64     `json:"reviewer_id,omitempty"`
	Comment    string     `json:"comment,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// IsSet reports whether the stage has recorded a decision.
func (t ReviewTriple) IsSet() bool {
	return t.ReviewerID != nil
}

// ComputeTotal returns the claim total. The stored total is never
// writable independently; every create/edit goes through this.
func (c *Claim) ComputeTotal() float64 {
	return c.TrainFare + c.HotelFare + c.FoodCost
}

// Window returns the inclusive date window covered by the claim.
// A claim without a return date covers the journey date alone.
func (c *Claim) Window() (time.Time, time.Time) {
	start := c.JourneyDate
	end := c.JourneyDate
	if c.ReturnDate != nil {
		end = *c.ReturnDate
	}
	return start, end
}

// Overlaps reports whether the date windows of two claims intersect.
func (c *Claim) Overlaps(other *Claim) bool {
	aStart, aEnd := c.Window()
	bStart, bEnd := other.Window()
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// ClearReviews wipes all three reviewer triples. An edit invalidates
// every prior review decision, so the claim re-enters the chain clean.
func (c *Claim) ClearReviews() {
	c.Coordinator = ReviewTriple{}
	c.HR = ReviewTriple{}
	c.Accounts = ReviewTriple{}
}
