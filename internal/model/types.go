package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BillingCycle string

const (
	BillingDaily     BillingCycle = "daily"
	BillingWeekly    BillingCycle = "weekly"
	BillingMonthly   BillingCycle = "monthly"
	BillingQuarterly BillingCycle = "quarterly"
	BillingYearly    BillingCycle = "yearly"
)

func (c BillingCycle) Valid() bool {
	switch c {
	case BillingDaily, BillingWeekly, BillingMonthly, BillingQuarterly, BillingYearly:
		return true
	}
	return false
}

var (
	daysPerMonth  = decimal.NewFromInt(30)
	weeksPerMonth = decimal.RequireFromString("4.33")
	three         = decimal.NewFromInt(3)
	twelve        = decimal.NewFromInt(12)
)

// MonthlyEquivalent converts an amount billed once per cycle into its
// per-month cost.
func (c BillingCycle) MonthlyEquivalent(amount decimal.Decimal) decimal.Decimal {
	switch c {
	case BillingDaily:
		return amount.Mul(daysPerMonth)
	case BillingWeekly:
		return amount.Mul(weeksPerMonth)
	case BillingQuarterly:
		return amount.DivRound(three, 8)
	case BillingYearly:
		return amount.DivRound(twelve, 8)
	default:
		return amount
	}
}

// Advance returns t moved forward by one billing period.
func (c BillingCycle) Advance(t time.Time) time.Time {
	switch c {
	case BillingDaily:
		return t.AddDate(0, 0, 1)
	case BillingWeekly:
		return t.AddDate(0, 0, 7)
	case BillingQuarterly:
		return t.AddDate(0, 3, 0)
	case BillingYearly:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

type Category string

const (
	CategoryEntertainment Category = "entertainment"
	CategoryProductivity  Category = "productivity"
	CategoryBusiness      Category = "business"
	CategoryEducation     Category = "education"
	CategoryHealth        Category = "health"
	CategoryFinance       Category = "finance"
	CategoryOther         Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryEntertainment, CategoryProductivity, CategoryBusiness,
		CategoryEducation, CategoryHealth, CategoryFinance, CategoryOther:
		return true
	}
	return false
}

type UserSubscriptionStatus string

const (
	StatusActive    UserSubscriptionStatus = "active"
	StatusCancelled UserSubscriptionStatus = "cancelled"
	StatusExpired   UserSubscriptionStatus = "expired"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RolePremium Role = "premium"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser || r == RolePremium
}

// Features is the ordered feature list of a package. Storage may hold either
// a JSON array or a newline separated block; both scan into the same list.
type Features []string

// SplitFeatures turns a multi-line text block into a feature list, dropping
// blank lines.
func SplitFeatures(text string) Features {
	features := Features{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		features = append(features, line)
	}
	return features
}

// Text renders the list back into the multi-line form used by edit forms.
// Lossy when a feature itself contains a newline.
func (f Features) Text() string {
	return strings.Join(f, "\n")
}

func (f Features) Value() (driver.Value, error) {
	if f == nil {
		f = Features{}
	}
	b, err := json.Marshal([]string(f))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *Features) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*f = Features{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("features: unsupported source type %T", src)
	}

	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		var list []string
		if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
			*f = SplitFeatures(strings.Join(list, "\n"))
			return nil
		}
	}

	*f = SplitFeatures(raw)
	return nil
}

func (f Features) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(f))
}

// UnmarshalJSON accepts either a list or a multi-line string.
func (f *Features) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*f = SplitFeatures(strings.Join(list, "\n"))
		return nil
	}
	var text string
	if err := json.Unmarshal(b, &text); err != nil {
		return fmt.Errorf("features: expected list or string")
	}
	*f = SplitFeatures(text)
	return nil
}

const DateLayout = "2006-01-02"

// Date is a calendar day without time of day, stored as DATE.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("date: unsupported source type %T", src)
	}
}

func (d *Date) parse(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.parse(s)
}

// Nullable is a patch field that tells an absent value (Set is false) from an
// explicit null (Set is true, Value is nil).
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Some returns a Nullable holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}
