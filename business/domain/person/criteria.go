package person

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Criteria represents the closed set of listing operations a search request
// can select. An unrecognized keyword falls into CriteriaAll.
type Criteria int

const (
	CriteriaAll Criteria = iota
	CriteriaCountry
	CriteriaLastName
	CriteriaMaximumAge
	CriteriaMinimumAge
	CriteriaEmail
)

var criteriaNames = [...]string{"", "country", "last", "maximumAge", "minimumAge", "email"}

// String implements the stringer interface.
func (c Criteria) String() string {
	if c < CriteriaAll || c > CriteriaEmail {
		return "UNKNOWN"
	}
	return criteriaNames[c]
}

// ParseCriteria creates a criteria from its keyword. The keywords are matched
// exactly, anything else selects the full enumeration.
func ParseCriteria(criteria string) Criteria {
	criteria = strings.TrimSpace(criteria)

	for i := int(CriteriaCountry); i <= int(CriteriaEmail); i++ {
		if criteria == criteriaNames[i] {
			return Criteria(i)
		}
	}
	return CriteriaAll
}

// Query represents one search request: which listing to run and its value.
type Query struct {
	Criteria Criteria
	Value    string
}

// Search dispatches the query to exactly one listing operation. Age criteria
// parse their value first and report a bad number as ErrInvalidAge. All other
// domain rules live in the listing operations themselves.
func (s *Service) Search(ctx context.Context, now time.Time, q Query) ([]Person, error) {
	switch q.Criteria {
	case CriteriaCountry:
		return s.GetByCountry(ctx, q.Value)
	case CriteriaLastName:
		return s.GetByLastName(ctx, q.Value)
	case CriteriaMaximumAge:
		age, err := parseAge(q.Value)
		if err != nil {
			return nil, err
		}
		return s.GetByMaximumAge(ctx, now, age)
	case CriteriaMinimumAge:
		age, err := parseAge(q.Value)
		if err != nil {
			return nil, err
		}
		return s.GetByMinimumAge(ctx, now, age)
	case CriteriaEmail:
		return s.GetByEmail(ctx, q.Value)
	default:
		return s.GetAll(ctx)
	}
}

func parseAge(value string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, ErrInvalidAge
	}
	return age, nil
}
