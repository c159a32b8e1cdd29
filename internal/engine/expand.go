package engine

import (
	"fmt"
	"time"

	"gitlab.com/yelinaung/finflow/internal/models"
)

// Expand materializes the instances of a recurring definition whose dates
// fall inside [from, to], both inclusive. It is a pure function: identical
// inputs always yield the identical ordered result, dates ascending with
// instance indexes ascending.
//
// Monthly, quarterly and yearly steps are anchored to the definition's
// start day-of-month: a Jan 31 monthly definition lands on Feb 28 (or 29)
// and returns to the 31st in March. Each target month clamps
// independently; a clamp never re-bases later steps.
func Expand(def *models.RecurringDefinition, from, to time.Time) ([]models.Instance, error) {
	if err := validateDefinition(def); err != nil {
		return nil, err
	}

	if from.Before(def.StartDate) {
		from = def.StartDate
	}

	var instances []models.Instance
	for index := 0; ; index++ {
		if def.Occurrences != nil && index >= *def.Occurrences {
			break
		}
		cursor := stepDate(def.StartDate, def.Frequency, index)
		if def.EndDate != nil && cursor.After(*def.EndDate) {
			break
		}
		if cursor.After(to) {
			break
		}
		if cursor.Before(from) {
			continue
		}
		instances = append(instances, models.Instance{
			ID:            fmt.Sprintf("%s_%d", def.Base.ID, index),
			RecurringID:   def.ID,
			InstanceIndex: index,
			Date:          cursor,
			Amount:        def.Base.Amount,
			Currency:      def.Base.Currency,
			Category:      def.Base.Category,
			Type:          def.Base.Type,
			Note:          def.Base.Note,
		})
	}

	return instances, nil
}

func validateDefinition(def *models.RecurringDefinition) error {
	if def.EndDate != nil && def.Occurrences != nil {
		return fmt.Errorf("%w: endDate and occurrences are mutually exclusive", ErrInvalidDefinition)
	}
	if def.Occurrences != nil && *def.Occurrences <= 0 {
		return fmt.Errorf("%w: occurrences must be positive", ErrInvalidDefinition)
	}
	if def.EndDate != nil && def.StartDate.After(*def.EndDate) {
		return fmt.Errorf("%w: startDate is after endDate", ErrInvalidDefinition)
	}
	switch def.Frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyBiweekly,
		models.FrequencyMonthly, models.FrequencyQuarterly, models.FrequencyYearly:
		return nil
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidDefinition, def.Frequency)
	}
}

// stepDate computes the date of the index-th occurrence. Computing each
// occurrence from the start date rather than mutating a cursor keeps the
// month anchor intact across clamped months.
func stepDate(start time.Time, frequency string, index int) time.Time {
	switch frequency {
	case models.FrequencyDaily:
		return start.AddDate(0, 0, index)
	case models.FrequencyWeekly:
		return start.AddDate(0, 0, 7*index)
	case models.FrequencyBiweekly:
		return start.AddDate(0, 0, 14*index)
	case models.FrequencyMonthly:
		return addMonthsClamped(start, index)
	case models.FrequencyQuarterly:
		return addMonthsClamped(start, 3*index)
	case models.FrequencyYearly:
		return addMonthsClamped(start, 12*index)
	}
	return start
}

// addMonthsClamped advances by whole months, keeping the day-of-month and
// clamping to the last day of months that are too short (Jan 31 + 1 month
// = Feb 28, Feb 29 + 12 months = Feb 28 in non-leap years).
func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := daysInMonth(first); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// daysInMonth returns the number of days in t's month.
func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
