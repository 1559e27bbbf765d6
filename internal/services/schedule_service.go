package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bradfitz/latlong"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/surepeps/negotiation-service/internal/constants"
	"github.com/surepeps/negotiation-service/internal/dtos"
	"github.com/surepeps/negotiation-service/internal/models"
	"github.com/surepeps/negotiation-service/internal/repositories"
	"github.com/surepeps/negotiation-service/internal/utils"
)

/*
ScheduleService owns the inspection calendar: which dates and times a
party may pick, always in the property's local timezone.
*/
type ScheduleService struct {
	propertyRepo repositories.PropertyRepository
	now          func() time.Time
}

func NewScheduleService(propertyRepo repositories.PropertyRepository) *ScheduleService {
	return &ScheduleService{
		propertyRepo: propertyRepo,
		now:          time.Now,
	}
}

// PropertyLocation resolves the property's timezone. Stored value wins;
// otherwise the coordinates are looked up and the result backfilled.
func (s *ScheduleService) PropertyLocation(ctx context.Context, p *models.Property) *time.Location {
	tzName := p.TimeZone
	if tzName == "" && (p.Latitude != 0 || p.Longitude != 0) {
		tzName = latlong.LookupZoneName(p.Latitude, p.Longitude)
		if tzName != "" {
			if err := s.propertyRepo.SetTimeZone(ctx, p.ID, tzName); err != nil {
				utils.Logger.WithFields(logrus.Fields{
					"property_id": p.ID,
					"error":       err.Error(),
				}).Warn("Failed to backfill property timezone")
			}
		}
	}
	if tzName == "" {
		tzName = constants.DefaultTimeZone
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		loc = time.UTC
	}
	return loc
}

// AvailableSlots lists bookable inspection dates (starting tomorrow,
// skipping Sundays and public holidays) and the hourly times.
func (s *ScheduleService) AvailableSlots(ctx context.Context, propertyID uuid.UUID) (*dtos.AvailableSlotsResponse, error) {
	p, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, utils.ErrNegotiationNotFound
	}

	loc := s.PropertyLocation(ctx, p)
	now := s.now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)

	var dates []string
	for d := start; len(dates) < constants.InspectionDaysAhead; d = d.AddDate(0, 0, 1) {
		if !utils.IsBookableDay(d) {
			continue
		}
		dates = append(dates, d.Format(constants.InspectionDateLayout))
	}

	var times []string
	for h := constants.InspectionEarliestHour; h <= constants.InspectionLatestHour; h++ {
		times = append(times, fmt.Sprintf("%02d:00", h))
	}

	return &dtos.AvailableSlotsResponse{
		PropertyID:     p.ID,
		TimeZone:       loc.String(),
		AvailableDates: dates,
		AvailableTimes: times,
	}, nil
}

// ParseSlot validates a submitted date/time pair against the calendar and
// returns the parsed date. The date must fall inside the booking window,
// on a bookable day, at a whole hour within business hours.
func (s *ScheduleService) ParseSlot(ctx context.Context, p *models.Property, dateStr, timeStr string) (time.Time, error) {
	loc := s.PropertyLocation(ctx, p)

	date, err := time.ParseInLocation(constants.InspectionDateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, utils.ErrInvalidSlot
	}
	t, err := time.Parse(constants.InspectionTimeLayout, timeStr)
	if err != nil || t.Minute() != 0 {
		return time.Time{}, utils.ErrInvalidSlot
	}
	if t.Hour() < constants.InspectionEarliestHour || t.Hour() > constants.InspectionLatestHour {
		return time.Time{}, utils.ErrInvalidSlot
	}

	now := s.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if !date.After(today) {
		return time.Time{}, utils.ErrInvalidSlot
	}

	// The window spans InspectionDaysAhead bookable days; the last of
	// those is the furthest date AvailableSlots would have offered.
	lastBookable := today
	count := 0
	for d := today.AddDate(0, 0, 1); count < constants.InspectionDaysAhead; d = d.AddDate(0, 0, 1) {
		if !utils.IsBookableDay(d) {
			continue
		}
		lastBookable = d
		count++
	}
	if date.After(lastBookable) {
		return time.Time{}, utils.ErrInvalidSlot
	}

	if !utils.IsBookableDay(date) {
		return time.Time{}, utils.ErrInvalidSlot
	}
	return date, nil
}
