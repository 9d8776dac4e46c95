package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// PrimaryCalendar addresses the user's main calendar.
const PrimaryCalendar = "primary"

// CalendarClient reads events from one Google Calendar.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
}

// NewCalendarClient creates a client for the calendar named calendarName.
// "primary" or an empty name selects the user's main calendar.
func NewCalendarClient(ctx context.Context, calendarName string, opts ...option.ClientOption) (*CalendarClient, error) {
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}
	if calendarName == "" || calendarName == PrimaryCalendar {
		return &CalendarClient{srv: srv, calendarID: PrimaryCalendar}, nil
	}

	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	for _, item := range calendarList.Items {
		if item.Summary == calendarName {
			return &CalendarClient{srv: srv, calendarID: item.Id}, nil
		}
	}
	return nil, fmt.Errorf("calendar '%s' not found", calendarName)
}

// Upcoming lists single events starting within days of now, ordered by start time.
func (c *CalendarClient) Upcoming(ctx context.Context, now time.Time, days int) ([]*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		TimeMin(now.UTC().Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, days).UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}
	return events.Items, nil
}
