package gcal

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/sync"
	"google.golang.org/api/calendar/v3"
)

const allDayLayout = "2006-01-02"

// Client implements sync.CalendarClient over the Google Calendar API.
type Client struct {
	svc        *calendar.Service
	calendarID string
}

// NewClient wraps an authorized calendar service for one calendar.
func NewClient(svc *calendar.Service, calendarID string) *Client {
	return &Client{svc: svc, calendarID: calendarID}
}

// ListEvents fetches one page of single events inside w, ordered by start
// time. Recurring events are expanded server-side.
func (c *Client) ListEvents(ctx context.Context, w sync.Window, cursor string, pageSize int64) (sync.Page, error) {
	call := c.svc.Events.List(c.calendarID).
		TimeMin(w.Start.Format(time.RFC3339)).
		TimeMax(w.End.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(pageSize).
		Context(ctx)
	if cursor != "" {
		call = call.PageToken(cursor)
	}

	res, err := call.Do()
	if err != nil {
		return sync.Page{}, fmt.Errorf("%w: listing events: %v", common.ErrorRemoteUnavailable, err)
	}

	page := sync.Page{NextCursor: res.NextPageToken}
	for _, item := range res.Items {
		ev, ok := convertEvent(item)
		if !ok {
			continue
		}
		page.Events = append(page.Events, ev)
	}
	return page, nil
}

// CreateEvent inserts a timed event and returns its identifier.
func (c *Client) CreateEvent(ctx context.Context, summary, description string, start, end time.Time) (string, error) {
	body := &calendar.Event{
		Summary:     summary,
		Description: description,
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}
	created, err := c.svc.Events.Insert(c.calendarID, body).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: inserting event: %v", common.ErrorRemoteUnavailable, err)
	}
	return created.Id, nil
}

// CreateAllDayEvent inserts an all-day event on day. The API wants an
// exclusive end date, so the event spans exactly one day.
func (c *Client) CreateAllDayEvent(ctx context.Context, summary, description string, day time.Time) (string, error) {
	body := &calendar.Event{
		Summary:     summary,
		Description: description,
		Start:       &calendar.EventDateTime{Date: day.Format(allDayLayout)},
		End:         &calendar.EventDateTime{Date: day.AddDate(0, 0, 1).Format(allDayLayout)},
	}
	created, err := c.svc.Events.Insert(c.calendarID, body).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: inserting all-day event: %v", common.ErrorRemoteUnavailable, err)
	}
	return created.Id, nil
}

// convertEvent maps an API event to the reconciler's shape. Events without
// a usable start are dropped.
func convertEvent(item *calendar.Event) (sync.RemoteEvent, bool) {
	if item == nil || item.Start == nil {
		return sync.RemoteEvent{}, false
	}

	ev := sync.RemoteEvent{Summary: item.Summary, Description: item.Description}

	if item.Start.Date != "" {
		day, err := time.Parse(allDayLayout, item.Start.Date)
		if err != nil {
			return sync.RemoteEvent{}, false
		}
		ev.AllDay = true
		ev.Start = day
		return ev, true
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return sync.RemoteEvent{}, false
	}
	ev.Start = start
	return ev, true
}
