package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/BruksfildServices01/makeup-scheduler/internal/config"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

type GoogleProvider struct {
	oauth *oauth2.Config
}

var _ Provider = (*GoogleProvider)(nil)

func NewGoogleProvider(cfg config.GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{gcal.CalendarEventsScope, oauth2api.UserinfoEmailScope},
			Endpoint:     google.Endpoint,
		},
	}
}

func (p *GoogleProvider) Name() string { return models.ProviderGoogle }

func (p *GoogleProvider) AuthURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.oauth.Exchange(ctx, code)
}

func (p *GoogleProvider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
}

func (p *GoogleProvider) AccountEmail(ctx context.Context, tok *oauth2.Token) (string, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(p.oauth.TokenSource(ctx, tok)))
	if err != nil {
		return "", err
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return info.Email, nil
}

func (p *GoogleProvider) events(ctx context.Context, tok *oauth2.Token) (*gcal.EventsService, error) {
	svc, err := gcal.NewService(ctx, option.WithTokenSource(p.oauth.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("google calendar client: %w", err)
	}
	return svc.Events, nil
}

func (p *GoogleProvider) InsertEvent(ctx context.Context, tok *oauth2.Token, calendarID string, ev EventPayload) (string, error) {
	events, err := p.events(ctx, tok)
	if err != nil {
		return "", err
	}
	created, err := events.Insert(calendarID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

func (p *GoogleProvider) UpdateEvent(ctx context.Context, tok *oauth2.Token, calendarID, eventID string, ev EventPayload) error {
	events, err := p.events(ctx, tok)
	if err != nil {
		return err
	}
	_, err = events.Update(calendarID, eventID, toGoogleEvent(ev)).Context(ctx).Do()
	if isGone(err) {
		return ErrEventNotFound
	}
	return err
}

func (p *GoogleProvider) DeleteEvent(ctx context.Context, tok *oauth2.Token, calendarID, eventID string) error {
	events, err := p.events(ctx, tok)
	if err != nil {
		return err
	}
	err = events.Delete(calendarID, eventID).Context(ctx).Do()
	if isGone(err) {
		return nil
	}
	return err
}

func toGoogleEvent(ev EventPayload) *gcal.Event {
	return &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Start: &gcal.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: ev.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: ev.TimeZone,
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 60},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
}

func isGone(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone
	}
	return false
}
