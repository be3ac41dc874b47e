package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/lookup"
	"github.com/dmitrijs2005/contactkeeper/internal/metrics"
	"github.com/dmitrijs2005/contactkeeper/internal/models"
	"golang.org/x/sync/errgroup"
)

// Geocoder resolves a contact's address to coordinates.
type Geocoder interface {
	ContactCoordinates(ctx context.Context, c models.Contact) (lookup.Coordinates, error)
}

// LocateReport summarizes a LocateAll run.
type LocateReport struct {
	Located int
	Skipped int
	Failed  int
	// Errors maps contact ids to the reason they could not be located.
	Errors map[string]error
}

// Locator geocodes the session user's contacts and stores the coordinates.
type Locator struct {
	dir         ContactDirectory
	geo         Geocoder
	concurrency int
	logger      logging.Logger
}

func NewLocator(dir ContactDirectory, geo Geocoder, concurrency int, logger logging.Logger) *Locator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Locator{dir: dir, geo: geo, concurrency: concurrency, logger: logger.With("component", "locator")}
}

// Locate geocodes one contact and saves its coordinates.
func (l *Locator) Locate(ctx context.Context, id string) (models.Contact, error) {
	c, err := l.dir.Get(ctx, id)
	if err != nil {
		return models.Contact{}, err
	}
	return l.locate(ctx, c)
}

func (l *Locator) locate(ctx context.Context, c models.Contact) (models.Contact, error) {
	pos, err := l.geo.ContactCoordinates(ctx, c)
	if err != nil {
		return models.Contact{}, err
	}

	// Re-read so edits made while the request was in flight are kept.
	cur, err := l.dir.Get(ctx, c.ID)
	if err != nil {
		return models.Contact{}, err
	}
	cur.SetCoordinates(pos.Lat, pos.Lng)
	if _, err := l.dir.Update(ctx, cur); err != nil {
		return models.Contact{}, err
	}
	return cur, nil
}

// LocateAll geocodes every contact that has an address. Contacts that already
// have coordinates are skipped unless force is set. Per-contact failures are
// reported, not returned; the error is only for session or store problems.
func (l *Locator) LocateAll(ctx context.Context, force bool) (LocateReport, error) {
	report := LocateReport{Errors: map[string]error{}}

	contacts, err := l.dir.List(ctx)
	if err != nil {
		return report, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for _, c := range contacts {
		if !c.HasAddress() || (c.HasCoordinates() && !force) {
			report.Skipped++
			continue
		}
		g.Go(func() error {
			_, err := l.locate(gctx, c)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Located++
			case errors.Is(err, common.ErrNoActiveSession), errors.Is(err, common.ErrCorruptState):
				return err
			default:
				report.Failed++
				report.Errors[c.ID] = err
				l.logger.Warn(gctx, "contact not located", "id", c.ID, "error", err)
			}
			return nil
		})
	}
	err = g.Wait()

	metrics.ObserveLocate("located", report.Located)
	metrics.ObserveLocate("skipped", report.Skipped)
	metrics.ObserveLocate("failed", report.Failed)
	l.logger.Info(ctx, "batch geolocation finished",
		"located", report.Located, "skipped", report.Skipped, "failed", report.Failed)
	return report, err
}
