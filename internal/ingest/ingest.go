// Package ingest drives the fetch-and-store pipeline: decide the date
// window, resolve identifiers, pull the range through the provider chain,
// and persist the normalized points idempotently.
package ingest

import (
    "context"
    "sync"

    "github.com/sirupsen/logrus"
    "golang.org/x/sync/errgroup"

    "econseries/internal/series"
)

// Fetcher is the slice of the provider chain the pipeline needs.
type Fetcher interface {
    Suggest(externalID string) string
    FetchRange(ctx context.Context, params series.FetchRangeParams) (series.FetchRangeResult, error)
}

// IDResolver translates between canonical and provider-native series ids.
type IDResolver interface {
    ToInternal(ctx context.Context, externalID, providerName string) (string, error)
    ToExternal(ctx context.Context, internalID, providerName string) (string, error)
}

// Repository is the slice of the store the pipeline needs.
type Repository interface {
    LastDate(ctx context.Context, seriesID string) (string, error)
    UpsertPoints(ctx context.Context, points []series.Point) (int64, error)
}

// Options tune one Ingestor. Zero values fall back to the defaults below.
type Options struct {
    LookbackDays int // window when a series has no stored points yet
    PageSize     int
    Workers      int // concurrent series in ExecuteMany
}

const (
    defaultLookbackDays = 1
    defaultWorkers      = 4
)

// Result reports one series run. Failures land here as Error rather than
// propagating: one broken series must not sink a batch.
type Result struct {
    SeriesID      string `json:"series_id"`
    Success       bool   `json:"success"`
    PointsFetched int    `json:"points_fetched"`
    PointsStored  int64  `json:"points_stored"`
    Error         string `json:"error,omitempty"`
}

type Ingestor struct {
    chain Fetcher
    res   IDResolver
    repo  Repository
    opts  Options
    log   *logrus.Entry
}

func New(chain Fetcher, res IDResolver, repo Repository, opts Options, log *logrus.Logger) *Ingestor {
    if opts.LookbackDays <= 0 { opts.LookbackDays = defaultLookbackDays }
    if opts.PageSize <= 0 { opts.PageSize = series.DefaultPageSize }
    if opts.Workers <= 0 { opts.Workers = defaultWorkers }
    return &Ingestor{
        chain: chain,
        res:   res,
        repo:  repo,
        opts:  opts,
        log:   log.WithField("component", "ingest"),
    }
}

// Execute updates one series from the day after its last stored point (or
// the default lookback window when empty) through today.
func (in *Ingestor) Execute(ctx context.Context, seriesID string) Result {
    last, err := in.repo.LastDate(ctx, seriesID)
    if err != nil {
        return in.fail(seriesID, err)
    }
    from := in.determineFromDate(last)
    in.log.WithFields(logrus.Fields{
        "series_id": seriesID,
        "last_date": last,
        "from":      from,
    }).Info("updating series")
    return in.run(ctx, seriesID, from, "")
}

// Backfill fetches and stores an explicit historical range.
func (in *Ingestor) Backfill(ctx context.Context, seriesID, from, to string) Result {
    in.log.WithFields(logrus.Fields{
        "series_id": seriesID,
        "from":      from,
        "to":        to,
    }).Info("backfilling series")
    return in.run(ctx, seriesID, from, to)
}

func (in *Ingestor) run(ctx context.Context, seriesID, from, to string) Result {
    providerName := in.chain.Suggest(seriesID)
    externalID, err := in.res.ToExternal(ctx, seriesID, providerName)
    if err != nil {
        return in.fail(seriesID, err)
    }

    fetched, err := in.chain.FetchRange(ctx, series.FetchRangeParams{
        ExternalID: externalID,
        From:       from,
        To:         to,
        Limit:      in.opts.PageSize,
    })
    if err != nil {
        return in.fail(seriesID, err)
    }

    canonical, err := in.res.ToInternal(ctx, externalID, fetched.Provider)
    if err != nil {
        return in.fail(seriesID, err)
    }
    points := make([]series.Point, len(fetched.Points))
    for i, p := range fetched.Points {
        p.SeriesID = canonical
        points[i] = p
    }

    stored, err := in.repo.UpsertPoints(ctx, series.Dedupe(points))
    if err != nil {
        return in.fail(seriesID, err)
    }

    in.log.WithFields(logrus.Fields{
        "series_id": seriesID,
        "provider":  fetched.Provider,
        "fetched":   len(fetched.Points),
        "stored":    stored,
    }).Info("series updated")
    return Result{
        SeriesID:      seriesID,
        Success:       true,
        PointsFetched: len(fetched.Points),
        PointsStored:  stored,
    }
}

// ExecuteMany updates a batch of series through a bounded worker pool.
// Results come back in input order.
func (in *Ingestor) ExecuteMany(ctx context.Context, seriesIDs []string) []Result {
    results := make([]Result, len(seriesIDs))
    var mu sync.Mutex
    g, ctx := errgroup.WithContext(ctx)
    g.SetLimit(in.opts.Workers)
    for i, id := range seriesIDs {
        g.Go(func() error {
            res := in.Execute(ctx, id)
            mu.Lock()
            results[i] = res
            mu.Unlock()
            return nil
        })
    }
    g.Wait() // workers never return errors
    return results
}

func (in *Ingestor) determineFromDate(last string) string {
    if last == "" {
        return series.DaysAgo(in.opts.LookbackDays)
    }
    return series.NextDay(last)
}

func (in *Ingestor) fail(seriesID string, err error) Result {
    in.log.WithError(err).WithField("series_id", seriesID).Error("series update failed")
    return Result{SeriesID: seriesID, Error: err.Error()}
}
